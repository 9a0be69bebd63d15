package chunker

import (
	"sort"
	"strings"
	"unicode"
)

const DefaultChunkSize = 1000

const keywordLimit = 10

// stopWords are never returned as keywords regardless of frequency.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "its": {}, "may": {}, "new": {},
	"now": {}, "old": {}, "see": {}, "two": {}, "way": {}, "who": {},
	"this": {}, "that": {}, "with": {}, "have": {}, "from": {},
	"they": {}, "will": {}, "been": {}, "were": {}, "their": {},
	"there": {}, "would": {}, "could": {}, "should": {}, "about": {},
	"which": {}, "when": {}, "what": {}, "your": {}, "them": {},
	"then": {}, "than": {}, "some": {}, "more": {}, "very": {},
	"also": {}, "into": {}, "only": {}, "other": {}, "these": {},
	"those": {}, "such": {}, "does": {}, "being": {}, "over": {},
	"after": {}, "before": {}, "while": {}, "where": {}, "here": {},
	"each": {}, "must": {}, "shall": {}, "because": {}, "through": {},
}

// importanceMarkers promote a follow-up sentence into a chunk summary.
var importanceMarkers = []string{
	"important", "key", "main", "primary", "essential", "critical",
	"significant", "major",
}

// SplitSentences splits text on sentence terminators (. ! ?), trimming
// whitespace and dropping empty segments.
func SplitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitText greedily packs whole sentences into chunks of at most chunkSize
// characters. A sentence longer than chunkSize is kept whole as its own
// chunk rather than truncated. Each chunk carries a trailing period so it
// reads as complete text on its own.
func SplitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	sentences := SplitSentences(text)
	var chunks []string
	cur := ""
	for _, s := range sentences {
		if cur == "" {
			cur = s
			continue
		}
		next := cur + ". " + s
		if len(next) <= chunkSize {
			cur = next
			continue
		}
		chunks = append(chunks, cur+".")
		cur = s
	}
	if cur != "" {
		chunks = append(chunks, cur+".")
	}
	return chunks
}

// ExtractKeywords returns up to 10 keywords by descending frequency, ties
// broken by first occurrence. Tokens of three characters or fewer and stop
// words are dropped.
func ExtractKeywords(text string) []string {
	tokens := tokenize(text)

	counts := map[string]int{}
	order := []string{}
	for _, tok := range tokens {
		if len(tok) <= 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > keywordLimit {
		order = order[:keywordLimit]
	}
	return order
}

// Summarize returns the chunk's first sentence; if one of the next three
// sentences carries an importance marker, the first such sentence is
// appended.
func Summarize(text string) string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	summary := sentences[0]

	rest := sentences[1:]
	if len(rest) > 3 {
		rest = rest[:3]
	}
	for _, s := range rest {
		lower := strings.ToLower(s)
		marked := false
		for _, marker := range importanceMarkers {
			if strings.Contains(lower, marker) {
				marked = true
				break
			}
		}
		if marked {
			summary += ". " + s
			break
		}
	}
	return summary + "."
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}
