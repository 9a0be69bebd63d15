package chunker

import (
	"strings"
	"testing"
)

func TestSplitTextRoundTrip(t *testing.T) {
	text := "First sentence here. Second one follows! Third asks a question? Fourth closes it."
	chunks := SplitText(text, 40)

	var rejoined []string
	for _, c := range chunks {
		rejoined = append(rejoined, SplitSentences(c)...)
	}
	original := SplitSentences(text)
	if len(rejoined) != len(original) {
		t.Fatalf("expected %d sentences, got %d", len(original), len(rejoined))
	}
	for i := range original {
		if rejoined[i] != original[i] {
			t.Fatalf("sentence %d changed: %q vs %q", i, rejoined[i], original[i])
		}
	}
}

func TestSplitTextChunkSizeBound(t *testing.T) {
	// Four ~875-char sentences forced into chunkSize=1000: every chunk must
	// stay under the bound and sentence order must hold.
	sentence := strings.Repeat("lorem ipsum ", 72)
	sentence = strings.TrimSpace(sentence)
	text := sentence + ". " + sentence + ". " + sentence + ". " + sentence + "."
	if len(text) < 3400 {
		t.Fatalf("fixture too short: %d", len(text))
	}

	chunks := SplitText(text, 1000)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 1000 {
			t.Fatalf("chunk %d exceeds chunk size: %d", i, len(c))
		}
	}
}

func TestSplitTextKeepsOversizedSentenceWhole(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 300)) // ~1500 chars, no terminator
	chunks := SplitText("Short lead-in. "+long+".", 100)
	found := false
	for _, c := range chunks {
		if strings.Contains(c, long) {
			found = true
		}
	}
	if !found {
		t.Fatalf("oversized sentence was split or truncated")
	}
}

func TestSplitTextDeterministicBoundaries(t *testing.T) {
	text := "Alpha one. Beta two. Gamma three. Delta four. Epsilon five."
	first := SplitText(text, 30)
	second := SplitText(text, 30)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	text := "Plumbing repair services. Plumbing maintenance and plumbing inspection. Repair quotes available, the and for."
	kws := ExtractKeywords(text)
	if len(kws) == 0 {
		t.Fatalf("expected keywords")
	}
	if kws[0] != "plumbing" {
		t.Fatalf("expected most frequent keyword first, got %q", kws[0])
	}
	for _, k := range kws {
		if len(k) <= 3 {
			t.Fatalf("short token leaked into keywords: %q", k)
		}
		if k == "the" || k == "and" || k == "for" {
			t.Fatalf("stop word leaked into keywords: %q", k)
		}
	}
}

func TestExtractKeywordsCap(t *testing.T) {
	var b strings.Builder
	words := []string{
		"alpha1", "bravo2", "charlie3", "delta4", "echoes", "foxtrot",
		"golfing", "hotels", "indigo", "juliet", "kilometers", "limabean",
	}
	for _, w := range words {
		b.WriteString(w + " ")
	}
	kws := ExtractKeywords(b.String())
	if len(kws) > 10 {
		t.Fatalf("expected at most 10 keywords, got %d", len(kws))
	}
}

func TestSummarizeFirstSentenceOnly(t *testing.T) {
	got := Summarize("We fix pipes. We also sell parts. Call anytime.")
	if got != "We fix pipes." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeAppendsImportantSentence(t *testing.T) {
	got := Summarize("We fix pipes. We sell parts. The key detail is same-day service. Call anytime.")
	if !strings.HasPrefix(got, "We fix pipes") {
		t.Fatalf("summary lost first sentence: %q", got)
	}
	if !strings.Contains(got, "key detail is same-day service") {
		t.Fatalf("summary missed importance marker sentence: %q", got)
	}
}

func TestSummarizeIgnoresMarkerBeyondThreeSentences(t *testing.T) {
	got := Summarize("One. Two. Three. Four. The critical part comes too late.")
	if strings.Contains(got, "critical") {
		t.Fatalf("marker beyond lookahead window was included: %q", got)
	}
}
