package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
	maxPageKeywords   = 50
	maxNavItems       = 20

	defaultTitle = "Untitled Page"
)

// A textExtractor pulls one candidate string from the document. Extractors
// run in priority order; the first non-empty result wins.
type textExtractor func(doc *goquery.Document) string

var titleExtractors = []textExtractor{
	metaContent(`meta[property="og:title"]`),
	metaContent(`meta[name="twitter:title"]`),
	func(doc *goquery.Document) string { return doc.Find("title").First().Text() },
	func(doc *goquery.Document) string { return doc.Find("h1").First().Text() },
	firstText(".site-title, .page-title, .brand, .logo-text"),
}

var descriptionExtractors = []textExtractor{
	metaContent(`meta[property="og:description"]`),
	metaContent(`meta[name="twitter:description"]`),
	metaContent(`meta[name="description"]`),
	firstText(".description, .intro, .tagline, .subtitle"),
	func(doc *goquery.Document) string { return doc.Find("main p, article p").First().Text() },
}

func extractTitle(doc *goquery.Document) string {
	if t := firstNonEmpty(doc, titleExtractors, maxTitleLen); t != "" {
		return t
	}
	return defaultTitle
}

func extractDescription(doc *goquery.Document) string {
	return firstNonEmpty(doc, descriptionExtractors, maxDescriptionLen)
}

func firstNonEmpty(doc *goquery.Document, extractors []textExtractor, maxLen int) string {
	for _, extract := range extractors {
		candidate := normalizeSpace(extract(doc))
		if candidate == "" {
			continue
		}
		if len(candidate) > maxLen {
			candidate = candidate[:maxLen]
		}
		return candidate
	}
	return ""
}

func metaContent(selector string) textExtractor {
	return func(doc *goquery.Document) string {
		content, _ := doc.Find(selector).First().Attr("content")
		return content
	}
}

func firstText(selector string) textExtractor {
	return func(doc *goquery.Document) string {
		return doc.Find(selector).First().Text()
	}
}

// extractKeywords unions meta keywords with words from headings and
// emphasized text, keeping tokens longer than three characters.
func extractKeywords(doc *goquery.Document) []string {
	seen := map[string]struct{}{}
	keywords := []string{}

	add := func(word string) {
		word = strings.ToLower(strings.TrimSpace(word))
		if len(word) <= 3 || len(keywords) >= maxPageKeywords {
			return
		}
		if _, dup := seen[word]; dup {
			return
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	if meta, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		for _, token := range strings.Split(meta, ",") {
			add(token)
		}
	}
	doc.Find("h1, h2, h3, strong, em, b").Each(func(_ int, sel *goquery.Selection) {
		for _, word := range strings.Fields(sel.Text()) {
			add(strings.Trim(word, ".,!?:;()\"'"))
		}
	})
	return keywords
}

// mainContentSelectors are tried in order; the first match supplies the
// page's primary text.
var mainContentSelectors = []string{
	"main",
	`[role="main"]`,
	".content",
	"#content",
	"article",
	".main-content",
}

var strippedSelectors = "script, style, nav, header, footer, aside, iframe, " +
	".ads, .advertisement, .social, .share, .comments, #comments"

func extractMainContent(doc *goquery.Document) string {
	cleaned := stripChrome(doc)
	for _, selector := range mainContentSelectors {
		sel := cleaned.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := capLen(normalizeSpace(sel.Text()), maxFullTextLen); text != "" {
			return text
		}
	}
	return capLen(normalizeSpace(cleaned.Find("body").Text()), maxFullTextLen)
}

func extractFullText(doc *goquery.Document) string {
	cleaned := stripChrome(doc)
	return capLen(normalizeSpace(cleaned.Find("body").Text()), maxFullTextLen)
}

// stripChrome removes script/style/navigation/ad elements from a clone so
// extraction never mutates the parsed document.
func stripChrome(doc *goquery.Document) *goquery.Selection {
	clone := doc.Selection.Clone()
	clone.Find(strippedSelectors).Remove()
	return clone
}

func extractNavigation(doc *goquery.Document) []string {
	items := []string{}
	seen := map[string]struct{}{}
	doc.Find("nav a, .nav a, .menu a").Each(func(_ int, sel *goquery.Selection) {
		if len(items) >= maxNavItems {
			return
		}
		text := normalizeSpace(sel.Text())
		if text == "" || len(text) > 60 {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		items = append(items, text)
	})
	return items
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capLen(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
