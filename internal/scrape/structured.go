package scrape

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"
)

const maxStructuredBlocks = 20

// extractStructuredData parses every application/ld+json block (invalid
// JSON is skipped silently) and every itemscope microdata element into
// generic key/value records.
func extractStructuredData(doc *goquery.Document) []map[string]any {
	blocks := []map[string]any{}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		if len(blocks) >= maxStructuredBlocks {
			return
		}
		raw := sel.Text()

		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			blocks = append(blocks, obj)
			return
		}
		var list []map[string]any
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			for _, obj := range list {
				if len(blocks) >= maxStructuredBlocks {
					break
				}
				blocks = append(blocks, obj)
			}
		}
	})

	doc.Find("[itemscope]").Each(func(_ int, sel *goquery.Selection) {
		if len(blocks) >= maxStructuredBlocks {
			return
		}
		record := map[string]any{}
		if itemType, ok := sel.Attr("itemtype"); ok {
			record["@type"] = itemType
		}
		sel.Find("[itemprop]").Each(func(_ int, prop *goquery.Selection) {
			name, ok := prop.Attr("itemprop")
			if !ok || name == "" {
				return
			}
			value := normalizeSpace(prop.Text())
			if value == "" {
				value, _ = prop.Attr("content")
			}
			if value != "" {
				record[name] = value
			}
		})
		if len(record) > 0 {
			blocks = append(blocks, record)
		}
	})

	return blocks
}
