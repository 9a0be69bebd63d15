// Package analyze derives brand and market signals from aggregated raw
// data. Everything here is a pure function over fixed vocabularies; the
// heuristics are deliberately simple pattern matching, not classification
// models, so behavior stays documented and testable.
package analyze

import (
	"regexp"
	"sort"
	"strings"

	"github.com/skyiq/backend/internal/models"
)

const (
	MarketEmergingStartup    = "Emerging Startup"
	MarketLeader             = "Market Leader"
	MarketNicheSpecialist    = "Niche Specialist"
	MarketEstablishedDefault = "Established Business"
)

const (
	VoiceProfessional  = "Professional and Expert"
	VoiceWarm          = "Warm and Approachable"
	VoiceAuthoritative = "Authoritative and Confident"
	VoiceInformative   = "Informative and Clear"
)

const (
	maxValueProps     = 10
	maxPainPoints     = 15
	maxExpertiseAreas = 10

	brandVoiceMinSectionLen = 100
	painPointWindow         = 50
)

// marketRules is an ordered ladder; the first rule whose word appears in
// the description wins.
var marketRules = []struct {
	words    []string
	position string
}{
	{[]string{"startup", "new"}, MarketEmergingStartup},
	{[]string{"leading", "established"}, MarketLeader},
	{[]string{"boutique", "specialized"}, MarketNicheSpecialist},
}

func MarketPosition(description string) string {
	lower := strings.ToLower(description)
	for _, rule := range marketRules {
		for _, word := range rule.words {
			if strings.Contains(lower, word) {
				return rule.position
			}
		}
	}
	return MarketEstablishedDefault
}

var voiceRules = []struct {
	words []string
	label string
}{
	{[]string{"professional", "certified", "qualified", "expert", "experienced"}, VoiceProfessional},
	{[]string{"friendly", "welcome", "family", "care", "community"}, VoiceWarm},
	{[]string{"leading", "trusted", "proven", "award", "best"}, VoiceAuthoritative},
}

// BrandVoice classifies the first about-section longer than 100 characters
// into one of four fixed labels. Sections at or under the threshold are
// skipped; with no qualifying section the voice is unknown (empty).
func BrandVoice(aboutSections []string) string {
	for _, section := range aboutSections {
		if len(section) <= brandVoiceMinSectionLen {
			continue
		}
		lower := strings.ToLower(section)
		for _, rule := range voiceRules {
			for _, word := range rule.words {
				if strings.Contains(lower, word) {
					return rule.label
				}
			}
		}
		return VoiceInformative
	}
	return ""
}

var valueIndicators = []string{
	"unique", "exclusive", "only", "first", "leading", "expert", "specialized",
}

// ValueProps extracts, per about-section and per indicator word, the first
// sentence containing the indicator.
func ValueProps(aboutSections []string) []string {
	props := []string{}
	seen := map[string]struct{}{}
	for _, section := range aboutSections {
		sentences := splitSentences(section)
		for _, indicator := range valueIndicators {
			if len(props) >= maxValueProps {
				return props
			}
			for _, sentence := range sentences {
				if !strings.Contains(strings.ToLower(sentence), indicator) {
					continue
				}
				if _, dup := seen[sentence]; !dup {
					seen[sentence] = struct{}{}
					props = append(props, sentence)
				}
				break
			}
		}
	}
	return props
}

var painPointRe = regexp.MustCompile(`(?i)(?:problems?\s+with|challenges?\s+of|issues?\s+in|struggl(?:e|es|ing)\s+with|difficult(?:y|ies)\s+(?:in|with))`)

// PainPoints scans chunk content for trouble phrases and keeps a 50
// character window either side of each match as context.
func PainPoints(chunks []models.DocumentChunk) []string {
	points := []string{}
	seen := map[string]struct{}{}
	for _, chunk := range chunks {
		for _, loc := range painPointRe.FindAllStringIndex(chunk.Content, -1) {
			if len(points) >= maxPainPoints {
				return points
			}
			start := loc[0] - painPointWindow
			if start < 0 {
				start = 0
			}
			end := loc[1] + painPointWindow
			if end > len(chunk.Content) {
				end = len(chunk.Content)
			}
			window := strings.TrimSpace(chunk.Content[start:end])
			if _, dup := seen[window]; dup {
				continue
			}
			seen[window] = struct{}{}
			points = append(points, window)
		}
	}
	return points
}

// ExpertiseAreas ranks chunk keywords by how many chunks mention them.
func ExpertiseAreas(chunks []models.DocumentChunk) []string {
	counts := map[string]int{}
	order := []string{}
	for _, chunk := range chunks {
		for _, kw := range chunk.Keywords {
			if _, seen := counts[kw]; !seen {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxExpertiseAreas {
		order = order[:maxExpertiseAreas]
	}
	return order
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
