package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/skyiq/backend/internal/models"
)

const (
	maxEmails    = 10
	maxPhones    = 10
	maxAddresses = 5
	maxSocial    = 20

	maxHours        = 7
	maxServices     = 20
	maxProducts     = 20
	maxAbout        = 5
	maxTestimonials = 10
	maxTeamMembers  = 15
)

var (
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe   = regexp.MustCompile(`\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	addressRe = regexp.MustCompile(`\d{1,5}\s+[A-Za-z0-9.\s]+\s(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way|Place|Pl)\.?\b`)
	socialRe  = regexp.MustCompile(`https?://(?:www\.)?(?:facebook\.com|twitter\.com|x\.com|linkedin\.com|instagram\.com|youtube\.com)/[A-Za-z0-9_./\-@%]+`)
	hoursRe   = regexp.MustCompile(`(?i)(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?\s*(?:-|–|to|through)?\s*(?:mon|tue|wed|thu|fri|sat|sun)?[a-z]*\.?\s*:?\s*\d{1,2}(?::\d{2})?\s*(?:am|pm)\s*(?:-|–|to)\s*\d{1,2}(?::\d{2})?\s*(?:am|pm)`)
)

// placeholderEmailDomains are rejected even when they match the email regex.
var placeholderEmailDomains = []string{"example.com", "example.org", "domain.com", "yourdomain.com", "email.com"}

func extractContactInfo(doc *goquery.Document) models.ContactInfo {
	html, err := doc.Html()
	if err != nil {
		html = doc.Text()
	}

	info := models.ContactInfo{
		Emails:      []string{},
		Phones:      []string{},
		Addresses:   []string{},
		SocialLinks: []string{},
	}
	for _, email := range dedupeMatches(emailRe.FindAllString(html, -1), maxEmails) {
		if isPlaceholderEmail(email) {
			continue
		}
		info.Emails = append(info.Emails, email)
	}
	info.Phones = dedupeMatches(phoneRe.FindAllString(html, -1), maxPhones)
	info.Addresses = dedupeMatches(addressRe.FindAllString(html, -1), maxAddresses)
	info.SocialLinks = dedupeMatches(socialRe.FindAllString(html, -1), maxSocial)
	return info
}

func isPlaceholderEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, domain := range placeholderEmailDomains {
		if strings.HasSuffix(lower, "@"+domain) || strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// serviceKeywords and productKeywords are fixed vocabularies. A list item or
// matching element counts when its text contains one of the words and is
// between 5 and 200 characters.
var serviceKeywords = []string{
	"service", "consulting", "repair", "installation", "maintenance",
	"support", "solution", "cleaning", "design", "development",
	"marketing", "training", "inspection",
}

var productKeywords = []string{
	"product", "package", "plan", "pricing", "bundle", "kit", "model",
	"edition", "subscription",
}

func extractBusinessInfo(doc *goquery.Document) models.BusinessInfo {
	info := models.BusinessInfo{
		Hours:         []string{},
		Services:      []string{},
		Products:      []string{},
		AboutSections: []string{},
		Testimonials:  []string{},
		TeamMembers:   []string{},
	}

	text := doc.Text()
	info.Hours = dedupeMatches(hoursRe.FindAllString(text, -1), maxHours)
	if len(info.Hours) < maxHours {
		doc.Find(`.hours, .opening-hours, [class*="business-hours"]`).Each(func(_ int, sel *goquery.Selection) {
			if len(info.Hours) >= maxHours {
				return
			}
			if h := normalizeSpace(sel.Text()); h != "" && len(h) <= 200 {
				info.Hours = appendUnique(info.Hours, h, maxHours)
			}
		})
	}

	info.Services = scanVocabulary(doc, `li, .service, [class*="service"]`, serviceKeywords, maxServices)
	info.Products = scanVocabulary(doc, `li, .product, [class*="product"]`, productKeywords, maxProducts)

	doc.Find(`.about, #about, [class*="about"]`).Each(func(_ int, sel *goquery.Selection) {
		if len(info.AboutSections) >= maxAbout {
			return
		}
		if t := normalizeSpace(sel.Text()); t != "" {
			info.AboutSections = appendUnique(info.AboutSections, t, maxAbout)
		}
	})

	doc.Find(`.testimonial, [class*="testimonial"], .review, blockquote`).Each(func(_ int, sel *goquery.Selection) {
		if len(info.Testimonials) >= maxTestimonials {
			return
		}
		t := normalizeSpace(sel.Text())
		if len(t) >= 5 && len(t) <= 500 {
			info.Testimonials = appendUnique(info.Testimonials, t, maxTestimonials)
		}
	})

	doc.Find(`[class*="team"] h3, [class*="team"] h4, .team-member, [class*="staff"] h3`).Each(func(_ int, sel *goquery.Selection) {
		if len(info.TeamMembers) >= maxTeamMembers {
			return
		}
		t := normalizeSpace(sel.Text())
		if len(t) >= 3 && len(t) <= 80 {
			info.TeamMembers = appendUnique(info.TeamMembers, t, maxTeamMembers)
		}
	})

	return info
}

// scanVocabulary collects set-deduplicated element texts whose content
// mentions one of the vocabulary words, bounded to 5-200 characters.
func scanVocabulary(doc *goquery.Document, selector string, vocabulary []string, max int) []string {
	out := []string{}
	seen := map[string]struct{}{}
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if len(out) >= max {
			return
		}
		text := normalizeSpace(sel.Text())
		if len(text) < 5 || len(text) > 200 {
			return
		}
		lower := strings.ToLower(text)
		for _, word := range vocabulary {
			if strings.Contains(lower, word) {
				if _, dup := seen[lower]; !dup {
					seen[lower] = struct{}{}
					out = append(out, text)
				}
				break
			}
		}
	})
	return out
}

func dedupeMatches(matches []string, max int) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, m := range matches {
		if len(out) >= max {
			break
		}
		m = strings.TrimSpace(m)
		key := strings.ToLower(m)
		if m == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

func appendUnique(list []string, item string, max int) []string {
	if len(list) >= max {
		return list
	}
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}
