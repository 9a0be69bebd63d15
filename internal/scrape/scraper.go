package scrape

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/skyiq/backend/internal/models"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "SkyIQBot/1.0 (+https://skyiq.app; business profile enrichment)"

	maxFullTextLen = 100000
)

// Scraper fetches and structurally parses a business webpage. Scrape is
// total: any failure degrades into an error-bearing result so one dead link
// can never fail an aggregation batch.
type Scraper struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger
}

func (s *Scraper) Scrape(ctx context.Context, pageURL string) models.ScrapedWebData {
	if s.Client == nil {
		s.Client = &http.Client{}
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.UserAgent == "" {
		s.UserAgent = DefaultUserAgent
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		s.Logger.Warn().Err(err).Str("url", pageURL).Msg("scrape degraded")
		return degradedResult(pageURL, err)
	}

	data := newScrapedWebData(pageURL)
	data.Title = extractTitle(doc)
	data.Description = extractDescription(doc)
	data.Keywords = extractKeywords(doc)
	data.Contact = extractContactInfo(doc)
	data.Business = extractBusinessInfo(doc)
	data.StructuredData = extractStructuredData(doc)
	data.Navigation = extractNavigation(doc)
	data.MainContent = extractMainContent(doc)
	data.FullText = extractFullText(doc)
	return data
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// newScrapedWebData returns a result with every collection initialized, so
// degraded and successful results share one well-formed shape.
func newScrapedWebData(pageURL string) models.ScrapedWebData {
	return models.ScrapedWebData{
		URL:      pageURL,
		Keywords: []string{},
		Contact: models.ContactInfo{
			Emails:      []string{},
			Phones:      []string{},
			Addresses:   []string{},
			SocialLinks: []string{},
		},
		Business: models.BusinessInfo{
			Hours:         []string{},
			Services:      []string{},
			Products:      []string{},
			AboutSections: []string{},
			Testimonials:  []string{},
			TeamMembers:   []string{},
		},
		StructuredData: []map[string]any{},
		Navigation:     []string{},
		ScrapedAt:      time.Now().UTC(),
	}
}

func degradedResult(pageURL string, err error) models.ScrapedWebData {
	data := newScrapedWebData(pageURL)
	data.Description = fmt.Sprintf("Failed to scrape %s: %v", pageURL, err)
	return data
}
