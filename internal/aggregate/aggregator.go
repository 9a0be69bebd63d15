package aggregate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/skyiq/backend/internal/analyze"
	"github.com/skyiq/backend/internal/models"
)

var ErrProfileNotFound = errors.New("business profile not found")

const (
	leadFetchLimit  = 25
	chunkFetchLimit = 100

	maxRecentInterests = 10
	maxIntelKeywords   = 25
)

type ProfileStore interface {
	GetBusinessProfile(ctx context.Context, tenantID string) (models.BusinessProfile, error)
}

type LeadStore interface {
	GetRecentLeads(ctx context.Context, tenantID string, limit int) ([]models.Lead, error)
}

type DocumentStore interface {
	GetProcessingStatus(ctx context.Context, tenantID string) (models.ProcessingStatus, error)
	GetRecentChunks(ctx context.Context, tenantID string, limit int) ([]models.DocumentChunk, error)
}

// WebScraper is total: it reports failures inside the returned value.
type WebScraper interface {
	Scrape(ctx context.Context, url string) models.ScrapedWebData
}

// Aggregator merges profile, lead, document, and scraped web data into one
// consistent snapshot per tenant, cached for the configured TTL.
type Aggregator struct {
	Profiles  ProfileStore
	Leads     LeadStore
	Documents DocumentStore
	Scraper   WebScraper
	Cache     Cache
	Logger    zerolog.Logger
}

// Aggregate returns the cached bundle when it is fresh and forceRefresh is
// unset; otherwise it recomputes from every collaborator and overwrites the
// cache entry. A missing profile is the only collaborator failure that
// propagates; every other source degrades to its zero value.
func (a *Aggregator) Aggregate(ctx context.Context, tenantID string, forceRefresh bool) (models.AggregatedBusinessData, error) {
	if !forceRefresh {
		if cached, ok := a.Cache.Get(tenantID); ok {
			return cached, nil
		}
	}

	profile, err := a.Profiles.GetBusinessProfile(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return models.AggregatedBusinessData{}, err
		}
		return models.AggregatedBusinessData{}, fmt.Errorf("fetch profile: %w", err)
	}

	var (
		leads  []models.Lead
		status models.ProcessingStatus
		chunks []models.DocumentChunk
	)

	// Independent sources are fetched as one concurrent batch. Each is
	// awaited and degraded on its own; one failing source never cancels the
	// others, so the goroutines always return nil.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if leads, err = a.Leads.GetRecentLeads(gctx, tenantID, leadFetchLimit); err != nil {
			a.Logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("lead fetch degraded")
			leads = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if status, err = a.Documents.GetProcessingStatus(gctx, tenantID); err != nil {
			a.Logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("document status degraded")
			status = models.ProcessingStatus{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if chunks, err = a.Documents.GetRecentChunks(gctx, tenantID, chunkFetchLimit); err != nil {
			a.Logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("chunk fetch degraded")
			chunks = nil
		}
		return nil
	})
	_ = g.Wait()

	webData := a.scrapeLinks(ctx, profile.Links)

	data := a.merge(profile, leads, status, chunks, webData)
	a.Cache.Set(tenantID, data)
	return data, nil
}

// ClearCache drops a tenant's entry so the next aggregation recomputes.
// Called by the document flow whenever new content is registered.
func (a *Aggregator) ClearCache(tenantID string) {
	a.Cache.Clear(tenantID)
}

// scrapeLinks fetches every syntactically valid, deduplicated URL
// concurrently. Scrape is total, so a dead link contributes a degraded
// entry instead of failing the batch.
func (a *Aggregator) scrapeLinks(ctx context.Context, links []string) []models.ScrapedWebData {
	valid := dedupeValidURLs(links)
	if len(valid) == 0 {
		return []models.ScrapedWebData{}
	}

	results := make([]models.ScrapedWebData, len(valid))
	var g errgroup.Group
	for i, link := range valid {
		i, link := i, link
		g.Go(func() error {
			results[i] = a.Scraper.Scrape(ctx, link)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func dedupeValidURLs(links []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, link := range links {
		link = strings.TrimSpace(link)
		parsed, err := url.Parse(link)
		if err != nil || parsed.Host == "" {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

func (a *Aggregator) merge(
	profile models.BusinessProfile,
	leads []models.Lead,
	status models.ProcessingStatus,
	chunks []models.DocumentChunk,
	webData []models.ScrapedWebData,
) models.AggregatedBusinessData {
	aboutSections := []string{}
	intelKeywords := []string{}
	for _, site := range webData {
		aboutSections = append(aboutSections, site.Business.AboutSections...)
		for _, kw := range site.Keywords {
			intelKeywords = appendUnique(intelKeywords, kw, maxIntelKeywords)
		}
	}

	return models.AggregatedBusinessData{
		Profile: profile,
		WebData: webData,
		Documents: models.DocumentKnowledge{
			TotalDocuments:     status.TotalDocuments,
			ProcessedDocuments: status.ProcessedDocuments,
			FailedDocuments:    status.FailedDocuments,
			TopKeywords:        analyze.ExpertiseAreas(chunks),
			Chunks:             chunks,
		},
		Leads: summarizeLeads(leads),
		Competitive: models.CompetitiveIntel{
			MarketPosition:   analyze.MarketPosition(profile.Description),
			UniqueValueProps: analyze.ValueProps(aboutSections),
			Keywords:         intelKeywords,
		},
		Content: models.ContentAnalysis{
			BrandVoice:     analyze.BrandVoice(aboutSections),
			ExpertiseAreas: analyze.ExpertiseAreas(chunks),
			PainPoints:     analyze.PainPoints(chunks),
		},
		Operational: summarizeOperational(profile, webData),
		LastUpdated: time.Now().UTC(),
	}
}

func summarizeLeads(leads []models.Lead) models.LeadInsights {
	insights := models.LeadInsights{
		TotalLeads:      len(leads),
		RecentInterests: []string{},
	}
	for _, lead := range leads {
		if lead.Interest != "" {
			insights.RecentInterests = appendUnique(insights.RecentInterests, lead.Interest, maxRecentInterests)
		}
		switch strings.ToLower(lead.Status) {
		case "qualified", "ready", "hot":
			insights.ConversionReady++
		}
	}
	return insights
}

func summarizeOperational(profile models.BusinessProfile, webData []models.ScrapedWebData) models.OperationalData {
	op := models.OperationalData{
		Emails:  []string{},
		Phones:  []string{},
		Address: profile.Address,
		Hours:   []string{},
	}
	if profile.Email != "" {
		op.Emails = append(op.Emails, profile.Email)
	}
	if profile.Phone != "" {
		op.Phones = append(op.Phones, profile.Phone)
	}
	for _, site := range webData {
		for _, email := range site.Contact.Emails {
			op.Emails = appendUnique(op.Emails, email, 10)
		}
		for _, phone := range site.Contact.Phones {
			op.Phones = appendUnique(op.Phones, phone, 10)
		}
		for _, hours := range site.Business.Hours {
			op.Hours = appendUnique(op.Hours, hours, 7)
		}
		if op.Address == "" && len(site.Contact.Addresses) > 0 {
			op.Address = site.Contact.Addresses[0]
		}
	}
	return op
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
