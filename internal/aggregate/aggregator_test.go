package aggregate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyiq/backend/internal/models"
)

type fakeStores struct {
	profile    models.BusinessProfile
	profileErr error
	leadsErr   error
	statusErr  error

	profileCalls int
	leadCalls    int
	statusCalls  int
	chunkCalls   int
}

func (f *fakeStores) GetBusinessProfile(_ context.Context, tenantID string) (models.BusinessProfile, error) {
	f.profileCalls++
	if f.profileErr != nil {
		return models.BusinessProfile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeStores) GetRecentLeads(_ context.Context, _ string, limit int) ([]models.Lead, error) {
	f.leadCalls++
	if f.leadsErr != nil {
		return nil, f.leadsErr
	}
	if limit != 25 {
		return nil, fmt.Errorf("unexpected lead limit %d", limit)
	}
	return []models.Lead{
		{ID: "l1", Interest: "water heaters", Status: "qualified"},
		{ID: "l2", Interest: "drain cleaning", Status: "new"},
	}, nil
}

func (f *fakeStores) GetProcessingStatus(_ context.Context, _ string) (models.ProcessingStatus, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return models.ProcessingStatus{}, f.statusErr
	}
	return models.ProcessingStatus{TotalDocuments: 3, ProcessedDocuments: 2, FailedDocuments: 1}, nil
}

func (f *fakeStores) GetRecentChunks(_ context.Context, _ string, limit int) ([]models.DocumentChunk, error) {
	f.chunkCalls++
	if limit != 100 {
		return nil, fmt.Errorf("unexpected chunk limit %d", limit)
	}
	return []models.DocumentChunk{
		{ID: "c1", Content: "We repair heaters.", Keywords: []string{"heaters"}},
	}, nil
}

type fakeScraper struct {
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) models.ScrapedWebData {
	f.calls = append(f.calls, url)
	return models.ScrapedWebData{
		URL:      url,
		Title:    "Fake Site",
		Keywords: []string{"plumbing"},
		Business: models.BusinessInfo{
			Services:      []string{"Drain cleaning service"},
			AboutSections: []string{"We are the leading local provider of certified plumbing repairs, serving the whole valley for thirty years now."},
		},
	}
}

func newTestAggregator(stores *fakeStores, scraper *fakeScraper, clock func() time.Time) *Aggregator {
	cache := NewMemoryCache(30 * time.Minute)
	if clock != nil {
		cache.Now = clock
	}
	return &Aggregator{
		Profiles:  stores,
		Leads:     stores,
		Documents: stores,
		Scraper:   scraper,
		Cache:     cache,
		Logger:    zerolog.Nop(),
	}
}

func testProfile() models.BusinessProfile {
	p := models.NewBusinessProfile("t1")
	p.BusinessName = "Acme Plumbing"
	p.Description = "The leading plumbing provider"
	p.Links = []string{"https://acme.example", "https://acme.example", "not a url", "ftp://acme.example"}
	return p
}

func TestAggregateCacheHitSkipsCollaborators(t *testing.T) {
	stores := &fakeStores{profile: testProfile()}
	scraper := &fakeScraper{}
	agg := newTestAggregator(stores, scraper, nil)

	first, err := agg.Aggregate(context.Background(), "t1", false)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	second, err := agg.Aggregate(context.Background(), "t1", false)
	if err != nil {
		t.Fatalf("cached aggregate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached bundle differs from computed bundle")
	}
	if stores.profileCalls != 1 || stores.leadCalls != 1 || stores.statusCalls != 1 || stores.chunkCalls != 1 {
		t.Fatalf("cache hit touched collaborators: %+v", stores)
	}
	if len(scraper.calls) != 1 {
		t.Fatalf("cache hit triggered scrapes: %v", scraper.calls)
	}
}

func TestAggregateForceRefreshReinvokesEverything(t *testing.T) {
	stores := &fakeStores{profile: testProfile()}
	scraper := &fakeScraper{}
	agg := newTestAggregator(stores, scraper, nil)

	if _, err := agg.Aggregate(context.Background(), "t1", false); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if _, err := agg.Aggregate(context.Background(), "t1", true); err != nil {
		t.Fatalf("forced aggregate: %v", err)
	}

	if stores.profileCalls != 2 || stores.leadCalls != 2 || stores.statusCalls != 2 || stores.chunkCalls != 2 {
		t.Fatalf("force refresh must re-invoke every collaborator: %+v", stores)
	}
	if len(scraper.calls) != 2 {
		t.Fatalf("force refresh must re-scrape: %v", scraper.calls)
	}
}

func TestAggregateRecomputesAfterExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	stores := &fakeStores{profile: testProfile()}
	agg := newTestAggregator(stores, &fakeScraper{}, func() time.Time { return clock() })

	if _, err := agg.Aggregate(context.Background(), "t1", false); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	now = now.Add(31 * time.Minute)
	if _, err := agg.Aggregate(context.Background(), "t1", false); err != nil {
		t.Fatalf("aggregate after expiry: %v", err)
	}
	if stores.profileCalls != 2 {
		t.Fatalf("expired entry must recompute, profile calls = %d", stores.profileCalls)
	}
}

func TestAggregateAfterClearCacheRefetchesOnce(t *testing.T) {
	stores := &fakeStores{profile: testProfile()}
	agg := newTestAggregator(stores, &fakeScraper{}, nil)

	if _, err := agg.Aggregate(context.Background(), "t1", false); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	agg.ClearCache("t1")
	if _, err := agg.Aggregate(context.Background(), "t1", false); err != nil {
		t.Fatalf("aggregate after clear: %v", err)
	}
	if stores.profileCalls != 2 || stores.leadCalls != 2 || stores.statusCalls != 2 || stores.chunkCalls != 2 {
		t.Fatalf("clear cache must trigger exactly one refetch per collaborator: %+v", stores)
	}
}

func TestAggregateProfileNotFoundPropagates(t *testing.T) {
	stores := &fakeStores{profileErr: ErrProfileNotFound}
	agg := newTestAggregator(stores, &fakeScraper{}, nil)

	_, err := agg.Aggregate(context.Background(), "missing", false)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if stores.leadCalls != 0 {
		t.Fatalf("aggregation must stop on missing profile")
	}
}

func TestAggregateDegradesFailingSources(t *testing.T) {
	stores := &fakeStores{
		profile:   testProfile(),
		leadsErr:  errors.New("lead store down"),
		statusErr: errors.New("status query failed"),
	}
	agg := newTestAggregator(stores, &fakeScraper{}, nil)

	data, err := agg.Aggregate(context.Background(), "t1", false)
	if err != nil {
		t.Fatalf("failing sources must degrade, not abort: %v", err)
	}
	if data.Leads.TotalLeads != 0 {
		t.Fatalf("degraded lead source must yield empty insights")
	}
	if data.Documents.TotalDocuments != 0 {
		t.Fatalf("degraded status must yield zero counts")
	}
	// The healthy source still lands in the same snapshot.
	if len(data.Documents.Chunks) != 1 {
		t.Fatalf("healthy chunk source lost: %+v", data.Documents)
	}
}

func TestAggregateDedupesAndValidatesLinks(t *testing.T) {
	stores := &fakeStores{profile: testProfile()}
	scraper := &fakeScraper{}
	agg := newTestAggregator(stores, scraper, nil)

	if _, err := agg.Aggregate(context.Background(), "t1", false); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(scraper.calls) != 1 || scraper.calls[0] != "https://acme.example" {
		t.Fatalf("expected one deduped valid url, got %v", scraper.calls)
	}
}

func TestAggregateMergesAnalysis(t *testing.T) {
	stores := &fakeStores{profile: testProfile()}
	agg := newTestAggregator(stores, &fakeScraper{}, nil)

	data, err := agg.Aggregate(context.Background(), "t1", false)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if data.Competitive.MarketPosition != "Market Leader" {
		t.Fatalf("market position not derived: %q", data.Competitive.MarketPosition)
	}
	if data.Content.BrandVoice == "" {
		t.Fatalf("brand voice not derived from about sections")
	}
	if data.Leads.ConversionReady != 1 {
		t.Fatalf("expected one conversion-ready lead, got %d", data.Leads.ConversionReady)
	}
	if len(data.Operational.Emails) != 0 {
		t.Fatalf("profile without email must yield no operational emails: %+v", data.Operational.Emails)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Now()
	cache := NewMemoryCache(time.Minute)
	cache.Now = func() time.Time { return now }

	cache.Set("t1", models.AggregatedBusinessData{LastUpdated: now})
	if _, ok := cache.Get("t1"); !ok {
		t.Fatalf("fresh entry must hit")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("t1"); ok {
		t.Fatalf("expired entry must miss")
	}
}

func TestMemoryCacheClearIsolatesTenants(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	cache.Set("t1", models.AggregatedBusinessData{})
	cache.Set("t2", models.AggregatedBusinessData{})
	cache.Clear("t1")
	if _, ok := cache.Get("t1"); ok {
		t.Fatalf("cleared tenant must miss")
	}
	if _, ok := cache.Get("t2"); !ok {
		t.Fatalf("other tenants must be unaffected")
	}
}
