package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skyiq/backend/internal/chunker"
	"github.com/skyiq/backend/internal/models"
)

// DocumentStore is the persistence contract for the document lifecycle.
// FindDocumentBySource returns nil when no document exists for the pair.
type DocumentStore interface {
	FindDocumentBySource(ctx context.Context, tenantID, sourceURL string) (*models.Document, error)
	CreateDocument(ctx context.Context, doc models.Document) error
	MarkDocumentProcessing(ctx context.Context, id string) error
	CompleteDocument(ctx context.Context, id, title, content string, processedAt time.Time) error
	FailDocument(ctx context.Context, id, errorMessage string) error
}

// TextSource fetches a link's content; it is total (see scrape package).
type TextSource interface {
	Scrape(ctx context.Context, url string) models.ScrapedWebData
}

// CacheInvalidator drops a tenant's aggregation cache entry so the next
// prompt build sees newly registered content.
type CacheInvalidator interface {
	ClearCache(tenantID string)
}

type Indexer interface {
	Index(ctx context.Context, documentID, tenantID, text string) ([]models.DocumentChunk, error)
}

// DocumentService registers uploaded files and external links and runs
// each document through its processing lifecycle: pending -> processing ->
// completed|failed. A processing failure is recorded on the row and never
// aborts other documents.
type DocumentService struct {
	Store      DocumentStore
	Indexer    Indexer
	Scraper    TextSource
	Aggregator CacheInvalidator
	Logger     zerolog.Logger
}

// RegisterLink registers and processes an external link. Registration is
// idempotent on (tenant, source url): an existing document is returned
// untouched and not re-processed.
func (s *DocumentService) RegisterLink(ctx context.Context, tenantID, url string) (models.Document, error) {
	existing, err := s.Store.FindDocumentBySource(ctx, tenantID, url)
	if err != nil {
		return models.Document{}, fmt.Errorf("lookup document: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	doc := models.Document{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		SourceType: models.SourceTypeLink,
		SourceURL:  url,
		Title:      url,
		Status:     models.DocumentPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Store.CreateDocument(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("create document: %w", err)
	}
	s.Aggregator.ClearCache(tenantID)

	return s.processLink(ctx, doc)
}

// RegisterFile registers an uploaded file whose text has already been
// extracted at the boundary. Idempotent on (tenant, source url).
func (s *DocumentService) RegisterFile(ctx context.Context, tenantID, filename, contentType, text string) (models.Document, error) {
	sourceURL := "file://" + filename
	existing, err := s.Store.FindDocumentBySource(ctx, tenantID, sourceURL)
	if err != nil {
		return models.Document{}, fmt.Errorf("lookup document: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	doc := models.Document{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		SourceType:  models.SourceTypeFile,
		SourceURL:   sourceURL,
		Title:       filename,
		ContentType: contentType,
		Status:      models.DocumentPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.CreateDocument(ctx, doc); err != nil {
		return models.Document{}, fmt.Errorf("create document: %w", err)
	}
	s.Aggregator.ClearCache(tenantID)

	return s.process(ctx, doc, doc.Title, text)
}

func (s *DocumentService) processLink(ctx context.Context, doc models.Document) (models.Document, error) {
	if err := s.Store.MarkDocumentProcessing(ctx, doc.ID); err != nil {
		return models.Document{}, fmt.Errorf("mark processing: %w", err)
	}
	doc.Status = models.DocumentProcessing

	scraped := s.Scraper.Scrape(ctx, doc.SourceURL)
	if strings.HasPrefix(scraped.Description, "Failed to scrape") || scraped.FullText == "" {
		return s.fail(ctx, doc, "no extractable text: "+scraped.Description)
	}

	title := doc.Title
	if scraped.Title != "" {
		title = scraped.Title
	}
	return s.complete(ctx, doc, title, scraped.FullText)
}

func (s *DocumentService) process(ctx context.Context, doc models.Document, title, text string) (models.Document, error) {
	if err := s.Store.MarkDocumentProcessing(ctx, doc.ID); err != nil {
		return models.Document{}, fmt.Errorf("mark processing: %w", err)
	}
	doc.Status = models.DocumentProcessing

	if strings.TrimSpace(text) == "" {
		return s.fail(ctx, doc, "document has no extractable text")
	}
	return s.complete(ctx, doc, title, text)
}

func (s *DocumentService) complete(ctx context.Context, doc models.Document, title, text string) (models.Document, error) {
	if _, err := s.Indexer.Index(ctx, doc.ID, doc.TenantID, text); err != nil {
		return s.fail(ctx, doc, "indexing failed: "+err.Error())
	}

	processedAt := time.Now().UTC()
	if err := s.Store.CompleteDocument(ctx, doc.ID, title, text, processedAt); err != nil {
		return models.Document{}, fmt.Errorf("complete document: %w", err)
	}
	doc.Title = title
	doc.Content = text
	doc.Status = models.DocumentCompleted
	doc.ProcessedAt = &processedAt
	s.Logger.Info().
		Str("document_id", doc.ID).
		Str("tenant_id", doc.TenantID).
		Int("content_len", len(text)).
		Msg("document processed")
	return doc, nil
}

// fail records the failure on the document row. The error is reported in
// the row, not returned: a single bad document must not fail the request.
func (s *DocumentService) fail(ctx context.Context, doc models.Document, reason string) (models.Document, error) {
	if err := s.Store.FailDocument(ctx, doc.ID, reason); err != nil {
		return models.Document{}, fmt.Errorf("record failure: %w", err)
	}
	doc.Status = models.DocumentFailed
	doc.ErrorMessage = reason
	s.Logger.Warn().
		Str("document_id", doc.ID).
		Str("tenant_id", doc.TenantID).
		Str("reason", reason).
		Msg("document processing failed")
	return doc, nil
}

var _ Indexer = (*chunker.Indexer)(nil)
