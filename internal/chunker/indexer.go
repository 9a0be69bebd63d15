package chunker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skyiq/backend/internal/models"
)

const defaultSearchLimit = 10

// ChunkStore is the persistence contract the indexer needs. Chunks are
// written in one batch per document and read back per tenant, joined with
// the parent document's title and source.
type ChunkStore interface {
	InsertChunks(ctx context.Context, chunks []models.DocumentChunk) error
	ListChunksByTenant(ctx context.Context, tenantID string) ([]models.DocumentChunk, error)
	RecordSearchQuery(ctx context.Context, tenantID, query string, resultCount int, elapsedMs int64) error
}

type Indexer struct {
	Store     ChunkStore
	ChunkSize int
	Logger    zerolog.Logger
}

// Index splits extracted text into chunks, derives keywords and a summary
// per chunk, and persists the batch with contiguous zero-based indices.
func (ix *Indexer) Index(ctx context.Context, documentID, tenantID, text string) ([]models.DocumentChunk, error) {
	size := ix.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	pieces := SplitText(text, size)
	now := time.Now().UTC()
	chunks := make([]models.DocumentChunk, 0, len(pieces))
	for i, content := range pieces {
		chunks = append(chunks, models.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			TenantID:   tenantID,
			ChunkIndex: i,
			Content:    content,
			WordCount:  CountWords(content),
			Summary:    Summarize(content),
			Keywords:   ExtractKeywords(content),
			CreatedAt:  now,
		})
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	if err := ix.Store.InsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}
	ix.Logger.Info().
		Str("document_id", documentID).
		Str("tenant_id", tenantID).
		Int("chunks", len(chunks)).
		Msg("document indexed")
	return chunks, nil
}

// Search runs an OR-of-substring match over chunk content and summaries for
// one tenant. Every call is recorded as a query-analytics event with result
// count and elapsed milliseconds.
func (ix *Indexer) Search(ctx context.Context, tenantID, query string, limit int) ([]models.DocumentChunk, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	start := time.Now()

	terms := searchTerms(query)
	chunks, err := ix.Store.ListChunksByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	matches := make([]models.DocumentChunk, 0, limit)
	for _, chunk := range chunks {
		if len(matches) >= limit {
			break
		}
		if matchesAny(chunk, terms) {
			matches = append(matches, chunk)
		}
	}

	elapsed := time.Since(start).Milliseconds()
	if err := ix.Store.RecordSearchQuery(ctx, tenantID, query, len(matches), elapsed); err != nil {
		// Analytics are best effort; a search never fails on a write miss.
		ix.Logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("search analytics write failed")
	}
	ix.Logger.Info().
		Str("tenant_id", tenantID).
		Str("query", query).
		Int("results", len(matches)).
		Int64("elapsed_ms", elapsed).
		Msg("chunk search")
	return matches, nil
}

func searchTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) > 2 {
			terms = append(terms, w)
		}
	}
	return terms
}

func matchesAny(chunk models.DocumentChunk, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	content := strings.ToLower(chunk.Content)
	summary := strings.ToLower(chunk.Summary)
	for _, term := range terms {
		if strings.Contains(content, term) || strings.Contains(summary, term) {
			return true
		}
	}
	return false
}
