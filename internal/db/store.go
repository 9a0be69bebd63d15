package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skyiq/backend/internal/aggregate"
	"github.com/skyiq/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

const profileColumns = `tenant_id, business_name, email, phone, address, description,
	links, file_names, file_types, file_sizes, file_urls,
	lead_file_names, lead_file_types, lead_file_sizes, lead_file_urls,
	logo_url, voice_sid, created_at, updated_at`

// GetBusinessProfile returns a tenant's profile, or ErrProfileNotFound when
// the tenant has never been provisioned.
func (s *Store) GetBusinessProfile(ctx context.Context, tenantID string) (models.BusinessProfile, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM business_profiles WHERE tenant_id = $1`, tenantID)

	var p models.BusinessProfile
	err := row.Scan(
		&p.TenantID, &p.BusinessName, &p.Email, &p.Phone, &p.Address, &p.Description,
		&p.Links, &p.FileNames, &p.FileTypes, &p.FileSizes, &p.FileURLs,
		&p.LeadFileNames, &p.LeadFileTypes, &p.LeadFileSizes, &p.LeadFileURLs,
		&p.LogoURL, &p.VoiceSID, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.BusinessProfile{}, aggregate.ErrProfileNotFound
	}
	if err != nil {
		return models.BusinessProfile{}, err
	}
	return p, nil
}

// EnsureBusinessProfile creates the defaulted profile row on a tenant's
// first access and returns whichever row exists afterwards.
func (s *Store) EnsureBusinessProfile(ctx context.Context, tenantID string) (models.BusinessProfile, error) {
	def := models.NewBusinessProfile(tenantID)
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO business_profiles (tenant_id, links, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id) DO NOTHING
	`, def.TenantID, def.Links, def.CreatedAt, def.UpdatedAt)
	if err != nil {
		return models.BusinessProfile{}, err
	}
	return s.GetBusinessProfile(ctx, tenantID)
}

func (s *Store) UpdateBusinessProfile(ctx context.Context, p models.BusinessProfile) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE business_profiles SET
			business_name = $2, email = $3, phone = $4, address = $5, description = $6,
			links = $7, file_names = $8, file_types = $9, file_sizes = $10, file_urls = $11,
			lead_file_names = $12, lead_file_types = $13, lead_file_sizes = $14, lead_file_urls = $15,
			logo_url = $16, voice_sid = $17, updated_at = NOW()
		WHERE tenant_id = $1
	`, p.TenantID, p.BusinessName, p.Email, p.Phone, p.Address, p.Description,
		p.Links, p.FileNames, p.FileTypes, p.FileSizes, p.FileURLs,
		p.LeadFileNames, p.LeadFileTypes, p.LeadFileSizes, p.LeadFileURLs,
		p.LogoURL, p.VoiceSID)
	return err
}

func (s *Store) GetRecentLeads(ctx context.Context, tenantID string, limit int) ([]models.Lead, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, tenant_id, name, phone, email, status, interest, source, created_at
		FROM leads WHERE tenant_id = $1
		ORDER BY created_at DESC LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lead
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(&l.ID, &l.TenantID, &l.Name, &l.Phone, &l.Email, &l.Status, &l.Interest, &l.Source, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) GetProcessingStatus(ctx context.Context, tenantID string) (models.ProcessingStatus, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM documents WHERE tenant_id = $1
	`, tenantID, models.DocumentCompleted, models.DocumentFailed)

	var st models.ProcessingStatus
	if err := row.Scan(&st.TotalDocuments, &st.ProcessedDocuments, &st.FailedDocuments); err != nil {
		return models.ProcessingStatus{}, err
	}
	return st, nil
}

// GetRecentChunks returns the newest chunks of completed documents joined
// with the parent document's title and source.
func (s *Store) GetRecentChunks(ctx context.Context, tenantID string, limit int) ([]models.DocumentChunk, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT c.id, c.document_id, c.tenant_id, c.chunk_index, c.content,
			c.word_count, c.summary, c.keywords, d.title, d.source_url, c.created_at
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.tenant_id = $1 AND d.status = $2
		ORDER BY c.created_at DESC, c.chunk_index ASC
		LIMIT $3
	`, tenantID, models.DocumentCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

func (s *Store) InsertChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	rows := make([][]any, 0, len(chunks))
	for _, c := range chunks {
		rows = append(rows, []any{c.ID, c.DocumentID, c.TenantID, c.ChunkIndex, c.Content, c.WordCount, c.Summary, c.Keywords, c.CreatedAt})
	}
	_, err := s.Pool.CopyFrom(ctx,
		pgx.Identifier{"document_chunks"},
		[]string{"id", "document_id", "tenant_id", "chunk_index", "content", "word_count", "summary", "keywords", "created_at"},
		pgx.CopyFromRows(rows))
	return err
}

func (s *Store) ListChunksByTenant(ctx context.Context, tenantID string) ([]models.DocumentChunk, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT c.id, c.document_id, c.tenant_id, c.chunk_index, c.content,
			c.word_count, c.summary, c.keywords, d.title, d.source_url, c.created_at
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.tenant_id = $1
		ORDER BY c.created_at DESC, c.chunk_index ASC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

func scanChunks(rows pgx.Rows) ([]models.DocumentChunk, error) {
	var out []models.DocumentChunk
	for rows.Next() {
		var c models.DocumentChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.TenantID, &c.ChunkIndex, &c.Content,
			&c.WordCount, &c.Summary, &c.Keywords, &c.DocumentTitle, &c.DocumentSource, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) RecordSearchQuery(ctx context.Context, tenantID, query string, resultCount int, elapsedMs int64) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO search_queries (tenant_id, query, result_count, elapsed_ms, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, tenantID, query, resultCount, elapsedMs)
	return err
}

const documentColumns = `id, tenant_id, source_type, source_url, title, content_type,
	status, error_message, content, processed_at, created_at`

func (s *Store) FindDocumentBySource(ctx context.Context, tenantID, sourceURL string) (*models.Document, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE tenant_id = $1 AND source_url = $2`, tenantID, sourceURL)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) GetDocument(ctx context.Context, tenantID, id string) (models.Document, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return scanDocument(row)
}

func (s *Store) ListDocuments(ctx context.Context, tenantID string) ([]models.Document, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func scanDocument(row pgx.Row) (models.Document, error) {
	var (
		d            models.Document
		errorMessage *string
		content      *string
	)
	if err := row.Scan(&d.ID, &d.TenantID, &d.SourceType, &d.SourceURL, &d.Title, &d.ContentType,
		&d.Status, &errorMessage, &content, &d.ProcessedAt, &d.CreatedAt); err != nil {
		return models.Document{}, err
	}
	if errorMessage != nil {
		d.ErrorMessage = *errorMessage
	}
	if content != nil {
		d.Content = *content
	}
	return d, nil
}

func (s *Store) CreateDocument(ctx context.Context, doc models.Document) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO documents (id, tenant_id, source_type, source_url, title, content_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, doc.ID, doc.TenantID, doc.SourceType, doc.SourceURL, doc.Title, doc.ContentType, doc.Status, doc.CreatedAt)
	return err
}

func (s *Store) MarkDocumentProcessing(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE documents SET status = $1, error_message = NULL WHERE id = $2`,
		models.DocumentProcessing, id)
	return err
}

func (s *Store) CompleteDocument(ctx context.Context, id, title, content string, processedAt time.Time) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE documents SET status = $1, title = $2, content = $3, processed_at = $4, error_message = NULL
		WHERE id = $5
	`, models.DocumentCompleted, title, content, processedAt, id)
	return err
}

func (s *Store) FailDocument(ctx context.Context, id, errorMessage string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE documents SET status = $1, error_message = $2 WHERE id = $3`,
		models.DocumentFailed, errorMessage, id)
	return err
}
