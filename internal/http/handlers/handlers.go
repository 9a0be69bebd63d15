package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/skyiq/backend/internal/aggregate"
	"github.com/skyiq/backend/internal/models"
	"github.com/skyiq/backend/internal/prompt"
)

// Store is the slice of the persistence layer the handlers touch directly.
// Everything else goes through the aggregator and the document service.
type Store interface {
	Ping(ctx context.Context) error
	EnsureBusinessProfile(ctx context.Context, tenantID string) (models.BusinessProfile, error)
	GetProcessingStatus(ctx context.Context, tenantID string) (models.ProcessingStatus, error)
	ListDocuments(ctx context.Context, tenantID string) ([]models.Document, error)
}

type PromptSource interface {
	Aggregate(ctx context.Context, tenantID string, forceRefresh bool) (models.AggregatedBusinessData, error)
	ClearCache(tenantID string)
}

type DocumentRegistrar interface {
	RegisterLink(ctx context.Context, tenantID, url string) (models.Document, error)
	RegisterFile(ctx context.Context, tenantID, filename, contentType, text string) (models.Document, error)
}

type ChunkSearcher interface {
	Search(ctx context.Context, tenantID, query string, limit int) ([]models.DocumentChunk, error)
}

type Handler struct {
	Store      Store
	Aggregator PromptSource
	Documents  DocumentRegistrar
	Searcher   ChunkSearcher
	Validator  *validator.Validate
	Logger     zerolog.Logger
	ServiceKey string
}

type VoicePromptRequest struct {
	CallType             string   `json:"callType" validate:"required,oneof=inbound outbound general"`
	CustomerIntent       string   `json:"customerIntent"`
	TimeOfDay            string   `json:"timeOfDay" validate:"omitempty,oneof=morning afternoon evening"`
	Urgency              string   `json:"urgency" validate:"omitempty,oneof=low medium high"`
	PreviousInteractions []string `json:"previousInteractions"`
	SpecificTopic        string   `json:"specificTopic"`
	RefreshWebContent    bool     `json:"refreshWebContent"`
	IncludeBusinessData  bool     `json:"includeBusinessData"`
}

type VoicePromptResponse struct {
	Prompt              string                         `json:"prompt"`
	ContextualKnowledge []string                       `json:"contextualKnowledge"`
	SuggestedResponses  []string                       `json:"suggestedResponses"`
	HandoffTriggers     []string                       `json:"handoffTriggers"`
	Metadata            models.PromptMetadata          `json:"metadata"`
	BusinessData        *models.AggregatedBusinessData `json:"businessData,omitempty"`
}

type RegisterDocumentRequest struct {
	SourceType  string `json:"sourceType" validate:"required,oneof=link file"`
	URL         string `json:"url" validate:"omitempty,url"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Generate a voice agent prompt
// @Description Aggregates the tenant's business context and builds the system prompt package
// @Tags prompt
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param request body VoicePromptRequest true "Call context"
// @Success 200 {object} VoicePromptResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/voice-prompt/{tenantId} [post]
func (h *Handler) VoicePrompt(c *gin.Context) {
	tenantID, ok := tenantParam(c)
	if !ok {
		return
	}

	var req VoicePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid call context", err.Error())
		return
	}

	if req.RefreshWebContent {
		h.Aggregator.ClearCache(tenantID)
	}
	data, err := h.Aggregator.Aggregate(c.Request.Context(), tenantID, req.RefreshWebContent)
	if err != nil {
		if errors.Is(err, aggregate.ErrProfileNotFound) {
			writeError(c, http.StatusNotFound, "PROFILE_NOT_FOUND", "No business profile for tenant", tenantID)
			return
		}
		h.Logger.Error().Err(err).Str("tenant_id", tenantID).Msg("aggregation failed")
		writeError(c, http.StatusInternalServerError, "AGGREGATION_ERROR", "Failed to aggregate business data", err.Error())
		return
	}

	generated := prompt.Build(data, models.PromptContext{
		CallType:             req.CallType,
		CustomerIntent:       req.CustomerIntent,
		TimeOfDay:            req.TimeOfDay,
		Urgency:              req.Urgency,
		PreviousInteractions: req.PreviousInteractions,
		SpecificTopic:        req.SpecificTopic,
	})

	resp := VoicePromptResponse{
		Prompt:              generated.SystemPrompt,
		ContextualKnowledge: generated.ContextualKnowledge,
		SuggestedResponses:  generated.SuggestedResponses,
		HandoffTriggers:     generated.HandoffTriggers,
		Metadata:            generated.Metadata,
	}
	if req.IncludeBusinessData {
		resp.BusinessData = &data
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Generate a voice agent prompt (read-only)
// @Description Query-parameter variant for anonymous or service consumption; never forces a refresh
// @Tags prompt
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param callType query string false "inbound|outbound|general"
// @Success 200 {object} VoicePromptResponse
// @Failure 404 {object} map[string]any
// @Router /api/public/voice-prompt/{tenantId} [get]
func (h *Handler) PublicVoicePrompt(c *gin.Context) {
	tenantID, ok := tenantParam(c)
	if !ok {
		return
	}

	req := VoicePromptRequest{
		CallType:       c.DefaultQuery("callType", "general"),
		CustomerIntent: c.Query("customerIntent"),
		TimeOfDay:      c.Query("timeOfDay"),
		Urgency:        c.Query("urgency"),
		SpecificTopic:  c.Query("specificTopic"),
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid call context", err.Error())
		return
	}

	data, err := h.Aggregator.Aggregate(c.Request.Context(), tenantID, false)
	if err != nil {
		if errors.Is(err, aggregate.ErrProfileNotFound) {
			writeError(c, http.StatusNotFound, "PROFILE_NOT_FOUND", "No business profile for tenant", tenantID)
			return
		}
		h.Logger.Error().Err(err).Str("tenant_id", tenantID).Msg("aggregation failed")
		writeError(c, http.StatusInternalServerError, "AGGREGATION_ERROR", "Failed to aggregate business data", err.Error())
		return
	}

	generated := prompt.Build(data, models.PromptContext{
		CallType:       req.CallType,
		CustomerIntent: req.CustomerIntent,
		TimeOfDay:      req.TimeOfDay,
		Urgency:        req.Urgency,
		SpecificTopic:  req.SpecificTopic,
	})
	c.JSON(http.StatusOK, VoicePromptResponse{
		Prompt:              generated.SystemPrompt,
		ContextualKnowledge: generated.ContextualKnowledge,
		SuggestedResponses:  generated.SuggestedResponses,
		HandoffTriggers:     generated.HandoffTriggers,
		Metadata:            generated.Metadata,
	})
}

// @Summary Register a document
// @Description Registers an external link or an uploaded text file and processes it into searchable chunks
// @Tags documents
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Success 200 {object} models.Document
// @Failure 400 {object} map[string]any
// @Router /api/documents/{tenantId} [post]
func (h *Handler) RegisterDocument(c *gin.Context) {
	tenantID, ok := tenantParam(c)
	if !ok {
		return
	}

	// First access provisions the defaulted profile row for the tenant.
	if _, err := h.Store.EnsureBusinessProfile(c.Request.Context(), tenantID); err != nil {
		h.Logger.Error().Err(err).Str("tenant_id", tenantID).Msg("profile provisioning failed")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to provision tenant profile", err.Error())
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.registerUpload(c, tenantID)
		return
	}

	var req RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid document registration", err.Error())
		return
	}

	var (
		doc models.Document
		err error
	)
	switch req.SourceType {
	case models.SourceTypeLink:
		if req.URL == "" {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "url is required for link documents", nil)
			return
		}
		doc, err = h.Documents.RegisterLink(c.Request.Context(), tenantID, req.URL)
	case models.SourceTypeFile:
		if req.Filename == "" || req.Content == "" {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "filename and content are required for file documents", nil)
			return
		}
		doc, err = h.Documents.RegisterFile(c.Request.Context(), tenantID, req.Filename, req.ContentType, req.Content)
	}
	if err != nil {
		h.Logger.Error().Err(err).Str("tenant_id", tenantID).Msg("document registration failed")
		writeError(c, http.StatusInternalServerError, "REGISTRATION_ERROR", "Failed to register document", err.Error())
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) registerUpload(c *gin.Context, tenantID string) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file field required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot open uploaded file", err.Error())
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot read uploaded file", err.Error())
		return
	}

	doc, err := h.Documents.RegisterFile(c.Request.Context(), tenantID, fh.Filename, fh.Header.Get("Content-Type"), string(raw))
	if err != nil {
		h.Logger.Error().Err(err).Str("tenant_id", tenantID).Msg("document registration failed")
		writeError(c, http.StatusInternalServerError, "REGISTRATION_ERROR", "Failed to register document", err.Error())
		return
	}
	c.JSON(http.StatusOK, doc)
}

// @Summary Document processing status
// @Tags documents
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Success 200 {object} map[string]any
// @Router /api/documents/{tenantId}/status [get]
func (h *Handler) DocumentStatus(c *gin.Context) {
	tenantID, ok := tenantParam(c)
	if !ok {
		return
	}

	status, err := h.Store.GetProcessingStatus(c.Request.Context(), tenantID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to read processing status", err.Error())
		return
	}
	docs, err := h.Store.ListDocuments(c.Request.Context(), tenantID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list documents", err.Error())
		return
	}
	// Content stays out of the listing payload.
	for i := range docs {
		docs[i].Content = ""
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"documents": docs,
	})
}

// @Summary Search document chunks
// @Tags search
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param q query string true "Search query"
// @Param limit query int false "Max results (default 10)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/search/{tenantId} [get]
func (h *Handler) SearchChunks(c *gin.Context) {
	tenantID, ok := tenantParam(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "q query parameter required", nil)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer", raw)
			return
		}
		limit = n
	}

	chunks, err := h.Searcher.Search(c.Request.Context(), tenantID, query, limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "SEARCH_ERROR", "Search failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(chunks),
		"results": chunks,
	})
}

func tenantParam(c *gin.Context) (string, bool) {
	tenantID := strings.TrimSpace(c.Param("tenantId"))
	if tenantID == "" || len(tenantID) > 64 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "tenantId path parameter invalid", nil)
		return "", false
	}
	return tenantID, true
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
