package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/skyiq/backend/internal/aggregate"
	"github.com/skyiq/backend/internal/chunker"
	"github.com/skyiq/backend/internal/config"
	"github.com/skyiq/backend/internal/db"
	"github.com/skyiq/backend/internal/http/handlers"
	"github.com/skyiq/backend/internal/http/middleware"
	"github.com/skyiq/backend/internal/service"

	_ "github.com/skyiq/backend/docs"
)

func Router(cfg config.Config, store *db.Store, aggregator *aggregate.Aggregator, documents *service.DocumentService, searcher *chunker.Indexer, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Service-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:      store,
		Aggregator: aggregator,
		Documents:  documents,
		Searcher:   searcher,
		Validator:  validator.New(),
		Logger:     logger,
		ServiceKey: cfg.ServiceKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/public/voice-prompt/:tenantId", h.PublicVoicePrompt)
	}

	protected := api.Group("")
	protected.Use(middleware.ServiceKey(cfg.ServiceKey))
	{
		protected.POST("/voice-prompt/:tenantId", h.VoicePrompt)
		protected.POST("/documents/:tenantId", h.RegisterDocument)
		protected.GET("/documents/:tenantId/status", h.DocumentStatus)
		protected.GET("/search/:tenantId", h.SearchChunks)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
