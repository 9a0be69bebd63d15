package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/skyiq/backend/internal/aggregate"
	"github.com/skyiq/backend/internal/chunker"
	"github.com/skyiq/backend/internal/config"
	"github.com/skyiq/backend/internal/db"
	httpapi "github.com/skyiq/backend/internal/http"
	"github.com/skyiq/backend/internal/scrape"
	"github.com/skyiq/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "skyiq-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	scraper := &scrape.Scraper{
		Timeout:   cfg.ScrapeTimeout,
		UserAgent: cfg.ScrapeUserAgent,
		Logger:    logger,
	}
	indexer := &chunker.Indexer{
		Store:     store,
		ChunkSize: cfg.ChunkSize,
		Logger:    logger,
	}
	aggregator := &aggregate.Aggregator{
		Profiles:  store,
		Leads:     store,
		Documents: store,
		Scraper:   scraper,
		Cache:     aggregate.NewMemoryCache(cfg.CacheTTL),
		Logger:    logger,
	}
	documents := &service.DocumentService{
		Store:      store,
		Indexer:    indexer,
		Scraper:    scraper,
		Aggregator: aggregator,
		Logger:     logger,
	}

	router := httpapi.Router(cfg, store, aggregator, documents, indexer, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
