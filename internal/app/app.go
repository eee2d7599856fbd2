// Package app wires configuration, storage and the pipeline stages into
// runnable modes.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/econbrief/news-enricher/internal/core/embeddings"
	"github.com/econbrief/news-enricher/internal/core/llm"
	"github.com/econbrief/news-enricher/internal/ingest"
	"github.com/econbrief/news-enricher/internal/ingest/fetch"
	"github.com/econbrief/news-enricher/internal/ingest/imagefilter"
	"github.com/econbrief/news-enricher/internal/ingest/search"
	"github.com/econbrief/news-enricher/internal/platform/config"
	"github.com/econbrief/news-enricher/internal/platform/observability"
	"github.com/econbrief/news-enricher/internal/process/pipeline"
	"github.com/econbrief/news-enricher/internal/readapi"
	"github.com/econbrief/news-enricher/internal/storage"
)

const apiShutdownTimeout = 5 * time.Second

// App owns the wired components and exposes the run modes.
type App struct {
	cfg       *config.Config
	db        *storage.DB
	ingestion *ingest.Service
	lifecycle *pipeline.Lifecycle
	api       *readapi.Handler
	logger    *zerolog.Logger
}

// New connects to the database, runs migrations and wires every
// component. The search provider is Naver when credentials are present,
// otherwise the configured RSS feeds; with neither, collection is
// disabled.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	db, err := storage.New(ctx, cfg.PostgresDSN, storage.PoolOptions{
		MaxConns:        cfg.DBMaxConnections,
		MinConns:        cfg.DBMinConnections,
		MaxConnIdleTime: cfg.DBMaxConnIdle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("migrate database: %w", err)
	}

	app := &App{
		cfg:    cfg,
		db:     db,
		api:    readapi.NewHandler(db, logger),
		logger: logger,
	}

	if provider := newSearchProvider(cfg, logger); provider != nil {
		collector := ingest.NewCollector(
			provider,
			fetch.NewWebFetcher(cfg.FetchRPS, cfg.FetchTimeout),
			imagefilter.New(cfg.ImageProbeEnabled),
			logger,
		)
		persister := ingest.NewPersister(db, logger)
		app.ingestion = ingest.NewService(collector, persister, cfg.SearchKeywords, cfg.SearchResultsPerQuery, logger)
	} else {
		logger.Warn().Msg("no search provider configured, collection disabled")
	}

	client := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
		RateLimit:   cfg.RateLimitRPS,
	}, logger)

	embedder := embeddings.NewOpenAIProvider(embeddings.OpenAIConfig{
		APIKey:     cfg.LLMAPIKey,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
		RateLimit:  cfg.RateLimitRPS,
	})

	app.lifecycle = pipeline.NewLifecycle(
		db,
		pipeline.NewEnricher(client, db, logger),
		pipeline.NewMatcher(embedder, db, cfg.TermTopK, logger),
		pipeline.NewContextualizer(db, logger),
		cfg.EnrichmentMode,
		logger,
	)

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.db.Close()
}

// DB exposes the storage handle for liveness checks.
func (a *App) DB() *storage.DB {
	return a.db
}

// RunCollect executes one ingestion pass.
func (a *App) RunCollect(ctx context.Context) error {
	if a.ingestion == nil {
		return errors.New("collection requested but no search provider is configured")
	}

	return a.ingestion.Run(ctx)
}

// RunProcess executes one enrichment pass under the pipeline advisory
// lock. When another instance holds the lock the pass is skipped.
func (a *App) RunProcess(ctx context.Context) error {
	lock, acquired, err := a.db.TryAcquireRunLock(ctx)
	if err != nil {
		return err
	}

	if !acquired {
		a.logger.Info().Msg("another pipeline instance is running, skipping pass")

		return nil
	}

	defer lock.Release(ctx)

	return a.lifecycle.Run(ctx)
}

// RunLoop runs the selected passes on the worker poll interval until
// ctx is canceled. The first pass starts immediately. A failed pass is
// logged and retried on the next tick.
func (a *App) RunLoop(ctx context.Context, collect, process bool) error {
	ticker := time.NewTicker(a.cfg.WorkerPollInterval)
	defer ticker.Stop()

	for {
		if err := a.runPass(ctx, collect, process); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (a *App) runPass(ctx context.Context, collect, process bool) error {
	if collect && a.ingestion != nil {
		if err := a.RunCollect(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}

			a.logger.Error().Err(err).Msg("ingestion pass failed")
		}
	}

	if process {
		if err := a.RunProcess(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}

			a.logger.Error().Err(err).Msg("processing pass failed")
		}
	}

	return ctx.Err()
}

// ServeAPI runs the article read API until ctx is canceled.
func (a *App) ServeAPI(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.APIPort),
		Handler:           a.api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.logger.Info().Int("port", a.cfg.APIPort).Msg("read api started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), apiShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}

// ServeHealth runs the health and metrics endpoint until ctx is canceled.
func (a *App) ServeHealth(ctx context.Context) error {
	return observability.ServeHealth(ctx, a.cfg.HealthPort, a.db, a.logger)
}

func newSearchProvider(cfg *config.Config, logger *zerolog.Logger) search.Provider {
	if cfg.NaverEnabled() {
		return search.NewNaverProvider(search.NaverConfig{
			ClientID:     cfg.NaverClientID,
			ClientSecret: cfg.NaverClientSecret,
			Timeout:      cfg.FetchTimeout,
			RPS:          cfg.FetchRPS,
		}, logger)
	}

	if len(cfg.RSSFeedURLs) > 0 {
		return search.NewRSSProvider(cfg.RSSFeedURLs, cfg.FetchTimeout, logger)
	}

	return nil
}
