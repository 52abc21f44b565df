// Package control wires configuration into a running finecheck service.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/finecheck/internal/api"
	"github.com/vietddude/finecheck/internal/core/config"
	"github.com/vietddude/finecheck/internal/core/worker"
	"github.com/vietddude/finecheck/internal/infra/ocr"
	"github.com/vietddude/finecheck/internal/infra/ocr/tesseract"
	redisclient "github.com/vietddude/finecheck/internal/infra/redis"
	"github.com/vietddude/finecheck/internal/infra/storage"
	"github.com/vietddude/finecheck/internal/infra/storage/memory"
	"github.com/vietddude/finecheck/internal/infra/storage/postgres"
	"github.com/vietddude/finecheck/internal/infra/transport"
	"github.com/vietddude/finecheck/internal/lookup"
)

// App is the main application struct that manages the service lifecycle.
type App struct {
	cfg         *config.AppConfig
	transport   *transport.HTTPTransport
	ocr         *ocr.Shared
	service     *lookup.Service
	healthMon   *api.Monitor
	server      *api.Server
	pruner      *worker.Pruner
	history     storage.HistoryRepository
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// Option customises App construction.
type Option func(*options)

type options struct {
	ocrFactory ocr.Factory
}

// WithOCRFactory replaces the tesseract engine.
func WithOCRFactory(f ocr.Factory) Option {
	return func(o *options) { o.ocrFactory = f }
}

// New creates an App with all dependencies initialized.
func New(ctx context.Context, cfg *config.AppConfig, opts ...Option) (*App, error) {
	o := options{ocrFactory: tesseract.Factory(cfg.OCR.Language)}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{cfg: cfg, log: slog.Default().With("component", "app")}

	// 1. Initialize Storage
	if cfg.Database.Enabled() {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		app.db = db
		app.history = postgres.NewHistoryRepo(db)
		slog.Info("Using PostgreSQL history storage")
	} else {
		app.history = memory.NewHistoryRepo()
		slog.Info("Using Memory history storage")
	}

	// 2. Initialize Cache
	serviceOpts := []lookup.ServiceOption{lookup.WithHistory(app.history)}
	if cfg.Redis.Enabled() {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			app.closeStores()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		app.redisClient = client
		serviceOpts = append(serviceOpts, lookup.WithCache(redisclient.NewResultCache(client, cfg.Cache.TTL)))
		slog.Info("Using Redis result cache", "ttl", cfg.Cache.TTL)
	}

	// 3. Initialize Upstream Transport and OCR
	tr, err := transport.New(transport.Config{
		BaseURL:   cfg.Lookup.BaseURL,
		UserAgent: cfg.Lookup.UserAgent,
		Timeout:   cfg.Lookup.RequestTimeout,
	})
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to init transport: %w", err)
	}
	app.transport = tr

	app.ocr = ocr.NewShared(o.ocrFactory)
	var recognizer ocr.Recognizer = app.ocr
	if cfg.OCR.PreprocessScale > 1 {
		recognizer = ocr.WithPreprocess(app.ocr, cfg.OCR.PreprocessScale)
	}

	// 4. Initialize Lookup Pipeline
	checker := lookup.NewChecker(tr, recognizer, lookup.ConfigFrom(cfg))
	app.service = lookup.NewService(checker, worker.NewPool(cfg.Pool.MaxConcurrent), serviceOpts...)

	// 5. Initialize Health and API
	app.healthMon = api.NewMonitor(tr)
	if app.db != nil {
		app.healthMon.Register("database", app.db)
	}
	if app.redisClient != nil {
		app.healthMon.Register("redis", app.redisClient)
	}
	app.server = api.NewServer(app.service, app.healthMon, cfg.Server.Port)

	if cfg.History.Retention > 0 {
		app.pruner = worker.NewPruner(cfg.History.Retention, app.history)
	}

	return app, nil
}

// Service returns the lookup service for in-process callers such as the CLI.
func (a *App) Service() *lookup.Service {
	return a.service
}

// Start starts the API server and background workers.
func (a *App) Start(ctx context.Context) error {
	// Load the OCR model now instead of on the first request
	if err := a.ocr.Warm(ctx); err != nil {
		a.log.Warn("OCR warm-up failed, will retry on first lookup", "error", err)
	}

	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("API server failed", "error", err)
		}
	}()
	a.log.Info("API server listening", "port", a.cfg.Server.Port)

	// Start DB Metrics Collector
	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	// Start Pruner
	if a.pruner != nil {
		a.log.Info("Starting history pruner", "retention", a.cfg.History.Retention)
		go a.pruner.Start(ctx)
	}

	return nil
}

// Stop stops the server and releases every resource.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping finecheck...")

	err := a.server.Stop(ctx)
	a.Close()
	return err
}

// Close releases resources without touching the server. Used by one-shot commands.
func (a *App) Close() {
	if err := a.ocr.Close(); err != nil {
		a.log.Error("Failed to close OCR engine", "error", err)
	}
	_ = a.transport.Close()
	a.closeStores()
}

func (a *App) closeStores() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("Failed to close database", "error", err)
		}
	}
}
