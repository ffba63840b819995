package commands

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/wonny/fundwatch/internal/enrich"
	"github.com/wonny/fundwatch/internal/external/nasdaq"
	"github.com/wonny/fundwatch/internal/external/yahoo"
	"github.com/wonny/fundwatch/internal/holdings"
	"github.com/wonny/fundwatch/internal/merge"
	"github.com/wonny/fundwatch/internal/registry"
	"github.com/wonny/fundwatch/internal/scan"
	"github.com/wonny/fundwatch/internal/store"
	"github.com/wonny/fundwatch/pkg/config"
	"github.com/wonny/fundwatch/pkg/database"
	"github.com/wonny/fundwatch/pkg/httputil"
	"github.com/wonny/fundwatch/pkg/logger"
	"github.com/wonny/fundwatch/pkg/redis"
)

// app holds the wired dependency graph shared by the CLI commands
// ⭐ SSOT: dependency wiring happens only here
type app struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *database.DB
	Service  *scan.Service
	Store    *store.ResultRepository
	Registry *registry.Repository
	Progress *scan.ProgressBroker
}

// newApp loads config and builds the full scan stack. The caller must
// call Close when done.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Migrate(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "fundwatch")

	// One shared HTTP client; the per-host limiter keeps bursts away
	// from upstream sources even outside orchestrated scans
	httpClient := httputil.New(log).
		WithUserAgent(cfg.Nasdaq.UserAgent).
		WithRateLimit(rate.Every(cfg.Scan.RequestDelay), 1)

	nasdaqClient := nasdaq.NewClient(httpClient, cfg.Nasdaq, log)
	yahooClient := yahoo.NewClient(httpClient, cfg.Yahoo, log)

	parser := holdings.NewParser(cfg.Scan.TrackStateStreet)
	enricher := enrich.New(yahooClient, nasdaqClient, yahooClient, yahooClient, parser, log)

	orchestrator := scan.NewOrchestrator(enricher, cfg.Scan.RequestDelay, log)
	engine := merge.NewEngine(cfg.Scan.PriceThreshold)
	resultStore := store.NewResultRepository(db.Pool, cache, cfg.Scan.SaveRetries, cfg.Scan.SaveRetryDelay, log)
	registryRepo := registry.NewRepository(db.Pool, log)
	progress := scan.NewProgressBroker()

	service := scan.NewService(orchestrator, engine, resultStore, registryRepo, progress, log)

	return &app{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Service:  service,
		Store:    resultStore,
		Registry: registryRepo,
		Progress: progress,
	}, nil
}

// Close releases held connections
func (a *app) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
