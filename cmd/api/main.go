package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jadu-codes/flow-layer-2/internal/dashboard"
	apphttp "github.com/jadu-codes/flow-layer-2/internal/http"
	"github.com/jadu-codes/flow-layer-2/internal/http/router"
	"github.com/jadu-codes/flow-layer-2/internal/intake"
	"github.com/jadu-codes/flow-layer-2/internal/leadenrichment"
	"github.com/jadu-codes/flow-layer-2/internal/leads/normalize"
	"github.com/jadu-codes/flow-layer-2/internal/leads/repository"
	"github.com/jadu-codes/flow-layer-2/internal/leads/scoring"
	"github.com/jadu-codes/flow-layer-2/platform/config"
	"github.com/jadu-codes/flow-layer-2/platform/db"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"
	"github.com/jadu-codes/flow-layer-2/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	weights, err := scoring.LoadWeights(cfg.GetScoringConfigPath())
	if err != nil {
		log.Error("failed to load scoring weights", "error", err, "path", cfg.GetScoringConfigPath())
		panic("failed to load scoring weights: " + err.Error())
	}

	redisClient, closeRedis := initRedis(ctx, cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	// Shared validator instance for dependency injection
	val := validator.New()
	appMetrics := metrics.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsRepo := repository.New(pool)
	var cache *dashboard.Cache
	if redisClient != nil {
		cache = dashboard.NewCache(redisClient, cfg.GetDashboardCacheTTL())
	}
	normalizer := normalize.New(scoring.NewScorer(weights), cfg.GetDefaultPhoneRegion(), val, log)

	enrichmentModule := leadenrichment.NewModule(cfg, val, log)
	applier := enrichmentModule.Applier(leadsRepo, cache, appMetrics, log)

	intakeModule := intake.NewModule(cfg, leadsRepo, normalizer, applier, cache, appMetrics, log)
	dashboardModule := dashboard.NewModule(cfg, leadsRepo, cache, val, appMetrics, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Metrics: appMetrics,
		Modules: []apphttp.Module{
			intakeModule,
			dashboardModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// initRedis connects the dashboard cache. Any failure leaves the cache off
// rather than blocking startup.
func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, func()) {
	if !cfg.IsRedisEnabled() {
		log.Info("REDIS_URL not configured; dashboard cache disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; dashboard cache disabled", "error", err)
		return nil, nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable at startup; cache reads will fall back to the database", "error", err)
	} else {
		log.Info("dashboard cache connected")
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
