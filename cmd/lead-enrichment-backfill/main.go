package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jadu-codes/flow-layer-2/internal/leadenrichment"
	"github.com/jadu-codes/flow-layer-2/internal/leads/repository"
	"github.com/jadu-codes/flow-layer-2/platform/config"
	"github.com/jadu-codes/flow-layer-2/platform/db"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"
	"github.com/jadu-codes/flow-layer-2/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting lead enrichment backfill")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	enrichmentModule := leadenrichment.NewModule(cfg, validator.New(), log)
	if !enrichmentModule.Service().Enabled() {
		log.Warn("lead enrichment disabled, skipping backfill")
		return
	}

	repo := repository.New(pool)
	// The dashboard cache expires on its own TTL; the backfill does not touch Redis.
	applier := enrichmentModule.Applier(repo, nil, metrics.New(), log)

	stats, err := leadenrichment.NewBackfill(repo, applier, log).Run(ctx)
	if err != nil {
		log.Error("lead enrichment backfill stopped", "error", err, "processed", stats.Processed)
		return
	}
	log.Info("lead enrichment backfill completed", "processed", stats.Processed, "updated", stats.Applied, "failed", stats.Failed)
}
