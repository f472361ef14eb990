package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"urlvetter/internal/cache"
	"urlvetter/internal/config"
	"urlvetter/internal/features"
	"urlvetter/internal/fusion"
	"urlvetter/internal/heuristics"
	"urlvetter/internal/queue"
	"urlvetter/internal/scan"
	"urlvetter/internal/store"
	"urlvetter/internal/worker"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Info("starting urlvetter worker")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ruleset, err := config.LoadRuleset(cfg.RulesetPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load ruleset")
	}

	if err := queue.Init(cfg.RedisAddr); err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	log.WithField("addr", cfg.RedisAddr).Info("connected to Redis")

	if err := store.Init(cfg.DatabaseURL); err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	log.Info("connected to PostgreSQL, migrations applied")

	runner := &worker.Runner{
		Service: &scan.Service{
			Scorer: heuristics.NewScorer(features.NewExtractor(ruleset)),
			Engine: fusion.NewEngine(),
			Cache:  cache.New(queue.Client, cfg.CacheTTL),
		},
		ScanTimeout: cfg.ScanTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-quit
		log.Info("shutdown signal received")
		cancel()
	}()

	runner.Start(ctx)
}
