package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"urlvetter/internal/cache"
	"urlvetter/internal/config"
	"urlvetter/internal/features"
	"urlvetter/internal/fusion"
	"urlvetter/internal/heuristics"
	"urlvetter/internal/queue"
	"urlvetter/internal/scan"
	"urlvetter/internal/store"
)

// svc is the shared scan pipeline; built once in main, read-only after.
var svc *scan.Service

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ruleset, err := config.LoadRuleset(cfg.RulesetPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load ruleset")
	}
	if cfg.RulesetPath != "" {
		log.WithField("path", cfg.RulesetPath).Info("ruleset overrides loaded")
	}

	log.WithField("addr", cfg.RedisAddr).Info("connecting to Redis")
	if err := queue.Init(cfg.RedisAddr); err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}

	log.Info("connecting to database")
	if err := store.Init(cfg.DatabaseURL); err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	log.Info("connected to PostgreSQL, migrations applied")

	svc = &scan.Service{
		Scorer: heuristics.NewScorer(features.NewExtractor(ruleset)),
		Engine: fusion.NewEngine(),
		Cache:  cache.New(queue.Client, cfg.CacheTTL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/scan", enableCORS(requireAPIKey(scanHandler)))
	mux.HandleFunc("/upload", enableCORS(requireAPIKey(uploadHandler)))
	mux.HandleFunc("/status", enableCORS(requireAPIKey(statusHandler)))
	mux.HandleFunc("/results", enableCORS(requireAPIKey(resultsHandler)))
	mux.HandleFunc("/info", enableCORS(infoHandler))

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM / SIGINT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("urlvetter API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-quit
	log.Info("shutdown signal received, draining in-flight requests")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("graceful shutdown failed")
	}
	log.Info("server shut down cleanly")
}

// enableCORS middleware sets CORS headers for frontend access.
// Note: Access-Control-Allow-Origin is set to "*" which is permissive.
// Restrict this to your specific frontend origin in production.
func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
