package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jvossman/gloat/internal/cache"
	"github.com/jvossman/gloat/internal/challenge"
	"github.com/jvossman/gloat/internal/config"
	"github.com/jvossman/gloat/internal/database"
	"github.com/jvossman/gloat/internal/duel"
	server "github.com/jvossman/gloat/internal/http"
	"github.com/jvossman/gloat/internal/identity"
	"github.com/jvossman/gloat/internal/invite"
	"github.com/jvossman/gloat/internal/leaderboard"
	"github.com/jvossman/gloat/internal/metrics"
	"github.com/jvossman/gloat/internal/notifier/slack"
	"github.com/jvossman/gloat/internal/profile"
	"github.com/jvossman/gloat/internal/pubsub"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	challengeStore := challenge.New(db)
	duelStore := duel.New(db)
	inviteStore := invite.New(db)
	profileStore := profile.New(db)
	verifier := identity.New(db)

	var kv cache.KV
	if cfg.CacheEnabled {
		kv = cache.New(db)
	} else {
		log.Warn("Cache disabled, every leaderboard read recomputes")
		kv = cache.NewNoop()
	}

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	var pubsubClient pubsub.PubSubClient
	if cfg.ProjectID != "" {
		pubsubClient = pubsub.New(cfg.ProjectID)
	} else {
		log.Warn("GCP project not configured, events are not published")
		pubsubClient = pubsub.NewMock("")
	}

	board := leaderboard.New(challengeStore, profileStore, kv, metricsSvc)

	s := server.NewServer(
		challengeStore,
		duelStore,
		inviteStore,
		board,
		verifier,
		kv,
		metricsSvc,
		metricsHandler,
		cfg,
		notifier,
		pubsubClient,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
