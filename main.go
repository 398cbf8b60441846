package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/LucasFasolato/padel-point-engine/internal/booking"
	"github.com/LucasFasolato/padel-point-engine/internal/challenge"
	"github.com/LucasFasolato/padel-point-engine/internal/config"
	"github.com/LucasFasolato/padel-point-engine/internal/database"
	"github.com/LucasFasolato/padel-point-engine/internal/elo"
	server "github.com/LucasFasolato/padel-point-engine/internal/http"
	"github.com/LucasFasolato/padel-point-engine/internal/ladder"
	"github.com/LucasFasolato/padel-point-engine/internal/league"
	"github.com/LucasFasolato/padel-point-engine/internal/metrics"
	"github.com/LucasFasolato/padel-point-engine/internal/notifier/slack"
	"github.com/LucasFasolato/padel-point-engine/internal/processor"
	"github.com/LucasFasolato/padel-point-engine/internal/pubsub"
	"github.com/LucasFasolato/padel-point-engine/internal/standings"
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

	metricsSvc := metrics.NewService()
	metricsStore := metrics.New(db)
	metricsHandler := metrics.NewMetricsHandler()
	eloCfg := elo.Config{KFactor: cfg.Elo.KFactor, InitialRating: cfg.Elo.InitialRating}
	ladderStore := ladder.New(db, eloCfg, metricsSvc, metricsStore)
	leagueStore := league.New(db)
	challengeService := challenge.New(db, ladderStore)
	standingsStore := standings.New(db)
	bookingClient := booking.NewClient()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc, metricsStore)
	pubsub := pubsub.New(cfg.ProjectID)
	ingestor := booking.NewIngestor(bookingClient, ladderStore, metricsSvc, cfg.Playtomic.TenantID)
	processor := processor.New(ladderStore, standingsStore, leagueStore, notifier, metricsSvc, pubsub)

	s := server.NewServer(
		ladderStore,
		leagueStore,
		challengeService,
		standingsStore,
		metricsSvc,
		metricsStore,
		metricsHandler,
		cfg,
		ingestor,
		notifier,
		processor,
		pubsub,
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
