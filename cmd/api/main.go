// Package main provides the entrypoint for the Waypoint API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/waypoint-labs/waypoint/internal/amap"
	"github.com/waypoint-labs/waypoint/internal/api"
	"github.com/waypoint-labs/waypoint/internal/api/middleware"
	"github.com/waypoint-labs/waypoint/internal/assistant"
	"github.com/waypoint-labs/waypoint/internal/assistant/minimax"
	"github.com/waypoint-labs/waypoint/internal/config"
	"github.com/waypoint-labs/waypoint/internal/provider/resilience"
	"github.com/waypoint-labs/waypoint/internal/session"
	"github.com/waypoint-labs/waypoint/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "waypoint-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Waypoint API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HTTP metrics")
	}
	assistantMetrics, err := assistant.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize assistant metrics")
	}

	registry := resilience.NewRegistry()
	maps := amap.NewClient(amap.ClientConfig{
		APIKey:   cfg.AmapAPIKey,
		BaseURL:  cfg.AmapBaseURL,
		Registry: registry,
		Logger:   log,
	})
	log.Info().Msg("mapping client initialized")

	sessions := session.NewStore(session.StoreConfig{TTL: cfg.SessionTTL})

	llm := minimax.NewClient(minimax.ClientConfig{
		APIKey:  cfg.MinimaxAPIKey,
		BaseURL: cfg.MinimaxBaseURL,
		Model:   cfg.MinimaxModel,
		Logger:  log,
	})
	dispatcher := assistant.NewDispatcher(assistant.DispatcherConfig{
		Maps:    maps,
		Logger:  log,
		Metrics: assistantMetrics,
	})
	engine := assistant.NewEngine(assistant.EngineConfig{
		Provider:      llm,
		Dispatcher:    dispatcher,
		Sessions:      sessions,
		MaxIterations: cfg.MaxIterations,
		Logger:        log,
		Metrics:       assistantMetrics,
	})
	log.Info().Str("provider", llm.Name()).Msg("assistant engine initialized")

	router := api.NewRouter(api.RouterConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Logger:    log,
		Metrics:   httpMetrics,
		Maps:      maps,
		Engine:    engine,
		Sessions:  sessions,
		Registry:  registry,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
