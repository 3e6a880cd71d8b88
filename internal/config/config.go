// Package config loads application configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the full application configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Env is the deployment environment (development, staging, production).
	Env string

	// AmapAPIKey authenticates against the AMap web service. Required.
	AmapAPIKey string

	// AmapBaseURL overrides the AMap endpoint, used in tests.
	AmapBaseURL string

	// MinimaxAPIKey authenticates against MiniMax. Required.
	MinimaxAPIKey string

	// MinimaxBaseURL overrides the MiniMax endpoint.
	MinimaxBaseURL string

	// MinimaxModel overrides the chat model.
	MinimaxModel string

	// MaxIterations bounds model invocations per conversation turn.
	MaxIterations int

	// SessionTTL is the idle lifetime of conversation state.
	SessionTTL time.Duration

	// OTLPEndpoint receives traces and metrics when telemetry is enabled.
	OTLPEndpoint string

	// TelemetryEnabled turns on the OTLP exporters.
	TelemetryEnabled bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	// godotenv does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             envOr("APP_PORT", "8080"),
		Env:              envOr("APP_ENV", "development"),
		AmapAPIKey:       os.Getenv("AMAP_API_KEY"),
		AmapBaseURL:      os.Getenv("AMAP_BASE_URL"),
		MinimaxAPIKey:    os.Getenv("MINIMAX_API_KEY"),
		MinimaxBaseURL:   os.Getenv("MINIMAX_BASE_URL"),
		MinimaxModel:     os.Getenv("MINIMAX_MODEL"),
		OTLPEndpoint:     envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
	}

	var err error
	if cfg.MaxIterations, err = envInt("CHAT_MAX_ITERATIONS", 0); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	var missing []string
	if c.AmapAPIKey == "" {
		missing = append(missing, "AMAP_API_KEY")
	}
	if c.MinimaxAPIKey == "" {
		missing = append(missing, "MINIMAX_API_KEY")
	}
	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
