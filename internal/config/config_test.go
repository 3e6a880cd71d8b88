package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("AMAP_API_KEY", "amap-key")
	t.Setenv("MINIMAX_API_KEY", "minimax-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("env = %q, want development", cfg.Env)
	}
	if cfg.TelemetryEnabled {
		t.Error("telemetry should default to disabled")
	}
	if cfg.MaxIterations != 0 {
		t.Errorf("max iterations = %d, want 0 (engine default)", cfg.MaxIterations)
	}
}

func TestLoad_MissingRequiredKeys(t *testing.T) {
	t.Setenv("AMAP_API_KEY", "")
	t.Setenv("MINIMAX_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing keys")
	}
	for _, key := range []string{"AMAP_API_KEY", "MINIMAX_API_KEY"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("CHAT_MAX_ITERATIONS", "8")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.MaxIterations != 8 {
		t.Errorf("max iterations = %d", cfg.MaxIterations)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Errorf("session ttl = %v", cfg.SessionTTL)
	}
	if !cfg.TelemetryEnabled {
		t.Error("telemetry should be enabled")
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	setRequired(t)
	t.Setenv("CHAT_MAX_ITERATIONS", "many")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid integer")
	}
}
