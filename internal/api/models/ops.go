package models

import (
	"time"

	"github.com/waypoint-labs/waypoint/internal/provider/resilience"
)

// Health statuses.
const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
)

// Health is the body of GET /v1/ops/health.
type Health struct {
	Status  string         `json:"status"`
	Time    time.Time      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// Readiness is the body of GET /v1/ops/ready.
type Readiness struct {
	Status    string              `json:"status"`
	Time      time.Time           `json:"time"`
	Providers []resilience.Health `json:"providers,omitempty"`
}
