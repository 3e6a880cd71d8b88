package handler

import (
	"net/http"
	"time"

	"github.com/waypoint-labs/waypoint/internal/api/models"
	"github.com/waypoint-labs/waypoint/internal/api/response"
	"github.com/waypoint-labs/waypoint/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates an OpsHandler.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{version: version, buildTime: buildTime, registry: registry}
}

// HealthCheck handles GET /v1/ops/health, the liveness probe.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It reports degraded with a 503
// when any registered provider's circuit is open or probing.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	readiness := models.Readiness{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
	}
	status := http.StatusOK

	if h.registry != nil {
		readiness.Providers = h.registry.AllHealth()
		for _, provider := range readiness.Providers {
			if !provider.Healthy() {
				readiness.Status = models.HealthStatusDegraded
				status = http.StatusServiceUnavailable
				break
			}
		}
	}

	response.JSON(w, r, status, readiness)
}
