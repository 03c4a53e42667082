package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything whose reachability can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecks names the dependencies checked by the detailed health route.
type HealthChecks map[string]Pinger

// HealthHandler serves liveness and dependency health.
type HealthHandler struct {
	checks  HealthChecks
	started time.Time
	version string
	logger  *slog.Logger
}

// NewHealthHandler constructs the health endpoints.
func NewHealthHandler(checks HealthChecks, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		started: time.Now(),
		version: "1.0.0",
		logger:  logger.With("component", "http.health"),
	}
}

func (h *HealthHandler) base(status string) gin.H {
	return gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"version":   h.version,
	}
}

func (h *HealthHandler) Basic(c *gin.Context) {
	respond(c, http.StatusOK, "Service is healthy", h.base("healthy"))
}

// Detailed pings every dependency. A failing cache only degrades the status;
// the service keeps answering from the durable store.
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]bool, len(h.checks))
	healthy := true
	for name, pinger := range h.checks {
		err := pinger.Ping(ctx)
		results[name] = err == nil
		if err != nil {
			healthy = false
			h.logger.Error("health check failed", "dependency", name, "error", err)
		}
	}
	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	body := h.base(status)
	body["checks"] = results
	respond(c, http.StatusOK, "Health check successful", body)
}
