package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.2.0"
	// HealthCheckTimeout bounds the data source ping in the readiness check
	HealthCheckTimeout = 2 * time.Second
)

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	pinger     datasource.Pinger
	sourceKind string
	startTime  time.Time
	env        string
}

// NewHealthHandler creates a new HealthHandler instance. A nil pinger means
// the data source has nothing to check (embedded fixtures) and is always
// ready.
func NewHealthHandler(pinger datasource.Pinger, sourceKind, env string) *HealthHandler {
	return &HealthHandler{
		pinger:     pinger,
		sourceKind: sourceKind,
		startTime:  time.Now(),
		env:        env,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status     string `json:"status"`
	DataSource string `json:"data_source"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	DataSource  string `json:"data_source"`
	Uptime      string `json:"uptime"`
}

// Health handles GET /health. It checks no dependencies and is used for
// liveness probes.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready.
// Returns 200 when the data source answers a ping, 503 otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.pinger == nil {
		c.JSON(http.StatusOK, ReadyResponse{Status: "ready", DataSource: "available"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Data source health check failed", err, map[string]interface{}{
				"source":  h.sourceKind,
				"timeout": HealthCheckTimeout.String(),
			})
		}

		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status:     "not_ready",
			DataSource: "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status:     "ready",
		DataSource: "available",
	})
}

// Info handles GET /api/v1/info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		DataSource:  h.sourceKind,
		Uptime:      formatUptime(time.Since(h.startTime)),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
