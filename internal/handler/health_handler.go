package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"instagram-agent/internal/tenant"
	"instagram-agent/pkg/logger"
	"instagram-agent/prometheus"
)

// HealthHandler serves the service info and health endpoints.
type HealthHandler struct {
	directory *tenant.Directory
}

// NewHealthHandler creates the health HTTP handler.
func NewHealthHandler(directory *tenant.Directory) *HealthHandler {
	return &HealthHandler{directory: directory}
}

// Home returns basic service information.
func (h *HealthHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "online",
		"service": "Instagram Agent Multi-Tenant",
		"version": "2.0.0",
		"features": []string{
			"Multi-client support",
			"Custom responses per client",
			"Rate limiting",
			"Webhook management",
			"Analytics",
		},
	})
}

// Health reports tenant counts for monitoring.
func (h *HealthHandler) Health(c echo.Context) error {
	log := logger.FromEcho(c)

	total, err := h.directory.Count(false)
	if err != nil {
		log.Error("Failed to count tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "unhealthy"})
	}

	active, err := h.directory.Count(true)
	if err != nil {
		log.Error("Failed to count active tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "unhealthy"})
	}

	prometheus.UpdateActiveTenants(active)

	return c.JSON(http.StatusOK, echo.Map{
		"status":         "healthy",
		"total_tenants":  total,
		"active_tenants": active,
	})
}
