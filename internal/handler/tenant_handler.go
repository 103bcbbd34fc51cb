package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"instagram-agent/internal/model"
	"instagram-agent/internal/tenant"
	"instagram-agent/pkg/logger"
	"instagram-agent/prometheus"
)

// TenantHandler serves the tenant management API.
type TenantHandler struct {
	directory *tenant.Directory
}

// NewTenantHandler creates the tenant management HTTP handler.
func NewTenantHandler(directory *tenant.Directory) *TenantHandler {
	return &TenantHandler{directory: directory}
}

// Create onboards a new tenant and issues its first API key. The
// response carries the webhook path and verify token exactly once.
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("create")

	var req struct {
		Name               string               `json:"name"`
		Email              string               `json:"email"`
		AccessToken        string               `json:"access_token"`
		InstagramAccountID string               `json:"instagram_account_id"`
		PageID             string               `json:"page_id"`
		Keywords           []string             `json:"keywords"`
		CustomResponses    []model.ResponseRule `json:"custom_responses"`
		DailyLimit         int                  `json:"daily_limit"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Email == "" || req.AccessToken == "" ||
		req.InstagramAccountID == "" || req.PageID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email, access_token, instagram_account_id and page_id are required"})
	}

	t, err := h.directory.Register(tenant.RegisterInput{
		Name:               req.Name,
		Email:              req.Email,
		AccessToken:        req.AccessToken,
		InstagramAccountID: req.InstagramAccountID,
		PageID:             req.PageID,
		Keywords:           req.Keywords,
		CustomResponses:    req.CustomResponses,
		DailyMessageLimit:  req.DailyLimit,
	})
	if err != nil {
		if errors.Is(err, tenant.ErrDuplicateEmail) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		log.Error("Failed to register tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	apiKey, err := h.directory.GenerateAPIKey(t.ID, "Initial Key")
	if err != nil {
		log.Error("Failed to generate API key", zap.Uint("tenant_id", t.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "API key generation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":      true,
		"tenant":       t,
		"api_key":      apiKey.Key,
		"webhook_url":  "/webhook/" + t.VerifyToken,
		"verify_token": t.VerifyToken,
	})
}

// List returns all tenants, or only active ones with ?active_only=true.
func (h *TenantHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("list")

	activeOnly, _ := strconv.ParseBool(c.QueryParam("active_only"))

	tenants, err := h.directory.List(activeOnly)
	if err != nil {
		log.Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
	}

	return c.JSON(http.StatusOK, tenants)
}

// Get returns one tenant by id.
func (h *TenantHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("access")

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	t, err := h.directory.GetByID(id)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to retrieve tenant", zap.Uint("tenant_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenant"})
	}

	return c.JSON(http.StatusOK, t)
}

// Update applies a partial field patch to a tenant.
func (h *TenantHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("update")

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var patch model.TenantPatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Failed to parse tenant patch", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	t, err := h.directory.Update(id, patch)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to update tenant", zap.Uint("tenant_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "tenant": t})
}

// Delete deactivates the tenant (soft delete).
func (h *TenantHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("deactivate")

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	if err := h.directory.Deactivate(id); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to deactivate tenant", zap.Uint("tenant_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant deactivation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Tenant deactivated"})
}

// Activate re-enables a previously deactivated tenant.
func (h *TenantHandler) Activate(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("activate")

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	if err := h.directory.Activate(id); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to activate tenant", zap.Uint("tenant_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant activation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Tenant activated"})
}

// Stats returns message and webhook counts for the tenant.
func (h *TenantHandler) Stats(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("stats")

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	stats, err := h.directory.GetStats(id)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to compute tenant stats", zap.Uint("tenant_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve stats"})
	}

	return c.JSON(http.StatusOK, stats)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
