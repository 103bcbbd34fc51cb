package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"instagram-agent/internal/audit"
	"instagram-agent/internal/instagram"
	"instagram-agent/internal/middleware"
	"instagram-agent/internal/model"
	"instagram-agent/internal/quota"
	"instagram-agent/pkg/logger"
	"instagram-agent/prometheus"
)

// SendHandler serves the authenticated direct-send API. The tenant is
// resolved from the API key by the auth middleware.
type SendHandler struct {
	limiter  *quota.Limiter
	auditLog *audit.Log
	newAPI   instagram.Factory
}

// NewSendHandler creates the send HTTP handler.
func NewSendHandler(limiter *quota.Limiter, auditLog *audit.Log, newAPI instagram.Factory) *SendHandler {
	return &SendHandler{
		limiter:  limiter,
		auditLog: auditLog,
		newAPI:   newAPI,
	}
}

// SendMessage sends a direct message on behalf of the authenticated
// tenant. Delivery failures are recorded, never retried.
func (h *SendHandler) SendMessage(c echo.Context) error {
	log := logger.FromEcho(c)

	t, ok := c.Get(middleware.TenantContextKey).(*model.Tenant)
	if !ok {
		log.Error("Tenant missing from request context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		RecipientID string `json:"recipient_id"`
		Message     string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse send request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.RecipientID == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipient_id and message are required"})
	}

	result, sendErr := h.newAPI(t).SendMessage(req.RecipientID, req.Message)
	if sendErr != nil {
		log.Error("Failed to send message",
			zap.Uint("tenant_id", t.ID),
			zap.Error(sendErr))
	}

	msg := model.Message{
		TenantID:    t.ID,
		RecipientID: req.RecipientID,
		MessageType: model.MessageTypeDM,
		MessageText: req.Message,
		Sent:        result != nil,
	}
	if sendErr != nil {
		msg.Error = sendErr.Error()
	}
	if _, err := h.auditLog.RecordMessage(msg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record message"})
	}
	prometheus.RecordMessage(msg.MessageType, msg.Sent)

	if msg.Sent {
		if err := h.limiter.Increment(t.ID); err != nil {
			log.Error("Failed to increment quota counter",
				zap.Uint("tenant_id", t.ID),
				zap.Error(err))
		}
	}

	if !msg.Sent {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "message delivery failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "result": result})
}
