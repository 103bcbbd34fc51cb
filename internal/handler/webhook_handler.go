package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"instagram-agent/internal/audit"
	"instagram-agent/internal/tenant"
	"instagram-agent/internal/webhook"
	"instagram-agent/pkg/logger"
)

// WebhookHandler serves the per-tenant webhook verification handshake
// and event deliveries. Responses at this boundary are deliberately
// plain: the upstream platform only inspects the status code.
type WebhookHandler struct {
	directory *tenant.Directory
	router    *webhook.Router
	auditLog  *audit.Log
}

// NewWebhookHandler creates the webhook HTTP handler.
func NewWebhookHandler(directory *tenant.Directory, router *webhook.Router, auditLog *audit.Log) *WebhookHandler {
	return &WebhookHandler{
		directory: directory,
		router:    router,
		auditLog:  auditLog,
	}
}

// Verify handles the GET subscription handshake. The challenge is
// echoed back only when the path token resolves to a tenant, the mode
// is "subscribe" and hub.verify_token matches the path token.
func (h *WebhookHandler) Verify(c echo.Context) error {
	log := logger.FromEcho(c)

	verifyToken := c.Param("verify_token")
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	t, err := h.directory.GetByVerifyToken(verifyToken)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			log.Warn("Unknown verify token on webhook handshake")
			return c.String(http.StatusForbidden, "Forbidden")
		}
		log.Error("Failed to resolve verify token", zap.Error(err))
		return c.String(http.StatusInternalServerError, "ERROR")
	}

	if mode == "subscribe" && token == verifyToken {
		log.Info("Webhook verified",
			zap.Uint("tenant_id", t.ID),
			zap.String("name", t.Name))
		return c.String(http.StatusOK, challenge)
	}

	log.Warn("Webhook verification failed", zap.Uint("tenant_id", t.ID))
	return c.String(http.StatusForbidden, "Forbidden")
}

// Receive handles event deliveries. The delivery as a whole always
// acknowledges success once the tenant is resolved, even when entry
// processing hit handled errors, so upstream does not retry.
func (h *WebhookHandler) Receive(c echo.Context) error {
	log := logger.FromEcho(c)

	verifyToken := c.Param("verify_token")

	t, err := h.directory.GetByVerifyToken(verifyToken)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			log.Warn("Unknown verify token on webhook delivery")
			return c.String(http.StatusForbidden, "Forbidden")
		}
		log.Error("Failed to resolve verify token", zap.Error(err))
		return c.String(http.StatusInternalServerError, "ERROR")
	}

	if !t.Active {
		log.Warn("Webhook delivery for inactive tenant", zap.Uint("tenant_id", t.ID))
		return c.String(http.StatusOK, "CLIENT_INACTIVE")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Error("Failed to read webhook body", zap.Error(err))
		return c.String(http.StatusInternalServerError, "ERROR")
	}

	log.Info("Webhook received", zap.Uint("tenant_id", t.ID))

	recordID, err := h.auditLog.RecordWebhook(&t.ID, "instagram_event", body)
	if err != nil {
		return c.String(http.StatusInternalServerError, "ERROR")
	}

	var payload webhook.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("Malformed webhook payload", zap.Error(err))
		if markErr := h.auditLog.MarkProcessed(recordID, "malformed payload: "+err.Error()); markErr != nil {
			log.Error("Failed to mark webhook processed", zap.Error(markErr))
		}
		return c.String(http.StatusOK, "EVENT_RECEIVED")
	}

	// Entry failures are isolated: one bad entry never stops its
	// siblings, and the delivery still acknowledges success.
	var errTexts []string
	for _, entry := range payload.Entry {
		if err := h.router.ProcessEntry(t, entry); err != nil {
			log.Error("Entry processing failed",
				zap.Uint("tenant_id", t.ID),
				zap.String("entry_id", entry.ID),
				zap.Error(err))
			errTexts = append(errTexts, err.Error())
		}
	}

	if err := h.auditLog.MarkProcessed(recordID, strings.Join(errTexts, "; ")); err != nil {
		log.Error("Failed to mark webhook processed", zap.Error(err))
	}

	return c.String(http.StatusOK, "EVENT_RECEIVED")
}
