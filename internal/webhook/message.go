package webhook

import (
	"strings"

	"go.uber.org/zap"

	"instagram-agent/internal/audit"
	"instagram-agent/internal/instagram"
	"instagram-agent/internal/model"
	"instagram-agent/internal/quota"
)

// MessageHandler selects and sends auto-replies for direct messages on
// behalf of one tenant.
type MessageHandler struct {
	tenant   *model.Tenant
	api      instagram.API
	limiter  *quota.Limiter
	auditLog *audit.Log
	log      *zap.Logger
}

// NewMessageHandler creates a message handler scoped to the tenant.
func NewMessageHandler(t *model.Tenant, api instagram.API, limiter *quota.Limiter, auditLog *audit.Log, log *zap.Logger) *MessageHandler {
	return &MessageHandler{
		tenant:   t,
		api:      api,
		limiter:  limiter,
		auditLog: auditLog,
		log:      log.With(zap.Uint("tenant_id", t.ID)),
	}
}

// ProcessMessage picks a reply for an inbound direct message and sends
// it. The tenant's custom responses win over the built-in categories;
// when the quota is exhausted or auto-reply is off, nothing is sent and
// no error is surfaced to the inbound caller.
func (h *MessageHandler) ProcessMessage(senderID, messageText string) error {
	h.log.Info("Processing message",
		zap.String("sender_id", senderID),
		zap.String("text", messageText))

	if !h.tenant.AutoReplyEnabled {
		h.log.Info("Auto-reply disabled")
		return nil
	}

	ok, err := h.limiter.Check(h.tenant.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	response := h.selectResponse(messageText)

	result, sendErr := h.api.SendMessage(senderID, response)
	if sendErr != nil {
		h.log.Error("Failed to send message", zap.Error(sendErr))
	}

	msg := model.Message{
		TenantID:    h.tenant.ID,
		RecipientID: senderID,
		MessageType: model.MessageTypeDM,
		MessageText: response,
		Sent:        result != nil,
	}
	if sendErr != nil {
		msg.Error = sendErr.Error()
	}
	return recordAttempt(h.auditLog, h.limiter, msg)
}

// SendMedia delivers a media attachment to the recipient and records
// the attempt.
func (h *MessageHandler) SendMedia(recipientID, mediaURL, mediaType string) (instagram.Result, error) {
	result, sendErr := h.api.SendMedia(recipientID, mediaURL, mediaType)
	if sendErr != nil {
		h.log.Error("Failed to send media", zap.Error(sendErr))
	}

	msg := model.Message{
		TenantID:    h.tenant.ID,
		RecipientID: recipientID,
		MessageType: model.MessageTypeDM,
		MediaURL:    mediaURL,
		Sent:        result != nil,
	}
	if sendErr != nil {
		msg.Error = sendErr.Error()
	}
	if err := recordAttempt(h.auditLog, h.limiter, msg); err != nil {
		return result, err
	}
	return result, nil
}

// selectResponse resolves the reply text: custom rules first, in their
// stored order, then the built-in categories, then the catch-all.
func (h *MessageHandler) selectResponse(messageText string) string {
	textLower := strings.ToLower(messageText)

	for _, rule := range h.tenant.CustomResponses {
		if strings.Contains(textLower, strings.ToLower(rule.Keyword)) {
			return rule.Response
		}
	}

	for _, category := range defaultMessageResponses {
		for _, keyword := range category.keywords {
			if strings.Contains(textLower, keyword) {
				return category.text
			}
		}
	}

	return fallbackMessageResponse
}
