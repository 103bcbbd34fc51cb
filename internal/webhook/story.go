package webhook

import (
	"go.uber.org/zap"

	"instagram-agent/internal/audit"
	"instagram-agent/internal/instagram"
	"instagram-agent/internal/model"
	"instagram-agent/internal/quota"
)

// StoryMentionHandler acknowledges story mentions with a fixed reply.
type StoryMentionHandler struct {
	tenant   *model.Tenant
	api      instagram.API
	limiter  *quota.Limiter
	auditLog *audit.Log
	log      *zap.Logger
}

// NewStoryMentionHandler creates a story mention handler scoped to the
// tenant.
func NewStoryMentionHandler(t *model.Tenant, api instagram.API, limiter *quota.Limiter, auditLog *audit.Log, log *zap.Logger) *StoryMentionHandler {
	return &StoryMentionHandler{
		tenant:   t,
		api:      api,
		limiter:  limiter,
		auditLog: auditLog,
		log:      log.With(zap.Uint("tenant_id", t.ID)),
	}
}

// ProcessMention thanks the sender for the mention, regardless of
// content, as long as auto-reply is on and quota allows.
func (h *StoryMentionHandler) ProcessMention(senderID, mediaID string) error {
	h.log.Info("Processing story mention",
		zap.String("sender_id", senderID),
		zap.String("media_id", mediaID))

	if !h.tenant.AutoReplyEnabled {
		return nil
	}

	ok, err := h.limiter.Check(h.tenant.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	result, sendErr := h.api.SendMessage(senderID, storyMentionResponse)
	if sendErr != nil {
		h.log.Error("Failed to reply to story mention", zap.Error(sendErr))
	}

	msg := model.Message{
		TenantID:    h.tenant.ID,
		RecipientID: senderID,
		MessageType: model.MessageTypeStoryMention,
		MessageText: storyMentionResponse,
		Sent:        result != nil,
	}
	if sendErr != nil {
		msg.Error = sendErr.Error()
	}
	return recordAttempt(h.auditLog, h.limiter, msg)
}
