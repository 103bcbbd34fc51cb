package webhook

import (
	"go.uber.org/zap"

	"instagram-agent/internal/audit"
	"instagram-agent/internal/instagram"
	"instagram-agent/internal/model"
	"instagram-agent/internal/quota"
	"instagram-agent/prometheus"
)

// Router classifies inbound entries and dispatches them to the policy
// handler for their event kind, with tenant context attached.
type Router struct {
	limiter  *quota.Limiter
	auditLog *audit.Log
	newAPI   instagram.Factory
	log      *zap.Logger
}

// NewRouter creates an event router.
func NewRouter(limiter *quota.Limiter, auditLog *audit.Log, newAPI instagram.Factory, log *zap.Logger) *Router {
	return &Router{
		limiter:  limiter,
		auditLog: auditLog,
		newAPI:   newAPI,
		log:      log,
	}
}

// ProcessEntry handles every event inside one entry. Failures are
// isolated per event: one bad event does not stop its siblings. The
// first error encountered is returned so the caller can record it.
func (r *Router) ProcessEntry(t *model.Tenant, entry Entry) error {
	var firstErr error

	for _, event := range entry.Messaging {
		if err := r.processMessagingEvent(t, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, change := range entry.Changes {
		if err := r.processChange(t, change); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if len(entry.Messaging) == 0 && len(entry.Changes) == 0 {
		r.log.Warn("Unrecognized webhook entry shape",
			zap.Uint("tenant_id", t.ID),
			zap.String("entry_id", entry.ID))
	}

	return firstErr
}

// processMessagingEvent dispatches direct messages and story mentions.
// Echoes of the tenant's own sends are dropped before policy selection.
func (r *Router) processMessagingEvent(t *model.Tenant, event MessagingEvent) error {
	senderID := event.Sender.ID

	switch {
	case event.Message != nil:
		if event.Message.IsEcho {
			r.log.Debug("Ignoring echo of own message",
				zap.Uint("tenant_id", t.ID),
				zap.String("mid", event.Message.MID))
			return nil
		}
		if event.Message.Text == "" {
			return nil
		}
		prometheus.RecordWebhookEvent("message")
		handler := NewMessageHandler(t, r.newAPI(t), r.limiter, r.auditLog, r.log)
		return handler.ProcessMessage(senderID, event.Message.Text)

	case event.StoryMention != nil:
		prometheus.RecordWebhookEvent("story_mention")
		handler := NewStoryMentionHandler(t, r.newAPI(t), r.limiter, r.auditLog, r.log)
		return handler.ProcessMention(senderID, event.StoryMention.ID)

	default:
		r.log.Warn("Unrecognized messaging event",
			zap.Uint("tenant_id", t.ID),
			zap.String("sender_id", senderID))
		return nil
	}
}

// processChange dispatches comment events; post mentions are logged
// only.
func (r *Router) processChange(t *model.Tenant, change Change) error {
	switch change.Field {
	case "comments":
		prometheus.RecordWebhookEvent("comment")
		handler := NewCommentHandler(t, r.newAPI(t), r.limiter, r.auditLog, r.log)
		username := change.Value.From.Username
		if username == "" {
			username = "unknown"
		}
		return handler.ProcessComment(change.Value.ID, change.Value.Text, username)

	case "mentions":
		prometheus.RecordWebhookEvent("mention")
		r.log.Info("Post mention detected", zap.Uint("tenant_id", t.ID))
		return nil

	default:
		r.log.Warn("Unrecognized change field",
			zap.Uint("tenant_id", t.ID),
			zap.String("field", change.Field))
		return nil
	}
}
