package webhook

import (
	"strings"

	"go.uber.org/zap"

	"instagram-agent/internal/audit"
	"instagram-agent/internal/instagram"
	"instagram-agent/internal/model"
	"instagram-agent/internal/quota"
)

// CommentHandler replies to comments containing the tenant's configured
// keywords.
type CommentHandler struct {
	tenant   *model.Tenant
	api      instagram.API
	limiter  *quota.Limiter
	auditLog *audit.Log
	log      *zap.Logger
}

// NewCommentHandler creates a comment handler scoped to the tenant.
func NewCommentHandler(t *model.Tenant, api instagram.API, limiter *quota.Limiter, auditLog *audit.Log, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		tenant:   t,
		api:      api,
		limiter:  limiter,
		auditLog: auditLog,
		log:      log.With(zap.Uint("tenant_id", t.ID)),
	}
}

// ProcessComment replies when the comment contains at least one of the
// tenant's keywords. Comments without a keyword match produce no reply
// and no Message record.
func (h *CommentHandler) ProcessComment(commentID, commentText, username string) error {
	h.log.Info("Processing comment",
		zap.String("username", username),
		zap.String("text", commentText))

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

	textLower := strings.ToLower(commentText)

	matched := false
	for _, keyword := range h.tenant.Keywords {
		if strings.Contains(textLower, strings.ToLower(keyword)) {
			matched = true
			break
		}
	}
	if !matched {
		h.log.Info("Comment does not contain configured keywords")
		return nil
	}

	response := h.selectResponse(textLower, username)

	result, sendErr := h.api.ReplyToComment(commentID, response)
	if sendErr != nil {
		h.log.Error("Failed to reply to comment",
			zap.String("comment_id", commentID),
			zap.Error(sendErr))
	}

	msg := model.Message{
		TenantID:    h.tenant.ID,
		RecipientID: username,
		MessageType: model.MessageTypeComment,
		MessageText: response,
		Sent:        result != nil,
	}
	if sendErr != nil {
		msg.Error = sendErr.Error()
	}
	return recordAttempt(h.auditLog, h.limiter, msg)
}

// selectResponse picks the reply template for the comment, addressed to
// the commenting username.
func (h *CommentHandler) selectResponse(textLower, username string) string {
	for _, category := range commentResponses {
		for _, keyword := range category.keywords {
			if strings.Contains(textLower, keyword) {
				return mention(username, category.text)
			}
		}
	}
	return mention(username, fallbackCommentResponse)
}
