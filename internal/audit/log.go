package audit

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"instagram-agent/internal/model"
)

// Log records every inbound webhook and every outbound send attempt.
// Webhook rows are created on receipt and mutated exactly once to mark
// completion; message rows are append-only.
type Log struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLog creates an audit log backed by the given database.
func NewLog(db *gorm.DB, log *zap.Logger) *Log {
	return &Log{db: db, log: log}
}

// RecordWebhook stores a received payload and returns the record id.
// tenantID is nil when the delivery could not be attributed.
func (l *Log) RecordWebhook(tenantID *uint, eventType string, payload json.RawMessage) (uint, error) {
	event := model.WebhookEvent{
		TenantID:   tenantID,
		EventType:  eventType,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}
	if result := l.db.Create(&event); result.Error != nil {
		l.log.Error("Failed to record webhook", zap.Error(result.Error))
		return 0, result.Error
	}
	return event.ID, nil
}

// MarkProcessed flags the webhook record as handled, capturing the
// error text when processing failed.
func (l *Log) MarkProcessed(recordID uint, errText string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"processed":    true,
		"processed_at": now,
	}
	if errText != "" {
		updates["error"] = errText
	}
	return l.db.Model(&model.WebhookEvent{}).Where("id = ?", recordID).Updates(updates).Error
}

// RecordMessage appends one outbound send attempt to the history.
func (l *Log) RecordMessage(msg model.Message) (*model.Message, error) {
	if result := l.db.Create(&msg); result.Error != nil {
		l.log.Error("Failed to record message",
			zap.Uint("tenant_id", msg.TenantID),
			zap.Error(result.Error))
		return nil, result.Error
	}
	return &msg, nil
}
