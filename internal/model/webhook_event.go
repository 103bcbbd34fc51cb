package model

import (
	"encoding/json"
	"time"
)

// WebhookEvent is the immutable audit of one received webhook payload.
// TenantID is nullable: a delivery that could not be attributed to a
// tenant is still recorded. A row is mutated exactly once, to mark
// completion.
type WebhookEvent struct {
	ID       uint  `json:"id" gorm:"primaryKey"`
	TenantID *uint `json:"tenant_id,omitempty" gorm:"index"`

	EventType string `json:"event_type" gorm:"type:varchar(50);not null"`

	// Stored as raw text, not a JSON column: deliveries are recorded
	// byte-for-byte even when the body fails to parse.
	Payload json.RawMessage `json:"payload" gorm:"type:text"`

	Processed bool   `json:"processed" gorm:"default:false"`
	Error     string `json:"error,omitempty" gorm:"type:text"`

	ReceivedAt  time.Time  `json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
