package model

import (
	"time"
)

// Message kinds recorded in the outbound audit trail.
const (
	MessageTypeDM           = "dm"
	MessageTypeComment      = "comment"
	MessageTypeStoryMention = "story_mention"
)

// Message is the append-only audit of one outbound (or attempted) send.
type Message struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	TenantID uint `json:"tenant_id" gorm:"index;not null"`

	RecipientID string `json:"recipient_id" gorm:"type:varchar(255);not null"`
	MessageType string `json:"message_type" gorm:"type:varchar(50);not null"`
	MessageText string `json:"message_text" gorm:"type:text"`
	MediaURL    string `json:"media_url" gorm:"type:varchar(500)"`

	Sent  bool   `json:"sent" gorm:"default:false"`
	Error string `json:"error,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}
