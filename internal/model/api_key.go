package model

import (
	"time"
)

// APIKey is a bearer secret authenticating management/API calls as
// acting for a tenant. Keys are revoked by deactivation; rows are only
// removed when the owning tenant is hard-deleted.
type APIKey struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	TenantID uint `json:"tenant_id" gorm:"index;not null"`

	// Never expose the key value in JSON responses; it is returned
	// exactly once, at creation time.
	Key  string `json:"-" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name string `json:"name" gorm:"type:varchar(255)"`

	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
