package model

import (
	"time"
)

// ResponseRule maps a keyword to the custom reply sent when the keyword
// appears in an inbound message. Rules are stored as an ordered list so
// first-match semantics follow insertion order.
type ResponseRule struct {
	Keyword  string `json:"keyword"`
	Response string `json:"response"`
}

// Tenant represents one onboarded Instagram business account.
// This is the core of our multi-tenant architecture: every message,
// webhook and API key row is scoped to a tenant id.
type Tenant struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"type:varchar(255);not null"`
	Email string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`

	// Instagram Graph API credentials. The access token is never
	// serialized into API responses.
	AccessToken        string `json:"-" gorm:"type:text;not null"`
	InstagramAccountID string `json:"instagram_account_id" gorm:"type:varchar(255);not null"`
	PageID             string `json:"page_id" gorm:"type:varchar(255);not null"`

	// VerifyToken is the unguessable webhook path segment binding
	// inbound deliveries to this tenant. Generated at registration,
	// unique by construction, never reused.
	VerifyToken string `json:"-" gorm:"type:varchar(255);uniqueIndex;not null"`

	Keywords        []string       `json:"keywords" gorm:"serializer:json"`
	CustomResponses []ResponseRule `json:"custom_responses" gorm:"serializer:json"`

	// No DB-side defaults on the flags: with a default tag GORM omits
	// an explicit false on insert and the column default overrides it.
	// Register sets both explicitly.
	AutoReplyEnabled bool `json:"auto_reply_enabled"`
	Active           bool `json:"active"`

	// Daily quota state. MessagesSentToday is reset the first time it
	// is touched on a new UTC calendar day relative to LastResetDate.
	DailyMessageLimit int       `json:"daily_message_limit" gorm:"default:1000"`
	MessagesSentToday int       `json:"messages_sent_today" gorm:"default:0"`
	LastResetDate     time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantPatch is a partial update of the mutable tenant fields. Nil
// fields are left untouched. Enumerating the fields here keeps
// internal-only columns (verify token, counters) out of reach of
// external callers.
type TenantPatch struct {
	Name               *string         `json:"name"`
	Email              *string         `json:"email"`
	AccessToken        *string         `json:"access_token"`
	InstagramAccountID *string         `json:"instagram_account_id"`
	PageID             *string         `json:"page_id"`
	Keywords           *[]string       `json:"keywords"`
	CustomResponses    *[]ResponseRule `json:"custom_responses"`
	AutoReplyEnabled   *bool           `json:"auto_reply_enabled"`
	Active             *bool           `json:"active"`
	DailyMessageLimit  *int            `json:"daily_message_limit"`
}

// Apply returns a copy of t with the non-nil patch fields applied.
func (p TenantPatch) Apply(t Tenant) Tenant {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Email != nil {
		t.Email = *p.Email
	}
	if p.AccessToken != nil {
		t.AccessToken = *p.AccessToken
	}
	if p.InstagramAccountID != nil {
		t.InstagramAccountID = *p.InstagramAccountID
	}
	if p.PageID != nil {
		t.PageID = *p.PageID
	}
	if p.Keywords != nil {
		t.Keywords = *p.Keywords
	}
	if p.CustomResponses != nil {
		t.CustomResponses = *p.CustomResponses
	}
	if p.AutoReplyEnabled != nil {
		t.AutoReplyEnabled = *p.AutoReplyEnabled
	}
	if p.Active != nil {
		t.Active = *p.Active
	}
	if p.DailyMessageLimit != nil {
		t.DailyMessageLimit = *p.DailyMessageLimit
	}
	return t
}
