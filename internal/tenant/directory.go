package tenant

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"instagram-agent/internal/model"
)

// Directory owns tenant records: registration, credential resolution
// and per-tenant activation state.
type Directory struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewDirectory creates a tenant directory backed by the given database.
func NewDirectory(db *gorm.DB, log *zap.Logger) *Directory {
	return &Directory{db: db, log: log}
}

// RegisterInput holds the fields required to onboard a tenant.
type RegisterInput struct {
	Name               string
	Email              string
	AccessToken        string
	InstagramAccountID string
	PageID             string
	Keywords           []string
	CustomResponses    []model.ResponseRule
	DailyMessageLimit  int
}

// Register creates a new tenant. The contact email must be unique and a
// fresh webhook verify token is generated for the tenant.
func (d *Directory) Register(in RegisterInput) (*model.Tenant, error) {
	var existing model.Tenant
	err := d.db.Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, in.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	verifyToken, err := d.uniqueVerifyToken()
	if err != nil {
		return nil, err
	}

	limit := in.DailyMessageLimit
	if limit <= 0 {
		limit = 1000
	}

	keywords := in.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	responses := in.CustomResponses
	if responses == nil {
		responses = []model.ResponseRule{}
	}

	t := model.Tenant{
		Name:               in.Name,
		Email:              in.Email,
		AccessToken:        in.AccessToken,
		InstagramAccountID: in.InstagramAccountID,
		PageID:             in.PageID,
		VerifyToken:        verifyToken,
		Keywords:           keywords,
		CustomResponses:    responses,
		AutoReplyEnabled:   true,
		Active:             true,
		DailyMessageLimit:  limit,
		LastResetDate:      time.Now().UTC(),
	}

	if result := d.db.Create(&t); result.Error != nil {
		return nil, result.Error
	}

	d.log.Info("Tenant registered",
		zap.Uint("tenant_id", t.ID),
		zap.String("name", t.Name))
	return &t, nil
}

// uniqueVerifyToken generates a URL-safe 256-bit token and retries on
// the (negligible) chance of a collision with an existing tenant.
func (d *Directory) uniqueVerifyToken() (string, error) {
	for {
		token, err := randomToken(32)
		if err != nil {
			return "", err
		}
		var count int64
		if err := d.db.Model(&model.Tenant{}).Where("verify_token = ?", token).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return token, nil
		}
	}
}

// GetByID looks up a tenant by primary key.
func (d *Directory) GetByID(id uint) (*model.Tenant, error) {
	var t model.Tenant
	if err := d.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByEmail looks up a tenant by contact email.
func (d *Directory) GetByEmail(email string) (*model.Tenant, error) {
	var t model.Tenant
	if err := d.db.Where("email = ?", email).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByInstagramAccountID looks up a tenant by its Instagram account id.
func (d *Directory) GetByInstagramAccountID(accountID string) (*model.Tenant, error) {
	var t model.Tenant
	if err := d.db.Where("instagram_account_id = ?", accountID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByVerifyToken is the sole mechanism binding an inbound webhook
// path to a tenant. The match is exact: tokens are unique by
// construction.
func (d *Directory) GetByVerifyToken(token string) (*model.Tenant, error) {
	var t model.Tenant
	if err := d.db.Where("verify_token = ?", token).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all tenants, optionally restricted to active ones.
func (d *Directory) List(activeOnly bool) ([]model.Tenant, error) {
	var tenants []model.Tenant
	query := d.db.Order("id")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// Count returns the number of tenants, optionally active only.
func (d *Directory) Count(activeOnly bool) (int64, error) {
	var count int64
	query := d.db.Model(&model.Tenant{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update applies a partial field patch to a tenant and stamps
// updated_at. Returns ErrNotFound for unknown ids.
func (d *Directory) Update(id uint, patch model.TenantPatch) (*model.Tenant, error) {
	t, err := d.GetByID(id)
	if err != nil {
		return nil, err
	}

	updated := patch.Apply(*t)
	updated.UpdatedAt = time.Now().UTC()
	if err := d.db.Save(&updated).Error; err != nil {
		return nil, err
	}

	d.log.Info("Tenant updated", zap.Uint("tenant_id", id))
	return &updated, nil
}

// Deactivate soft-deletes the tenant. Calling it on an already inactive
// tenant is a no-op.
func (d *Directory) Deactivate(id uint) error {
	active := false
	_, err := d.Update(id, model.TenantPatch{Active: &active})
	return err
}

// Activate re-enables the tenant.
func (d *Directory) Activate(id uint) error {
	active := true
	_, err := d.Update(id, model.TenantPatch{Active: &active})
	return err
}

// Delete removes the tenant permanently, cascading to its API keys,
// messages and webhook records in a single transaction.
func (d *Directory) Delete(id uint) error {
	if _, err := d.GetByID(id); err != nil {
		return err
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", id).Delete(&model.APIKey{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", id).Delete(&model.WebhookEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Tenant{}, id).Error
	})
	if err != nil {
		d.log.Error("Failed to delete tenant", zap.Uint("tenant_id", id), zap.Error(err))
		return err
	}

	d.log.Info("Tenant deleted permanently", zap.Uint("tenant_id", id))
	return nil
}

// GenerateAPIKey issues a new bearer key for the tenant.
func (d *Directory) GenerateAPIKey(tenantID uint, name string) (*model.APIKey, error) {
	if _, err := d.GetByID(tenantID); err != nil {
		return nil, err
	}

	secret, err := randomToken(48)
	if err != nil {
		return nil, err
	}

	key := model.APIKey{
		TenantID: tenantID,
		Key:      "sk_" + secret,
		Name:     name,
		Active:   true,
	}
	if result := d.db.Create(&key); result.Error != nil {
		return nil, result.Error
	}

	d.log.Info("API key generated", zap.Uint("tenant_id", tenantID), zap.String("name", name))
	return &key, nil
}

// ResolveAPIKey validates an active key and returns its tenant,
// stamping the key's last_used_at as a side effect.
func (d *Directory) ResolveAPIKey(key string) (*model.Tenant, error) {
	var apiKey model.APIKey
	err := d.db.Where("key = ? AND active = ?", key, true).First(&apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err := d.db.Model(&apiKey).Update("last_used_at", now).Error; err != nil {
		return nil, err
	}

	return d.GetByID(apiKey.TenantID)
}

// Stats aggregates a tenant's messaging and webhook activity.
type Stats struct {
	TenantID         uint   `json:"tenant_id"`
	Name             string `json:"name"`
	TotalMessages    int64  `json:"total_messages"`
	MessagesToday    int64  `json:"messages_today"`
	WebhooksReceived int64  `json:"webhooks_received"`
	Active           bool   `json:"active"`
	DailyLimit       int    `json:"daily_limit"`
	LimitRemaining   int    `json:"limit_remaining"`
}

// GetStats returns message and webhook counts for the tenant.
func (d *Directory) GetStats(id uint) (*Stats, error) {
	t, err := d.GetByID(id)
	if err != nil {
		return nil, err
	}

	var totalMessages int64
	if err := d.db.Model(&model.Message{}).Where("tenant_id = ?", id).Count(&totalMessages).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var messagesToday int64
	if err := d.db.Model(&model.Message{}).
		Where("tenant_id = ? AND created_at >= ?", id, midnight).
		Count(&messagesToday).Error; err != nil {
		return nil, err
	}

	var webhooksReceived int64
	if err := d.db.Model(&model.WebhookEvent{}).Where("tenant_id = ?", id).Count(&webhooksReceived).Error; err != nil {
		return nil, err
	}

	return &Stats{
		TenantID:         id,
		Name:             t.Name,
		TotalMessages:    totalMessages,
		MessagesToday:    messagesToday,
		WebhooksReceived: webhooksReceived,
		Active:           t.Active,
		DailyLimit:       t.DailyMessageLimit,
		LimitRemaining:   t.DailyMessageLimit - t.MessagesSentToday,
	}, nil
}

// randomToken returns n random bytes encoded as URL-safe base64.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
