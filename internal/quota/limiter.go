package quota

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"instagram-agent/internal/model"
	"instagram-agent/prometheus"
)

// Limiter tracks per-tenant daily message counters. A tenant is either
// within quota or exhausted for the current UTC day; the counter is
// reset the first time it is touched on a new day.
//
// Check and Increment are each individually consistent but the pair is
// not atomic: two concurrent sends can both pass Check before either
// Increment lands, so the daily limit is a soft, best-effort cap.
type Limiter struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLimiter creates a quota limiter backed by the given database.
func NewLimiter(db *gorm.DB, log *zap.Logger) *Limiter {
	return &Limiter{db: db, log: log}
}

// Check reports whether the tenant may send another message today. It
// does not reserve a slot. Unknown tenants may not send.
func (l *Limiter) Check(tenantID uint) (bool, error) {
	var t model.Tenant
	if err := l.db.First(&t, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := l.resetIfNewDay(&t); err != nil {
		return false, err
	}

	if t.MessagesSentToday >= t.DailyMessageLimit {
		l.log.Warn("Daily message limit reached",
			zap.Uint("tenant_id", tenantID),
			zap.Int("limit", t.DailyMessageLimit))
		prometheus.RecordQuotaRejection()
		return false, nil
	}
	return true, nil
}

// Increment bumps the tenant's counter. Called only after a confirmed
// successful send.
func (l *Limiter) Increment(tenantID uint) error {
	var t model.Tenant
	if err := l.db.First(&t, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := l.resetIfNewDay(&t); err != nil {
		return err
	}

	return l.db.Model(&t).Update("messages_sent_today", t.MessagesSentToday+1).Error
}

// resetIfNewDay zeroes the counter when the current UTC date differs
// from the last reset date. The transition is idempotent: concurrent
// resets all land on today's date with a zero counter.
func (l *Limiter) resetIfNewDay(t *model.Tenant) error {
	now := time.Now().UTC()
	if sameDay(t.LastResetDate.UTC(), now) {
		return nil
	}

	err := l.db.Model(t).Updates(map[string]interface{}{
		"messages_sent_today": 0,
		"last_reset_date":     now,
	}).Error
	if err != nil {
		return err
	}

	t.MessagesSentToday = 0
	t.LastResetDate = now
	l.log.Info("Daily message counter reset", zap.Uint("tenant_id", t.ID))
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
