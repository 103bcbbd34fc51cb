package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantPatchApply(t *testing.T) {
	base := Tenant{
		ID:                1,
		Name:              "Loja da Maria",
		Email:             "maria@example.com",
		AccessToken:       "token-1",
		VerifyToken:       "vt-1",
		Keywords:          []string{"preço"},
		AutoReplyEnabled:  true,
		Active:            true,
		DailyMessageLimit: 1000,
		MessagesSentToday: 42,
	}

	t.Run("empty patch changes nothing", func(t *testing.T) {
		got := TenantPatch{}.Apply(base)
		assert.Equal(t, base, got)
	})

	t.Run("set fields are applied", func(t *testing.T) {
		name := "Loja Nova"
		enabled := false
		limit := 50
		keywords := []string{"promo", "oferta"}
		responses := []ResponseRule{{Keyword: "promo", Response: "Temos promo!"}}

		got := TenantPatch{
			Name:              &name,
			AutoReplyEnabled:  &enabled,
			DailyMessageLimit: &limit,
			Keywords:          &keywords,
			CustomResponses:   &responses,
		}.Apply(base)

		assert.Equal(t, "Loja Nova", got.Name)
		assert.False(t, got.AutoReplyEnabled)
		assert.Equal(t, 50, got.DailyMessageLimit)
		assert.Equal(t, keywords, got.Keywords)
		assert.Equal(t, responses, got.CustomResponses)

		// Untouched fields survive, including internal state
		assert.Equal(t, base.Email, got.Email)
		assert.Equal(t, base.VerifyToken, got.VerifyToken)
		assert.Equal(t, base.MessagesSentToday, got.MessagesSentToday)
	})

	t.Run("patch is pure", func(t *testing.T) {
		name := "Outro Nome"
		_ = TenantPatch{Name: &name}.Apply(base)
		assert.Equal(t, "Loja da Maria", base.Name)
	})

	t.Run("active flag can be cleared", func(t *testing.T) {
		active := false
		got := TenantPatch{Active: &active}.Apply(base)
		assert.False(t, got.Active)
	})
}
