package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagram-agent/internal/model"
)

const createBody = `{
	"name": "Loja Morada",
	"email": "contato@lojamorada.com",
	"access_token": "IGQVJtoken",
	"instagram_account_id": "178414000000000",
	"page_id": "1020304050",
	"keywords": ["preço", "orçamento"],
	"custom_responses": [{"keyword": "promo", "response": "Temos promoção hoje!"}],
	"daily_limit": 500
}`

func decodeJSON(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestTenantCreate(t *testing.T) {
	t.Run("returns credentials exactly once", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewTenantHandler(env.directory)

		c, rec := newRequestContext(http.MethodPost, "/api/clients", createBody)
		require.NoError(t, h.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := decodeJSON(t, rec.Body.String())
		assert.Equal(t, true, resp["success"])
		assert.True(t, strings.HasPrefix(resp["api_key"].(string), "sk_"))
		verifyToken := resp["verify_token"].(string)
		assert.Equal(t, "/webhook/"+verifyToken, resp["webhook_url"])

		// Secrets never ride along in the tenant representation.
		raw, err := json.Marshal(resp["tenant"])
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "IGQVJtoken")
		assert.NotContains(t, string(raw), verifyToken)

		tn := resp["tenant"].(map[string]interface{})
		assert.Equal(t, "Loja Morada", tn["name"])
		assert.Equal(t, float64(500), tn["daily_message_limit"])
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewTenantHandler(env.directory)

		c, rec := newRequestContext(http.MethodPost, "/api/clients", `{"name": "Loja"}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		h := NewTenantHandler(env.directory)

		c, rec := newRequestContext(http.MethodPost, "/api/clients", createBody)
		require.NoError(t, h.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		c, rec = newRequestContext(http.MethodPost, "/api/clients", createBody)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestTenantGet(t *testing.T) {
	env := newTestEnv(t)
	h := NewTenantHandler(env.directory)
	tn := env.registerTenant(t, nil)

	t.Run("found", func(t *testing.T) {
		c, rec := newRequestContext(http.MethodGet, "/api/clients/1", "")
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(tn.ID))

		require.NoError(t, h.Get(c))
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeJSON(t, rec.Body.String())
		assert.Equal(t, tn.Name, resp["name"])
	})

	t.Run("unknown id", func(t *testing.T) {
		c, rec := newRequestContext(http.MethodGet, "/api/clients/999", "")
		c.SetParamNames("id")
		c.SetParamValues("999")

		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		c, rec := newRequestContext(http.MethodGet, "/api/clients/abc", "")
		c.SetParamNames("id")
		c.SetParamValues("abc")

		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTenantUpdate(t *testing.T) {
	env := newTestEnv(t)
	h := NewTenantHandler(env.directory)
	tn := env.registerTenant(t, nil)

	c, rec := newRequestContext(http.MethodPut, "/api/clients/1",
		`{"daily_message_limit": 50, "auto_reply_enabled": false}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(tn.ID))

	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.directory.GetByID(tn.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.DailyMessageLimit)
	assert.False(t, updated.AutoReplyEnabled)
	assert.Equal(t, tn.Email, updated.Email)
}

func TestTenantDeactivateAndActivate(t *testing.T) {
	env := newTestEnv(t)
	h := NewTenantHandler(env.directory)
	tn := env.registerTenant(t, nil)

	c, rec := newRequestContext(http.MethodDelete, "/api/clients/1", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(tn.ID))
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	deactivated, err := env.directory.GetByID(tn.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	c, rec = newRequestContext(http.MethodPost, "/api/clients/1/activate", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(tn.ID))
	require.NoError(t, h.Activate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	activated, err := env.directory.GetByID(tn.ID)
	require.NoError(t, err)
	assert.True(t, activated.Active)
}

func TestTenantList(t *testing.T) {
	env := newTestEnv(t)
	h := NewTenantHandler(env.directory)
	first := env.registerTenant(t, nil)
	env.registerTenant(t, nil)
	require.NoError(t, env.directory.Deactivate(first.ID))

	t.Run("all", func(t *testing.T) {
		c, rec := newRequestContext(http.MethodGet, "/api/clients", "")
		require.NoError(t, h.List(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var tenants []model.Tenant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tenants))
		assert.Len(t, tenants, 2)
	})

	t.Run("active only", func(t *testing.T) {
		c, rec := newRequestContext(http.MethodGet, "/api/clients?active_only=true", "")
		require.NoError(t, h.List(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var tenants []model.Tenant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tenants))
		require.Len(t, tenants, 1)
		assert.NotEqual(t, first.ID, tenants[0].ID)
	})
}

func TestTenantStats(t *testing.T) {
	env := newTestEnv(t)
	h := NewTenantHandler(env.directory)
	tn := env.registerTenant(t, nil)

	_, err := env.auditLog.RecordMessage(model.Message{
		TenantID:    tn.ID,
		RecipientID: "user-1",
		MessageType: model.MessageTypeDM,
		MessageText: "oi",
		Sent:        true,
	})
	require.NoError(t, err)
	require.NoError(t, env.limiter.Increment(tn.ID))

	c, rec := newRequestContext(http.MethodGet, "/api/clients/1/stats", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(tn.ID))

	require.NoError(t, h.Stats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON(t, rec.Body.String())
	assert.Equal(t, float64(1), resp["total_messages"])
	assert.Equal(t, float64(1), resp["messages_today"])
	assert.Equal(t, float64(tn.DailyMessageLimit-1), resp["limit_remaining"])
}
