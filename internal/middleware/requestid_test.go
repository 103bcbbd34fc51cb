package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"instagram-agent/pkg/logger"
)

func TestRequestIDMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.Use(logger.Middleware(log))
	e.GET("/", func(c echo.Context) error {
		logger.FromEcho(c).Info("handled")
		return c.NoContent(http.StatusOK)
	})

	t.Run("generates an id and scopes the logger", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		requestID := rec.Header().Get("X-Request-ID")
		require.NotEmpty(t, requestID)

		entries := logs.FilterMessage("handled").All()
		require.Len(t, entries, 1)
		assert.Equal(t, requestID, entries[0].ContextMap()["request_id"])
	})

	t.Run("keeps a caller-supplied id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-abc")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))
	})
}
