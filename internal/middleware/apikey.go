package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"instagram-agent/internal/tenant"
	"instagram-agent/pkg/logger"
)

// TenantContextKey is where APIKeyAuthMiddleware stores the resolved
// tenant in the Echo context.
const TenantContextKey = "tenant"

// APIKeyAuthMiddleware authenticates requests by the X-API-Key header
// and stores the owning tenant in the context.
func APIKeyAuthMiddleware(directory *tenant.Directory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			key := c.Request().Header.Get("X-API-Key")
			if key == "" {
				log.Warn("Missing API key header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "API Key required"})
			}

			t, err := directory.ResolveAPIKey(key)
			if err != nil {
				if errors.Is(err, tenant.ErrInvalidKey) || errors.Is(err, tenant.ErrNotFound) {
					log.Warn("Invalid API key")
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid API Key"})
				}
				log.Error("Failed to resolve API key", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			c.Set(TenantContextKey, t)
			return next(c)
		}
	}
}
