package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/authstack/identity-service/internal/api/handler"
	"github.com/authstack/identity-service/internal/api/metrics"
	"github.com/authstack/identity-service/internal/core/ports"
)

// Auth validates the bearer access token and injects the authenticated
// identity into the request context. Signature failures and expiry both
// surface as the same 401; the distinction stays internal.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.VerifyAccess(parts[1])
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
			}
			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()

			c.Set(handler.CtxUserID, claims.UserID)
			c.Set(handler.CtxRole, claims.Role)

			return next(c)
		}
	}
}
