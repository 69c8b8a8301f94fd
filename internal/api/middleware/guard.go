package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authstack/identity-service/internal/api/handler"
	"github.com/authstack/identity-service/internal/core/authz"
	"github.com/authstack/identity-service/internal/core/domain"
)

// RequireRole gates a route on the role claim carried in the access
// token. Cheap (no I/O), so it runs before any expensive guard.
func RequireRole(allowed ...domain.Role) echo.MiddlewareFunc {
	set := make(map[domain.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(handler.CtxRole).(domain.Role)
			if _, ok := set[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
			}
			return next(c)
		}
	}
}

// RequirePermission gates a route on a permission resolved through the
// authorization engine. Unlike RequireRole this consults the store, so
// a role change takes effect before the token expires.
func RequirePermission(engine *authz.Engine, perm authz.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(handler.CtxUserID).(int64)
			if !ok || userID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !engine.HasPermission(c.Request().Context(), userID, perm) {
				return echo.NewHTTPError(http.StatusForbidden, "permission denied")
			}
			return next(c)
		}
	}
}
