package middleware

import (
	"net/http"

	"gurukul/internal/common"
	"gurukul/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole restricts a route group to the listed roles. The JWT
// middleware must run first so the role is already on the context.
func RequireRole(roles ...models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetUserIDFromContext(ctx); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			roleStr, ok := common.GetRoleFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Role not found")
			}

			role := models.UserRole(roleStr)
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}
