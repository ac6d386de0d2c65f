package auth

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/multisite_shop/internal/models"
	"github.com/Skotchmaster/multisite_shop/internal/service"
	"github.com/Skotchmaster/multisite_shop/pkg/logging"
)

// RequireRoles lets the request through only for logged in callers holding one of roles.
// It must run after Tenant.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerFrom(c)
			if caller.UserID == 0 {
				return service.Unauthorized("login required")
			}
			if !slices.Contains(roles, caller.Role) {
				logging.FromContext(c.Request().Context()).Warn("access_denied", "role", caller.Role, "required", roles)
				return service.Forbidden("not enough rights")
			}
			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return RequireRoles(models.RoleSuperAdmin, models.RoleAdministrator)
}

func SuperAdminOnly() echo.MiddlewareFunc {
	return RequireRoles(models.RoleSuperAdmin)
}
