package middleware

import (
	"strings"

	"restopos/internal/common"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
)

// RequireRole lets the request through when the caller's role is one of
// roles. Roles compare case-insensitively.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[strings.ToUpper(role)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := common.GetUserIDFromContext(ctx); !ok {
				return common.SendUnauthorizedError(c)
			}
			role, ok := common.GetRoleFromContext(ctx)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if _, permitted := allowed[strings.ToUpper(role)]; !permitted {
				return common.SendForbiddenError(c)
			}

			return next(c)
		}
	}
}

// Staff covers every role that works the floor
func Staff() echo.MiddlewareFunc {
	return RequireRole(RoleCashier, RoleManager, RoleAdmin)
}

// Management covers the roles that configure the restaurant
func Management() echo.MiddlewareFunc {
	return RequireRole(RoleManager, RoleAdmin)
}
