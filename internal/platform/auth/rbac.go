package auth

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
)

// RequireRole returns middleware enforcing a route's role allow-list. The
// allow-list is declared once at route registration; admin passes every gate.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFromContext(c.Request().Context())
			if identity == nil {
				return apperr.Authentication("not authorized, no identity")
			}
			if identity.Role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if identity.Role == required {
					return next(c)
				}
			}
			names := make([]string, len(roles))
			for i, r := range roles {
				names[i] = string(r)
			}
			return apperr.Authorization(fmt.Sprintf("required role: %s", strings.Join(names, " or ")))
		}
	}
}
