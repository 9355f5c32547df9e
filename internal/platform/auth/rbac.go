package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that rejects requests whose identity role
// is not one of the given roles. The 403 message is deliberately generic.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFromContext(c.Request().Context())
			for _, required := range roles {
				if identity.Role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}
}

// RequireClinician restricts a route group to the clinician role.
func RequireClinician() echo.MiddlewareFunc {
	return RequireRole(RoleClinician)
}
