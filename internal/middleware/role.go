package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// user holds one of the specified roles. It assumes Auth ran earlier in the
// chain; a missing identity yields 401, a role outside the allow-list 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return apperror.New(http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required.")
			}
			if !allowed[u.UserType] {
				return apperror.New(http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions.")
			}
			return next(c)
		}
	}
}

// AdminOnly restricts a route to administrators.
func AdminOnly() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }

// LawyerOrAdmin restricts a route to lawyers and administrators.
func LawyerOrAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleLawyer, model.RoleAdmin) }
