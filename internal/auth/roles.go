package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/request-portal/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal is loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds the administrator role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Profile.IsAdmin() {
			return apperrors.NewAuthorizationError("administrator role required")
		}
		return c.Next()
	}
}
