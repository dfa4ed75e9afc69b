package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

// RequireAdmin ensures the caller holds the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !user.IsAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

// RequireSelfOrAdmin ensures the route parameter param names the caller,
// unless the caller is an admin.
func RequireSelfOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if user.IsAdmin() || user.Username == c.Params(param) {
			return c.Next()
		}
		return apperrors.NewForbidden("cannot act on another user")
	}
}
