package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/andikahmadi/sikp-backend/model"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// RequireRoles ensures the authenticated user holds one of the given roles.
// Must run after AuthMiddleware.Required.
func RequireRoles(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := GetSession(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		for _, role := range roles {
			if sess.Role == role {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient role for this operation")
	}
}

// RequireAdmin ensures the authenticated user is an admin
func RequireAdmin() fiber.Handler {
	return RequireRoles(model.RoleAdmin)
}

// RequireCoordinator allows coordinators and admins
func RequireCoordinator() fiber.Handler {
	return RequireRoles(model.RoleCoordinator, model.RoleAdmin)
}
