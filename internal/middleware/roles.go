package middleware

import (
	"slices"

	"go-taller/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireRole gates a route on the operator holding at least one of the given
// roles. Template edits affect every future order, so they are restricted to
// supervisors while per-order exceptions stay open to the floor.
func RequireRole(skipAuth bool, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			return c.Next()
		}

		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		for _, r := range claims.Roles {
			if slices.Contains(roles, r) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: insufficient role",
		})
	}
}
