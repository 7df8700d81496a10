package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	AdminKey   = "is_admin"
	AdminIDKey = "admin_id"

	RoleAdmin = "admin"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AdminAuth middleware checks if the authenticated user is an admin, either
// by token role or by the admins table.
func AdminAuth(admins AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == uuid.Nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		isAdmin := GetRole(c) == RoleAdmin
		if !isAdmin {
			var err error
			isAdmin, err = admins.IsAdmin(c.UserContext(), userID)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to check admin status",
				})
			}
		}

		if !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "access denied",
			})
		}

		c.Locals(AdminKey, true)
		c.Locals(AdminIDKey, userID)

		return c.Next()
	}
}

// GetAdminID returns the admin user ID from context
func GetAdminID(c *fiber.Ctx) uuid.UUID {
	adminID, ok := c.Locals(AdminIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return adminID
}
