package middleware

import (
	"github.com/campusfind/lostfound-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired runs after LoadUser and rejects non-admin callers.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
		}
		if !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Message: "Admin access required"})
		}
		return c.Next()
	}
}
