package middleware

import (
	"errors"

	"github.com/campusfind/lostfound-backend/internal/dto"
	"github.com/campusfind/lostfound-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

// LoadUser resolves the token's id claim to a live user record. A valid
// token whose user has since disappeared is still unauthorized.
func LoadUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
		}

		sub, _ := claims["id"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Unauthorized"})
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "User no longer exists"})
		}

		c.Locals(currentUserKey, &user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by LoadUser.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(currentUserKey).(*models.User)
	if !ok || user == nil {
		return nil, errors.New("no authenticated user in context")
	}
	return user, nil
}
