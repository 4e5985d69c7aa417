package middleware

import (
	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected rejects requests without a valid bearer token. The verified
// *jwt.Token lands in Locals("user") for LoadUser to resolve.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
