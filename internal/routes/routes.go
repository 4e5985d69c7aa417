package routes

import (
	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/handlers"
	"github.com/campusfind/lostfound-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	itemHandler *handlers.ItemHandler,
	claimHandler *handlers.ClaimHandler,
	healthHandler *handlers.HealthHandler,
) {
	protect := middleware.JWTProtected(cfg)
	load := middleware.LoadUser(db)
	admin := middleware.AdminRequired()

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Server is ready")
	})

	api := app.Group("/api")
	api.Get("/health", healthHandler.Check)

	// Auth — public
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)

	// Items keep their historical /products mount.
	// /flagged registers before /:id so it is not swallowed by the param route.
	items := api.Group("/products")
	items.Get("/", itemHandler.List)
	items.Get("/flagged", protect, load, admin, itemHandler.ListFlagged)
	items.Get("/:id", itemHandler.Get)
	items.Post("/", protect, load, itemHandler.Create)
	items.Put("/:id", protect, load, itemHandler.Update)
	items.Patch("/:id/flag", protect, load, itemHandler.Flag)
	items.Patch("/:id/unflag", protect, load, admin, itemHandler.Unflag)
	items.Patch("/:id/remove", protect, load, admin, itemHandler.Remove)
	items.Patch("/:id/restore", protect, load, admin, itemHandler.Restore)
	items.Delete("/:id", protect, load, itemHandler.Delete)

	// Claims — everything requires auth
	claims := api.Group("/claims", protect, load)
	claims.Post("/", claimHandler.Create)
	claims.Get("/", claimHandler.List)
	claims.Get("/:id", claimHandler.Get)
	claims.Put("/:id", claimHandler.Update)
	claims.Patch("/:id/approve", admin, claimHandler.Approve)
	claims.Patch("/:id/reject", admin, claimHandler.Reject)
	claims.Delete("/:id", claimHandler.Delete)
}
