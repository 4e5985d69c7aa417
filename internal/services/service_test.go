package services

import (
	"testing"
	"time"

	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/database"
	"github.com/campusfind/lostfound-backend/internal/dto"
	"github.com/campusfind/lostfound-backend/internal/models"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}
}

// createUser registers a user through the auth service so fixtures go
// through the same path as real signups.
func createUser(t *testing.T, db *gorm.DB, username, email, role string) *models.User {
	t.Helper()

	svc := NewAuthService(db, testConfig())
	user, err := svc.Signup(&dto.SignupRequest{
		Username: username,
		Email:    email,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}

	if role != models.RoleUser {
		if err := db.Model(user).Update("role", role).Error; err != nil {
			t.Fatalf("promoting user %s: %v", email, err)
		}
		user.Role = role
	}
	return user
}

func createItem(t *testing.T, db *gorm.DB, poster *models.User, name, category, description, location, itemType string) *models.Item {
	t.Helper()

	svc := NewItemService(db)
	item, err := svc.Create(poster, &dto.CreateItemRequest{
		Name:        name,
		Category:    category,
		Description: description,
		Location:    location,
		ItemType:    itemType,
	}, "")
	if err != nil {
		t.Fatalf("creating item %s: %v", name, err)
	}
	return item
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return database.NewTestDB(t)
}
