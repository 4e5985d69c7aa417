package services

import (
	"errors"
	"testing"

	"github.com/campusfind/lostfound-backend/internal/dto"
	"github.com/campusfind/lostfound-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestSignup(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	user, err := svc.Signup(&dto.SignupRequest{
		Username: "alice",
		Email:    "alice@campus.edu",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Error("expected generated user id")
	}
	if user.Role != models.RoleUser {
		t.Errorf("expected default role %q, got %q", models.RoleUser, user.Role)
	}
	if user.Password == "password123" {
		t.Error("password stored in plaintext")
	}

	// A second distinct email succeeds.
	if _, err := svc.Signup(&dto.SignupRequest{
		Username: "bob",
		Email:    "bob@campus.edu",
		Password: "password123",
	}); err != nil {
		t.Fatalf("second signup: %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	req := &dto.SignupRequest{Username: "alice", Email: "alice@campus.edu", Password: "password123"}
	if _, err := svc.Signup(req); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	_, err := svc.Signup(&dto.SignupRequest{Username: "other", Email: "alice@campus.edu", Password: "different"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginTokenCarriesUserID(t *testing.T) {
	cfg := testConfig()
	db := newTestDB(t)
	svc := NewAuthService(db, cfg)

	user, err := svc.Signup(&dto.SignupRequest{Username: "alice", Email: "alice@campus.edu", Password: "password123"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	tokenString, err := svc.Login(&dto.LoginRequest{Email: "alice@campus.edu", Password: "password123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parsing token: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if got, _ := claims["id"].(string); got != user.ID.String() {
		t.Errorf("expected id claim %s, got %s", user.ID, got)
	}
}

func TestLoginFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	if _, err := svc.Signup(&dto.SignupRequest{Username: "alice", Email: "alice@campus.edu", Password: "password123"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if _, err := svc.Login(&dto.LoginRequest{Email: "nobody@campus.edu", Password: "password123"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	// Wrong password fails the same way every time, no lockout.
	for i := 0; i < 3; i++ {
		if _, err := svc.Login(&dto.LoginRequest{Email: "alice@campus.edu", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	if _, err := svc.Login(&dto.LoginRequest{Email: "alice@campus.edu", Password: "password123"}); err != nil {
		t.Errorf("correct password after failed attempts: %v", err)
	}
}
