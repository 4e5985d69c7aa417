package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/database"
	"github.com/campusfind/lostfound-backend/internal/handlers"
	"github.com/campusfind/lostfound-backend/internal/models"
	"github.com/campusfind/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.NewTestDB(t)
	cfg := &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
		UploadDir: t.TempDir(),
	}

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})

	authService := services.NewAuthService(db, cfg)
	itemService := services.NewItemService(db)
	claimService := services.NewClaimService(db)

	Setup(app, cfg, db,
		handlers.NewAuthHandler(authService),
		handlers.NewItemHandler(itemService, cfg),
		handlers.NewClaimHandler(claimService),
		handlers.NewHealthHandler(db),
	)

	return &testEnv{app: app, db: db, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	return resp
}

func (e *testEnv) jsonRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

// signup registers a user and returns a login token.
func (e *testEnv) signup(t *testing.T, username, email string) string {
	t.Helper()

	resp := e.do(t, e.jsonRequest(t, "POST", "/api/auth/signup", "", map[string]string{
		"username": username, "email": email, "password": "password123",
	}))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: status %d", email, resp.StatusCode)
	}
	resp.Body.Close()

	resp = e.do(t, e.jsonRequest(t, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": "password123",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	var login struct {
		Token string `json:"token"`
	}
	decode(t, resp, &login)
	if login.Token == "" {
		t.Fatal("empty token from login")
	}
	return login.Token
}

// signupAdmin registers a user and promotes it to admin directly in the DB.
func (e *testEnv) signupAdmin(t *testing.T, username, email string) string {
	t.Helper()
	token := e.signup(t, username, email)
	if err := e.db.Model(&models.User{}).Where("email = ?", email).
		Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("promoting %s: %v", email, err)
	}
	return token
}

func (e *testEnv) itemRequest(t *testing.T, method, path, token string, fields map[string]string, imageData []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	if imageData != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="photo.png"`)
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		part.Write(imageData)
	}
	w.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (e *testEnv) createItem(t *testing.T, token, name string) string {
	t.Helper()

	resp := e.do(t, e.itemRequest(t, "POST", "/api/products", token, map[string]string{
		"name": name, "category": "misc", "description": "test item",
		"location": "Library", "itemType": "lost",
	}, nil))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item: status %d", resp.StatusCode)
	}
	var item struct {
		ID string `json:"id"`
	}
	decode(t, resp, &item)
	return item.ID
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestSignupValidationAndConflict(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.do(t, env.jsonRequest(t, "POST", "/api/auth/signup", "", map[string]string{
		"username": "alice", "email": "", "password": "x",
	}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing field: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	env.signup(t, "alice", "alice@campus.edu")

	resp = env.do(t, env.jsonRequest(t, "POST", "/api/auth/signup", "", map[string]string{
		"username": "alice2", "email": "alice@campus.edu", "password": "password123",
	}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate email: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginStatuses(t *testing.T) {
	env := setupTestEnv(t)
	env.signup(t, "alice", "alice@campus.edu")

	cases := []struct {
		email, password string
		want            int
	}{
		{"alice@campus.edu", "password123", http.StatusOK},
		{"alice@campus.edu", "wrong", http.StatusUnauthorized},
		{"nobody@campus.edu", "password123", http.StatusNotFound},
		{"", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := env.do(t, env.jsonRequest(t, "POST", "/api/auth/login", "", map[string]string{
			"email": tc.email, "password": tc.password,
		}))
		if resp.StatusCode != tc.want {
			t.Errorf("login(%q): expected %d, got %d", tc.email, tc.want, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestItemCreateRequiresAuth(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.do(t, env.itemRequest(t, "POST", "/api/products", "", map[string]string{
		"name": "Wallet", "category": "misc", "description": "d",
		"location": "l", "itemType": "lost",
	}, nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemUploadStoresPhoto(t *testing.T) {
	env := setupTestEnv(t)
	token := env.signup(t, "alice", "alice@campus.edu")

	resp := env.do(t, env.itemRequest(t, "POST", "/api/products", token, map[string]string{
		"name": "Wallet", "category": "misc", "description": "d",
		"location": "l", "itemType": "lost",
	}, testPNG(t)))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create with image: status %d", resp.StatusCode)
	}

	var item struct {
		Image string `json:"image"`
	}
	decode(t, resp, &item)
	if !strings.HasPrefix(item.Image, "/uploads/") {
		t.Fatalf("expected /uploads/ path, got %q", item.Image)
	}

	stored := filepath.Join(env.cfg.UploadDir, strings.TrimPrefix(item.Image, "/uploads/"))
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("stored photo missing on disk: %v", err)
	}
}

func TestItemUploadRejectsBadType(t *testing.T) {
	env := setupTestEnv(t)
	token := env.signup(t, "alice", "alice@campus.edu")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"name": "Wallet", "category": "misc", "description": "d",
		"location": "l", "itemType": "lost",
	} {
		w.WriteField(k, v)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="notes.txt"`)
	header.Set("Content-Type", "text/plain")
	part, _ := w.CreatePart(header)
	part.Write([]byte("just text"))
	w.Close()

	req := httptest.NewRequest("POST", "/api/products", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp := env.do(t, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for text upload, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestFlagModerationScenario(t *testing.T) {
	env := setupTestEnv(t)
	tokenA := env.signup(t, "alice", "alice@campus.edu")
	tokenB := env.signup(t, "bob", "bob@campus.edu")
	tokenAdmin := env.signupAdmin(t, "root", "root@campus.edu")

	itemID := env.createItem(t, tokenA, "Blue Backpack")

	// Any authenticated user may flag, not just non-owners.
	resp := env.do(t, env.jsonRequest(t, "PATCH", "/api/products/"+itemID+"/flag", tokenB, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("flag: status %d", resp.StatusCode)
	}
	var flagged struct {
		IsFlagged bool `json:"isFlagged"`
	}
	decode(t, resp, &flagged)
	if !flagged.IsFlagged {
		t.Error("expected isFlagged=true after flagging")
	}

	// Non-admins cannot see the review queue.
	resp = env.do(t, env.jsonRequest(t, "GET", "/api/products/flagged", tokenB, nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("flagged list as user: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, env.jsonRequest(t, "GET", "/api/products/flagged", tokenAdmin, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("flagged list as admin: status %d", resp.StatusCode)
	}
	var queue struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	decode(t, resp, &queue)
	if len(queue.Items) != 1 || queue.Items[0].ID != itemID {
		t.Errorf("expected flagged queue [%s], got %+v", itemID, queue.Items)
	}

	// Unflag is admin-only.
	resp = env.do(t, env.jsonRequest(t, "PATCH", "/api/products/"+itemID+"/unflag", tokenB, nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("unflag as user: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, env.jsonRequest(t, "PATCH", "/api/products/"+itemID+"/unflag", tokenAdmin, nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unflag as admin: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRemovedItemVisibility(t *testing.T) {
	env := setupTestEnv(t)
	tokenA := env.signup(t, "alice", "alice@campus.edu")
	tokenAdmin := env.signupAdmin(t, "root", "root@campus.edu")

	itemID := env.createItem(t, tokenA, "Blue Backpack")

	resp := env.do(t, env.jsonRequest(t, "PATCH", "/api/products/"+itemID+"/remove", tokenAdmin, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Hidden from listings.
	resp = env.do(t, env.jsonRequest(t, "GET", "/api/products", "", nil))
	var listing struct {
		Items []any `json:"items"`
		Total int64 `json:"total"`
	}
	decode(t, resp, &listing)
	if listing.Total != 0 || len(listing.Items) != 0 {
		t.Errorf("removed item leaked into listing: %+v", listing)
	}

	// Still fetchable by id.
	resp = env.do(t, env.jsonRequest(t, "GET", "/api/products/"+itemID, "", nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("removed item by id: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateItemOwnership(t *testing.T) {
	env := setupTestEnv(t)
	tokenA := env.signup(t, "alice", "alice@campus.edu")
	tokenB := env.signup(t, "bob", "bob@campus.edu")

	itemID := env.createItem(t, tokenA, "Blue Backpack")

	resp := env.do(t, env.itemRequest(t, "PUT", "/api/products/"+itemID, tokenB,
		map[string]string{"name": "Stolen Backpack"}, nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner update: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, env.itemRequest(t, "PUT", "/api/products/"+itemID, tokenA,
		map[string]string{"name": "Navy Backpack"}, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner update: status %d", resp.StatusCode)
	}
	var item struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	decode(t, resp, &item)
	if item.Name != "Navy Backpack" || item.Description != "test item" {
		t.Errorf("partial update wrong: %+v", item)
	}
}

func TestItemListPagination(t *testing.T) {
	env := setupTestEnv(t)
	token := env.signup(t, "alice", "alice@campus.edu")

	for i := 0; i < 5; i++ {
		env.createItem(t, token, fmt.Sprintf("Item %d", i))
	}

	resp := env.do(t, env.jsonRequest(t, "GET", "/api/products?page=1&limit=2", "", nil))
	var page struct {
		Items      []any `json:"items"`
		Page       int   `json:"page"`
		TotalPages int64 `json:"totalPages"`
		Total      int64 `json:"total"`
	}
	decode(t, resp, &page)
	if page.Total != 5 || page.TotalPages != 3 || len(page.Items) != 2 {
		t.Errorf("expected total=5 totalPages=3 len=2, got %+v", page)
	}

	resp = env.do(t, env.jsonRequest(t, "GET", "/api/products?page=7&limit=2", "", nil))
	decode(t, resp, &page)
	if len(page.Items) != 0 {
		t.Errorf("page beyond range: expected empty items, got %d", len(page.Items))
	}
}

func TestClaimLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	tokenA := env.signup(t, "alice", "alice@campus.edu")
	tokenB := env.signup(t, "bob", "bob@campus.edu")
	tokenAdmin := env.signupAdmin(t, "root", "root@campus.edu")

	itemID := env.createItem(t, tokenA, "Blue Backpack")

	// Missing itemId is a validation error.
	resp := env.do(t, env.jsonRequest(t, "POST", "/api/claims", tokenB, map[string]string{"message": "mine"}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing itemId: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, env.jsonRequest(t, "POST", "/api/claims", tokenB, map[string]string{
		"itemId": itemID, "message": "That is my backpack",
	}))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create claim: status %d", resp.StatusCode)
	}
	var claim struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Item   struct {
			ID string `json:"id"`
		} `json:"item"`
	}
	decode(t, resp, &claim)
	if claim.Status != "pending" || claim.Item.ID != itemID {
		t.Errorf("unexpected claim payload: %+v", claim)
	}

	// Duplicate pending claim is rejected.
	resp = env.do(t, env.jsonRequest(t, "POST", "/api/claims", tokenB, map[string]string{"itemId": itemID}))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate claim: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Approve is admin-only.
	resp = env.do(t, env.jsonRequest(t, "PATCH", "/api/claims/"+claim.ID+"/approve", tokenB, nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("approve as user: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, env.jsonRequest(t, "PATCH", "/api/claims/"+claim.ID+"/approve", tokenAdmin, nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve as admin: status %d", resp.StatusCode)
	}
	var approved struct {
		Status string `json:"status"`
	}
	decode(t, resp, &approved)
	if approved.Status != "approved" {
		t.Errorf("expected approved, got %q", approved.Status)
	}

	// After adjudication the same pair may claim again.
	resp = env.do(t, env.jsonRequest(t, "POST", "/api/claims", tokenB, map[string]string{"itemId": itemID}))
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("claim after approval: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClaimListScopedToCaller(t *testing.T) {
	env := setupTestEnv(t)
	tokenA := env.signup(t, "alice", "alice@campus.edu")
	tokenB := env.signup(t, "bob", "bob@campus.edu")
	tokenC := env.signup(t, "carol", "carol@campus.edu")

	item1 := env.createItem(t, tokenA, "Backpack")
	item2 := env.createItem(t, tokenA, "Wallet")

	for _, body := range []map[string]string{
		{"itemId": item1}, {"itemId": item2},
	} {
		resp := env.do(t, env.jsonRequest(t, "POST", "/api/claims", tokenB, body))
		resp.Body.Close()
	}
	resp := env.do(t, env.jsonRequest(t, "POST", "/api/claims", tokenC, map[string]string{"itemId": item1}))
	resp.Body.Close()

	// Carol sees only her own claim even though she asked for everything.
	resp = env.do(t, env.jsonRequest(t, "GET", "/api/claims?limit=50", tokenC, nil))
	var page struct {
		Claims []struct {
			Claimer struct {
				Username string `json:"username"`
			} `json:"claimer"`
		} `json:"claims"`
		Total int64 `json:"total"`
	}
	decode(t, resp, &page)
	if page.Total != 1 || len(page.Claims) != 1 || page.Claims[0].Claimer.Username != "carol" {
		t.Errorf("claimer scoping broken: %+v", page)
	}

	// A non-claimer, non-admin cannot delete someone else's claim.
	resp = env.do(t, env.jsonRequest(t, "GET", "/api/claims", tokenB, nil))
	var bobPage struct {
		Claims []struct {
			ID string `json:"id"`
		} `json:"claims"`
	}
	decode(t, resp, &bobPage)
	resp = env.do(t, env.jsonRequest(t, "DELETE", "/api/claims/"+bobPage.Claims[0].ID, tokenA, nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign claim delete: expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStaleTokenForDeletedUser(t *testing.T) {
	env := setupTestEnv(t)
	token := env.signup(t, "alice", "alice@campus.edu")

	if err := env.db.Where("email = ?", "alice@campus.edu").Delete(&models.User{}).Error; err != nil {
		t.Fatalf("deleting user: %v", err)
	}

	resp := env.do(t, env.itemRequest(t, "POST", "/api/products", token, map[string]string{
		"name": "Ghost", "category": "misc", "description": "d",
		"location": "l", "itemType": "lost",
	}, nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("token for deleted user: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
