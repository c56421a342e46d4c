package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/lista/backend/internal/database"
	"github.com/lista/backend/internal/middleware"
	"github.com/lista/backend/internal/models"
	"github.com/lista/backend/internal/services"
	"github.com/lista/backend/pkg/logger"
	"github.com/lista/backend/pkg/utils"
)

type testEnv struct {
	app       *fiber.App
	db        *gorm.DB
	store     *memoryBlobStore
	completer *stubCompleter
	mailer    *recordingMailer
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24, 168)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	store := newMemoryBlobStore()
	completer := &stubCompleter{response: "bread, milk, eggs"}
	mailer := &recordingMailer{}

	accessService := services.NewAccessService(db)
	imageService := services.NewImageService(db, store)
	recommendationService := services.NewRecommendationService(db, completer)

	authHandler := NewAuthHandler(db, mailer)
	usersHandler := NewUsersHandler(db)
	listItemsHandler := NewListItemsHandler(db)
	groupSharesHandler := NewGroupSharesHandler(db, accessService)
	imagesHandler := NewImagesHandler(imageService)
	customizationsHandler := NewCustomizationsHandler(db)
	recommendationsHandler := NewRecommendationsHandler(recommendationService)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 50 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)
	app.Post("/reset_password_request", authHandler.ResetPasswordRequest)
	app.Post("/reset_password", authHandler.ResetPassword)

	app.Get("/user/by-email/:email", usersHandler.GetByEmail)
	app.Get("/user/:id", usersHandler.Get)
	app.Patch("/user/:id", usersHandler.Update)

	listItemRoutes := app.Group("/listitem")
	listItemRoutes.Get("/", authMiddleware.OptionalAuth, listItemsHandler.List)
	listItemRoutes.Get("/by-user/:id", authMiddleware.RequireAuth, listItemsHandler.ListByUser)
	listItemRoutes.Post("/", authMiddleware.RequireAuth, listItemsHandler.Create)
	listItemRoutes.Patch("/:id/delete_item", authMiddleware.RequireAuth, listItemsHandler.SoftDelete)
	listItemRoutes.Patch("/:id", authMiddleware.RequireAuth, listItemsHandler.Update)

	groupListRoutes := app.Group("/grouplists", authMiddleware.RequireAuth)
	groupListRoutes.Get("/permission_type", groupSharesHandler.GetPermissionType)
	groupListRoutes.Get("/by-user/:id", groupSharesHandler.ListByUser)
	groupListRoutes.Get("/", groupSharesHandler.List)
	groupListRoutes.Post("/", groupSharesHandler.Create)
	groupListRoutes.Patch("/:id", groupSharesHandler.Update)

	imageRoutes := app.Group("/listitemimages", authMiddleware.RequireAuth)
	imageRoutes.Post("/upload_images", imagesHandler.Upload)
	imageRoutes.Post("/update_images", imagesHandler.UpdateImages)
	imageRoutes.Get("/:id/get_images_for_list_item", imagesHandler.ListForListItem)

	customizationRoutes := app.Group("/customizations", authMiddleware.RequireAuth)
	customizationRoutes.Get("/get_user_customization", customizationsHandler.GetForUser)
	customizationRoutes.Get("/", customizationsHandler.List)
	customizationRoutes.Post("/", customizationsHandler.Upsert)

	app.Get("/recommendations/:list_item_id", authMiddleware.RequireAuth, recommendationsHandler.Generate)

	return &testEnv{app: app, db: db, store: store, completer: completer, mailer: mailer}
}

// memoryBlobStore keeps uploaded blobs in a map so handler tests run without
// a MinIO server.
type memoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failAll bool
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{objects: map[string][]byte{}}
}

func (m *memoryBlobStore) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return fmt.Errorf("upload failed for %s", objectName)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[objectName] = data
	return nil
}

func (m *memoryBlobStore) Delete(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectName)
	m.deleted = append(m.deleted, objectName)
	return nil
}

func (m *memoryBlobStore) PresignedGetURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "http://blobs.test/" + objectName, nil
}

func (m *memoryBlobStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type recordingMailer struct {
	sent []string
	err  error
}

func (r *recordingMailer) SendPasswordReset(_ context.Context, email string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, email)
	return nil
}

func createTestUser(t *testing.T, db *gorm.DB, username, email, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func createTestListItem(t *testing.T, db *gorm.DB, owner *models.User, title, items string) *models.ListItem {
	t.Helper()

	item := &models.ListItem{
		Title:    title,
		Items:    items,
		OwnerID:  owner.ID,
		IsActive: true,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed creating test list item: %v", err)
	}
	return item
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
