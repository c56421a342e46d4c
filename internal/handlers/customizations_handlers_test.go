package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lista/backend/internal/models"
)

func TestUpsertCustomizationCreatesThenUpdates(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "alice", "alice@example.com", "secret123")

	resp := performJSONRequest(t, env.app, fiber.MethodPost, "/customizations/", map[string]any{
		"background_image_id": "bg_07",
	}, authHeaders(token))
	assertStatus(t, resp, fiber.StatusCreated)

	body := decodeJSONMap(t, resp)
	data, _ := body["data"].(map[string]any)
	if data["status"] != "created" {
		t.Fatalf("expected created status, got %v", data["status"])
	}

	resp = performJSONRequest(t, env.app, fiber.MethodPost, "/customizations/", map[string]any{
		"background_image_id": "bg_12",
	}, authHeaders(token))
	assertStatus(t, resp, fiber.StatusOK)

	body = decodeJSONMap(t, resp)
	data, _ = body["data"].(map[string]any)
	if data["status"] != "updated" {
		t.Fatalf("expected updated status, got %v", data["status"])
	}
	if data["message"] != "Background updated successfully." {
		t.Fatalf("unexpected message: %v", data["message"])
	}

	var rows []models.Customization
	if err := env.db.Where("user_id = ?", user.ID).Find(&rows).Error; err != nil {
		t.Fatalf("failed loading customizations: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single customization row, got %d", len(rows))
	}
	if rows[0].BackgroundImageID != "bg_12" {
		t.Fatalf("expected bg_12, got %q", rows[0].BackgroundImageID)
	}
}

func TestUpsertCustomizationRequiresBackground(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "alice", "alice@example.com", "secret123")

	resp := performJSONRequest(t, env.app, fiber.MethodPost, "/customizations/", map[string]any{}, authHeaders(token))
	assertStatus(t, resp, fiber.StatusBadRequest)
	assertEnvelopeError(t, decodeJSONMap(t, resp), "background_image_id is required.")
}

func TestGetUserCustomizationMissingReturnsEmptyObject(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env.db, "alice", "alice@example.com", "secret123")

	resp := performRequest(t, env.app, fiber.MethodGet, "/customizations/get_user_customization", nil, authHeaders(token))
	assertStatus(t, resp, fiber.StatusOK)

	body := decodeJSONMap(t, resp)
	if body["message"] != "Customization not found for this user." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	data, ok := body["data"].(map[string]any)
	if !ok || len(data) != 0 {
		t.Fatalf("expected empty data object, got %v", body["data"])
	}
}

func TestGetUserCustomizationReturnsRow(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "alice", "alice@example.com", "secret123")
	if err := env.db.Create(&models.Customization{UserID: user.ID, BackgroundImageID: "bg_03"}).Error; err != nil {
		t.Fatalf("failed seeding customization: %v", err)
	}

	resp := performRequest(t, env.app, fiber.MethodGet, "/customizations/get_user_customization", nil, authHeaders(token))
	assertStatus(t, resp, fiber.StatusOK)

	body := decodeJSONMap(t, resp)
	data, _ := body["data"].(map[string]any)
	if data["background_image_id"] != "bg_03" {
		t.Fatalf("expected bg_03, got %v", data["background_image_id"])
	}
}

func TestListCustomizationsScopedToUser(t *testing.T) {
	env := setupTestEnv(t)
	alice, token := createTestUser(t, env.db, "alice", "alice@example.com", "secret123")
	bob, _ := createTestUser(t, env.db, "bob", "bob@example.com", "secret123")
	env.db.Create(&models.Customization{UserID: alice.ID, BackgroundImageID: "bg_01"})
	env.db.Create(&models.Customization{UserID: bob.ID, BackgroundImageID: "bg_02"})

	resp := performRequest(t, env.app, fiber.MethodGet, "/customizations/", nil, authHeaders(token))
	assertStatus(t, resp, fiber.StatusOK)

	body := decodeJSONMap(t, resp)
	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected only alice's customization, got %d", len(data))
	}
}
