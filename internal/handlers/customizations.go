package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lista/backend/internal/middleware"
	"github.com/lista/backend/internal/models"
	"github.com/lista/backend/pkg/logger"
	"github.com/lista/backend/pkg/utils"
)

type CustomizationsHandler struct {
	DB *gorm.DB
}

func NewCustomizationsHandler(db *gorm.DB) *CustomizationsHandler {
	return &CustomizationsHandler{DB: db}
}

type upsertCustomizationRequest struct {
	BackgroundImageID string `json:"background_image_id"`
}

// Upsert creates or replaces the user's background customization. The
// atomicity of create-or-update is whatever the store's native upsert
// provides; there is no explicit locking.
func (h *CustomizationsHandler) Upsert(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req upsertCustomizationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	backgroundImageID := strings.TrimSpace(req.BackgroundImageID)
	if backgroundImageID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "background_image_id is required.")
	}

	var customization models.Customization
	err := h.DB.Where("user_id = ?", currentUser.ID).First(&customization).Error
	created := err == gorm.ErrRecordNotFound
	if err != nil && !created {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading customization")
	}

	customization.UserID = currentUser.ID
	customization.BackgroundImageID = backgroundImageID

	if err := h.DB.Save(&customization).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed saving customization")
	}

	logger.InfoWithUser(currentUser.ID.String(), "customization_saved", map[string]interface{}{
		"background_image_id": backgroundImageID,
		"created":             created,
	})

	status := fiber.StatusOK
	state := "updated"
	if created {
		status = fiber.StatusCreated
		state = "created"
	}

	return utils.Success(c, status, fiber.Map{
		"message": "Background updated successfully.",
		"data":    customization,
		"status":  state,
	})
}

func (h *CustomizationsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var customizations []models.Customization
	if err := h.DB.Where("user_id = ?", currentUser.ID).Find(&customizations).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing customizations")
	}

	return utils.Success(c, fiber.StatusOK, customizations)
}

// GetForUser returns the user's customization, or an empty object with
// status 200 when none exists.
func (h *CustomizationsHandler) GetForUser(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var customization models.Customization
	err := h.DB.Where("user_id = ?", currentUser.ID).First(&customization).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"message": "Customization not found for this user.",
			"data":    fiber.Map{},
		})
	}
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading customization")
	}

	return utils.Success(c, fiber.StatusOK, customization)
}
