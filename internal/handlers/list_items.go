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

type ListItemsHandler struct {
	DB *gorm.DB
}

func NewListItemsHandler(db *gorm.DB) *ListItemsHandler {
	return &ListItemsHandler{DB: db}
}

func (h *ListItemsHandler) List(c *fiber.Ctx) error {
	query := h.DB.Model(&models.ListItem{})

	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		userID, err := parseUUID(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid user_id")
		}
		query = query.Where("owner_id = ?", userID)
	}

	var items []models.ListItem
	if err := query.Find(&items).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing items")
	}

	return utils.Success(c, fiber.StatusOK, items)
}

func (h *ListItemsHandler) ListByUser(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "User not logged in.")
	}

	var items []models.ListItem
	if err := h.DB.Where("owner_id = ?", currentUser.ID).Find(&items).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing items")
	}

	return utils.Success(c, fiber.StatusOK, items)
}

type createListItemRequest struct {
	Title string `json:"title"`
	Items string `json:"items"`
}

func (h *ListItemsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "User not logged in.")
	}

	var req createListItemRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	item := models.ListItem{
		OwnerID:  currentUser.ID,
		IsActive: true,
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		item.Title = title
	}
	if items := strings.TrimSpace(req.Items); items != "" {
		item.Items = items
	}

	if err := h.DB.Create(&item).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating item")
	}

	logger.InfoWithUser(currentUser.ID.String(), "list_item_created", map[string]interface{}{
		"list_item_id": item.ID.String(),
		"title":        item.Title,
	})

	return utils.Success(c, fiber.StatusCreated, item)
}

type updateListItemRequest struct {
	Title *string `json:"title"`
	Items *string `json:"items"`
}

func (h *ListItemsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "User not logged in.")
	}

	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	var item models.ListItem
	if err := h.DB.First(&item, "id = ?", itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "Item not found!")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading item")
	}

	var req updateListItemRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Items != nil {
		item.Items = *req.Items
	}

	if err := h.DB.Save(&item).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating item")
	}

	return utils.Success(c, fiber.StatusOK, item)
}

// SoftDelete marks the item inactive. List items are never physically
// deleted.
func (h *ListItemsHandler) SoftDelete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "User not logged in.")
	}

	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	var item models.ListItem
	if err := h.DB.First(&item, "id = ?", itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "Item not found!")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading item")
	}

	if err := h.DB.Model(&item).Update("is_active", false).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting item")
	}

	logger.InfoWithUser(currentUser.ID.String(), "list_item_soft_deleted", map[string]interface{}{
		"list_item_id": item.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Item successfully deleted!",
	})
}
