package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lista/backend/internal/middleware"
	"github.com/lista/backend/internal/models"
	"github.com/lista/backend/internal/services"
	"github.com/lista/backend/pkg/logger"
	"github.com/lista/backend/pkg/utils"
)

type GroupSharesHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewGroupSharesHandler(db *gorm.DB, access *services.AccessService) *GroupSharesHandler {
	return &GroupSharesHandler{DB: db, Access: access}
}

// List returns the list items visible to a user: owned plus shared-with.
// Defaults to the authenticated user when user_id is absent.
func (h *GroupSharesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	userID := currentUser.ID
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		parsed, err := parseUUID(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid user_id")
		}
		userID = parsed
	}

	items, err := h.Access.VisibleItems(c.Context(), userID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing shared items")
	}

	return utils.Success(c, fiber.StatusOK, items)
}

type createGroupShareRequest struct {
	User           string `json:"user"`
	ListItem       string `json:"list_item"`
	Role           string `json:"role"`
	PermissionType string `json:"permission_type"`
}

func (h *GroupSharesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createGroupShareRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.User) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "user is required")
	}

	targetUserID, err := parseUUID(req.User)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user")
	}
	listItemID, err := parseUUID(req.ListItem)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid list_item")
	}

	var targetUser models.User
	if err := h.DB.First(&targetUser, "id = ?", targetUserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "User not found.")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	var item models.ListItem
	if err := h.DB.First(&item, "id = ?", listItemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "List item not found.")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading list item")
	}

	share := models.GroupShare{
		UserID:         targetUserID,
		ListItemID:     listItemID,
		Role:           models.GroupShareRoleMember,
		PermissionType: models.GroupSharePermissionReadOnly,
	}
	if req.Role != "" {
		if !models.IsValidGroupShareRole(req.Role) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid role")
		}
		share.Role = models.GroupShareRole(req.Role)
	}
	if req.PermissionType != "" {
		if !models.IsValidGroupSharePermission(req.PermissionType) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid permission_type")
		}
		share.PermissionType = models.GroupSharePermission(req.PermissionType)
	}

	// One share per (user, list item); the composite unique index backs
	// this up at the schema level.
	var existingCount int64
	if err := h.DB.Model(&models.GroupShare{}).
		Where("user_id = ? AND list_item_id = ?", targetUserID, listItemID).
		Count(&existingCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing share")
	}
	if existingCount > 0 {
		return utils.Error(c, fiber.StatusConflict, "share already exists for this user and list item")
	}

	if err := h.DB.Create(&share).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating group list")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_share_created", map[string]interface{}{
		"share_id":     share.ID.String(),
		"target_user":  targetUserID.String(),
		"list_item_id": listItemID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"message": "GroupList created successfully",
		"data":    share,
	})
}

type updateGroupShareRequest struct {
	Role           *string `json:"role"`
	PermissionType *string `json:"permission_type"`
}

// Update modifies a share if the requester owns the underlying list item or
// already appears among its shared users. On success the row's user is
// reassigned to the requester, unless the requester already holds their own
// share on the item, which conflicts.
func (h *GroupSharesHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	shareID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group list id")
	}

	var share models.GroupShare
	if err := h.DB.First(&share, "id = ?", shareID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "group list not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group list")
	}

	allowed, err := h.Access.CanModify(c.Context(), currentUser.ID, share.ListItemID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking permissions")
	}
	if !allowed {
		return utils.Error(c, fiber.StatusForbidden, "You are not authorized to update this group list.")
	}

	var req updateGroupShareRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Role != nil {
		if !models.IsValidGroupShareRole(*req.Role) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid role")
		}
		share.Role = models.GroupShareRole(*req.Role)
	}
	if req.PermissionType != nil {
		if !models.IsValidGroupSharePermission(*req.PermissionType) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid permission_type")
		}
		share.PermissionType = models.GroupSharePermission(*req.PermissionType)
	}

	// Reassignment would collide with the (user, list item) unique index
	// when the requester already holds their own share on the item.
	if share.UserID != currentUser.ID {
		var existingCount int64
		if err := h.DB.Model(&models.GroupShare{}).
			Where("user_id = ? AND list_item_id = ?", currentUser.ID, share.ListItemID).
			Count(&existingCount).Error; err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing share")
		}
		if existingCount > 0 {
			return utils.Error(c, fiber.StatusConflict, "share already exists for this user and list item")
		}
		share.UserID = currentUser.ID
	}

	if err := h.DB.Save(&share).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating group list")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_share_updated", map[string]interface{}{
		"share_id": share.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "GroupList updated successfully",
		"data":    share,
	})
}

// ListByUser returns the list items shared with the authenticated user.
func (h *GroupSharesHandler) ListByUser(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	sharedIDs := h.DB.Model(&models.GroupShare{}).
		Select("list_item_id").
		Where("user_id = ?", currentUser.ID)

	var items []models.ListItem
	if err := h.DB.Where("id IN (?)", sharedIDs).Find(&items).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing items")
	}

	return utils.Success(c, fiber.StatusOK, items)
}

func (h *GroupSharesHandler) GetPermissionType(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	rawUserID := strings.TrimSpace(c.Query("user_id"))
	rawListItemID := strings.TrimSpace(c.Query("list_item_id"))
	if rawUserID == "" || rawListItemID == "" {
		return utils.Error(c, fiber.StatusBadRequest, "user_id and list_item_id are required")
	}

	userID, err := parseUUID(rawUserID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user_id")
	}
	listItemID, err := parseUUID(rawListItemID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid list_item_id")
	}

	tier, err := h.Access.PermissionTier(c.Context(), userID, listItemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "No group list found for the given user and item")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading permission")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"permission_type": tier,
	})
}
