package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lista/backend/internal/models"
	"github.com/lista/backend/pkg/logger"
	"github.com/lista/backend/pkg/utils"
)

type UsersHandler struct {
	DB *gorm.DB
}

func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{DB: db}
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "User not found.")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
	})
}

type updateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (h *UsersHandler) Update(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "User not found.")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		var count int64
		if err := h.DB.Model(&models.User{}).
			Where("username = ? AND id <> ?", username, user.ID).
			Count(&count).Error; err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed checking username")
		}
		if count > 0 {
			return utils.Error(c, fiber.StatusBadRequest, "Username already exists.")
		}
		user.Username = username
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "Invalid email format.")
		}
		var count int64
		if err := h.DB.Model(&models.User{}).
			Where("email = ? AND id <> ?", email, user.ID).
			Count(&count).Error; err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed checking email")
		}
		if count > 0 {
			return utils.Error(c, fiber.StatusBadRequest, "Email already in use.")
		}
		user.Email = email
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}

	if err := h.DB.Save(&user).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating user")
	}

	logger.InfoWithUser(user.ID.String(), "profile_updated", map[string]interface{}{
		"username": user.Username,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated successfully!",
	})
}

func (h *UsersHandler) GetByEmail(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Params("email")))
	if email == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Email parameter is required.")
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "User not found.")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	return utils.Success(c, fiber.StatusOK, user)
}
