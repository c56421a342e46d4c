package handlers

import (
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lista/backend/internal/models"
	"github.com/lista/backend/internal/services"
	"github.com/lista/backend/pkg/logger"
	"github.com/lista/backend/pkg/utils"
)

type AuthHandler struct {
	DB     *gorm.DB
	Mailer services.Mailer
}

func NewAuthHandler(db *gorm.DB, mailer services.Mailer) *AuthHandler {
	return &AuthHandler{DB: db, Mailer: mailer}
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "username, email and password are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid email format.")
	}

	var existing models.User
	if err := h.DB.First(&existing, "username = ?", req.Username).Error; err == nil {
		return utils.Error(c, fiber.StatusBadRequest, "Username already exists.")
	} else if err != gorm.ErrRecordNotFound {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing user")
	}

	if err := h.DB.First(&existing, "email = ?", req.Email).Error; err == nil {
		return utils.Error(c, fiber.StatusBadRequest, "Email already in use.")
	} else if err != gorm.ErrRecordNotFound {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing user")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to hash password")
	}

	now := time.Now()
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		LastLoginAt:  &now,
	}

	if err := h.DB.Create(&user).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating user")
	}

	access, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"username": user.Username,
		"user_id":  user.ID,
		"access":   access,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "username and password are required")
	}

	var user models.User
	if err := h.DB.First(&user, "username = ?", req.Username).Error; err != nil {
		logger.Warn("login_failed_user_not_found", map[string]interface{}{
			"username": req.Username,
			"ip":       c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		logger.WarnWithUser(user.ID.String(), "login_failed_invalid_password", map[string]interface{}{
			"ip": c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	now := time.Now()
	if err := h.DB.Model(&user).Update("last_login_at", &now).Error; err != nil {
		logger.Error("login_last_login_update_failed", err, map[string]interface{}{
			"user_id": user.ID.String(),
		})
	}

	access, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}
	refresh, err := utils.GenerateRefreshToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{
		"ip": c.IP(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"access":   access,
		"refresh":  refresh,
		"username": user.Username,
		"user_id":  user.ID,
	})
}

type resetPasswordRequestBody struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ResetPasswordRequest(c *fiber.Ctx) error {
	var req resetPasswordRequestBody
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Email is required")
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "User with this email does not exist.")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	if err := h.Mailer.SendPasswordReset(c.Context(), email); err != nil {
		logger.Error("password_reset_email_failed", err, map[string]interface{}{
			"email": email,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed sending password reset email")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Password reset email has been sent.",
	})
}

type resetPasswordBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordBody
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "Email and new password are required.")
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "User with this email does not exist.")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.DB.Model(&user).Update("password_hash", passwordHash).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating password")
	}

	logger.InfoWithUser(user.ID.String(), "password_reset", map[string]interface{}{
		"ip": c.IP(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Password reset successfully.",
	})
}
