package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lista/backend/internal/models"
)

var (
	jwtSecret              = []byte("change-me-in-production")
	jwtExpirationHours     = 24
	refreshExpirationHours = 24 * 7
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims carries the username and user_id the frontend reads out of the
// token alongside the registered claims.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

func ConfigureJWT(secret string, expirationHours, refreshHours int) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if expirationHours > 0 {
		jwtExpirationHours = expirationHours
	}
	if refreshHours > 0 {
		refreshExpirationHours = refreshHours
	}
}

func GenerateToken(user *models.User) (string, error) {
	return generate(user, TokenTypeAccess, time.Duration(jwtExpirationHours)*time.Hour)
}

func GenerateRefreshToken(user *models.User) (string, error) {
	return generate(user, TokenTypeRefresh, time.Duration(refreshExpirationHours)*time.Hour)
}

func generate(user *models.User, tokenType string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
