package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/jwt"
)

// Context keys do auth middleware set
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// bearerToken lấy token từ "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims *jwt.Claims) bool {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return false
	}
	c.Set(CtxUserID, userID)
	c.Set(CtxUsername, claims.Username)
	c.Set(CtxRole, claims.Role)
	return true
}

// AuthMiddleware - bắt buộc access token hợp lệ
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := manager.ValidateAccessToken(token)
		if err != nil || !setClaims(c, claims) {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware set user nếu có token hợp lệ, không thì request vẫn đi tiếp như anonymous
func OptionalAuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := manager.ValidateAccessToken(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// GetUserID trả về user id do AuthMiddleware set
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetOptionalUserID trả về nil nếu request anonymous
func GetOptionalUserID(c *gin.Context) *uuid.UUID {
	id, ok := GetUserID(c)
	if !ok {
		return nil
	}
	return &id
}

func GetRole(c *gin.Context) string {
	return c.GetString(CtxRole)
}

// GetActor gom user id + role cho service layer
func GetActor(c *gin.Context) (shared.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return shared.Actor{}, false
	}
	return shared.Actor{ID: id, Role: GetRole(c)}, true
}
