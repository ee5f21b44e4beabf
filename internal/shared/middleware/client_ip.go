package middleware

import (
	"github.com/gin-gonic/gin"

	"novelhub-backend/internal/shared/utils"
)

const CtxClientIP = "client_ip"

// ClientIPMiddleware set IP thật của client vào gin context
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxClientIP, utils.ExtractClientIP(c))
		c.Next()
	}
}

// ClientIP đọc IP do ClientIPMiddleware set, fallback về ExtractClientIP
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(CtxClientIP); ip != "" {
		return ip
	}
	return utils.ExtractClientIP(c)
}
