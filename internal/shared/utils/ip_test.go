package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(headers map[string]string, remote string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.RemoteAddr = remote
		for k, v := range headers {
			c.Request.Header.Set(k, v)
		}
		return c
	}

	assert.Equal(t, "203.0.113.7", ExtractClientIP(newCtx(map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
	}, "10.0.0.1:1234")))

	assert.Equal(t, "198.51.100.2", ExtractClientIP(newCtx(map[string]string{
		"X-Forwarded-For": "garbage",
		"X-Real-IP":       "198.51.100.2",
	}, "10.0.0.1:1234")))

	assert.Equal(t, "192.0.2.10", ExtractClientIP(newCtx(nil, "192.0.2.10:5555")))
	assert.Equal(t, "127.0.0.1", ExtractClientIP(newCtx(nil, "nonsense")))
}
