package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func TestIPRateLimiter_Allow(t *testing.T) {
	l := NewIPRateLimiter(1, 2, time.Minute)
	defer l.Stop()

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))

	// IP khác có bucket riêng
	assert.True(t, l.Allow("2.2.2.2"))
}

func TestIPRateLimiter_Evict(t *testing.T) {
	l := NewIPRateLimiter(1, 1, time.Minute)
	defer l.Stop()

	l.Allow("1.1.1.1")
	assert.Equal(t, 1, l.size())

	l.evict(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, l.size())
}

func TestIPRateLimiter_StopIsIdempotent(t *testing.T) {
	l := NewIPRateLimiter(1, 1, time.Millisecond)
	l.Stop()
	l.Stop()
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1, time.Minute)
	defer l.Stop()

	r := gin.New()
	r.Use(l.Middleware())
	r.POST("/api/forum/vote", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/forum/vote", nil)
		req.RemoteAddr = "203.0.113.9:1000"
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
