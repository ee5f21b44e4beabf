package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/pkg/jwt"
)

func newAuthRouter(m *jwt.Manager) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(m), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id.String())
	})
	r.GET("/admin", AuthMiddleware(m), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/optional", OptionalAuthMiddleware(m), func(c *gin.Context) {
		if GetOptionalUserID(c) == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "member")
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour, time.Hour)
	r := newAuthRouter(m)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID.String(), "reader", "user")
	require.NoError(t, err)

	w := get(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)

	refresh, _ := m.GenerateRefreshToken(userID.String())
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", refresh).Code)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", token).Code)
	admin, _ := m.GenerateAccessToken(userID.String(), "boss", "admin")
	assert.Equal(t, http.StatusOK, get(r, "/admin", admin).Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour, time.Hour)
	r := newAuthRouter(m)

	assert.Equal(t, "anonymous", get(r, "/optional", "").Body.String())
	assert.Equal(t, "anonymous", get(r, "/optional", "bad").Body.String())

	token, _ := m.GenerateAccessToken(uuid.NewString(), "reader", "user")
	assert.Equal(t, "member", get(r, "/optional", token).Body.String())
}
