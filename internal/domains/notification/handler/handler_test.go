package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/domains/notification/service"
	"novelhub-backend/internal/shared/middleware"
)

type stubService struct {
	service.NotificationService
}

func (stubService) UnreadCount(context.Context, uuid.UUID) (int, error) { return 4, nil }

func (stubService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return model.NewNotificationNotFoundError()
}

func (stubService) MarkRead(_ context.Context, _ uuid.UUID, req model.MarkReadRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return int64(len(req.IDs)), nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewNotificationHandler(stubService{})
	g := r.Group("/api/notifications", func(c *gin.Context) {
		c.Set(middleware.CtxUserID, uuid.New())
		c.Next()
	})
	g.GET("/unread-count", h.GetUnreadCount)
	g.POST("/read", h.MarkRead)
	g.DELETE("/:id", h.DeleteNotification)
	return r
}

func TestNotificationHandler(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notifications/unread-count", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread":4`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/notifications/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeNotificationNotFound)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/read", strings.NewReader(`{"ids":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}
