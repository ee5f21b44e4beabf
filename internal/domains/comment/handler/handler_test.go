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

	"novelhub-backend/internal/domains/comment/model"
	"novelhub-backend/internal/domains/comment/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/middleware"
)

type stubService struct {
	service.ServiceInterface
	deleteErr error
}

func (s stubService) Create(_ context.Context, _ shared.Actor, chapterID uuid.UUID, req model.CreateCommentRequest) (*model.CommentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &model.CommentResponse{ID: uuid.New(), ChapterID: chapterID, Body: req.Body}, nil
}

func (s stubService) Delete(context.Context, shared.Actor, uuid.UUID) error { return s.deleteErr }

func newRouter(s stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCommentHandler(s)
	auth := func(c *gin.Context) { c.Set(middleware.CtxUserID, uuid.New()) }
	r.POST("/api/chapters/:id/comments", auth, h.CreateComment)
	r.DELETE("/api/comments/:id", auth, h.DeleteComment)
	return r
}

func TestCreateComment(t *testing.T) {
	r := newRouter(stubService{})
	path := "/api/chapters/" + uuid.NewString() + "/comments"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"body":"great","paragraph_id":"p-2"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"body":""}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestDeleteComment_Forbidden(t *testing.T) {
	r := newRouter(stubService{deleteErr: model.NewForbiddenError()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/comments/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeForbidden)
}
