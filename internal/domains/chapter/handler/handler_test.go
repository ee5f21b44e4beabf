package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"novelhub-backend/internal/domains/chapter/model"
	"novelhub-backend/internal/domains/chapter/service"
	"novelhub-backend/internal/shared"
)

type stubService struct {
	service.ServiceInterface
	gotPart *int
	err     error
}

func (s *stubService) Read(_ context.Context, _ string, number int, part *int, _ *shared.Actor) (*model.ChapterView, error) {
	s.gotPart = part
	if s.err != nil {
		return nil, s.err
	}
	return &model.ChapterView{ChapterNumber: number, IsLocked: true}, nil
}

func newRouter(s *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewChapterHandler(s)
	r.GET("/api/novels/:slug/chapters/:number", h.ReadChapter)
	r.DELETE("/api/chapters/:id", h.DeleteChapter)
	return r
}

func TestReadChapter(t *testing.T) {
	s := &stubService{}
	r := newRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/novels/abc/chapters/3?part=2", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, s.gotPart) {
		assert.Equal(t, 2, *s.gotPart)
	}
	assert.Contains(t, w.Body.String(), `"is_locked":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/novels/abc/chapters/zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadChapter_NotFound(t *testing.T) {
	r := newRouter(&stubService{err: model.NewChapterNotFoundError()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/novels/abc/chapters/3", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeChapterNotFound)
}

func TestDeleteChapter_RequiresAuth(t *testing.T) {
	r := newRouter(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/chapters/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
