package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/domains/novel/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/middleware"
)

// stubService giữ slug đã tạo để mô phỏng unique constraint
type stubService struct {
	service.ServiceInterface
	slugs     map[string]bool
	lastCover []byte
}

func (s *stubService) Create(_ context.Context, actor shared.Actor, req model.CreateNovelRequest) (*model.NovelResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	slug := req.Slug
	if s.slugs[slug] {
		return nil, model.NewSlugExistsError(slug)
	}
	s.slugs[slug] = true
	return &model.NovelResponse{ID: uuid.New(), Slug: slug, Title: req.Title, Author: model.AuthorRef{ID: actor.ID}}, nil
}

func (s *stubService) GetBySlug(_ context.Context, slug string, _ *shared.Actor) (*model.NovelResponse, error) {
	if !s.slugs[slug] {
		return nil, model.NewNovelNotFoundError()
	}
	return &model.NovelResponse{Slug: slug}, nil
}

func (s *stubService) UploadCover(_ context.Context, _ shared.Actor, _ string, data []byte) (*model.CoverResponse, error) {
	s.lastCover = data
	return &model.CoverResponse{CoverURL: "http://cdn/cover.png"}, nil
}

func newRouter(svc service.ServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewNovelHandler(svc)

	authed := r.Group("/api", func(c *gin.Context) {
		c.Set(middleware.CtxUserID, uuid.New())
		c.Set(middleware.CtxRole, "author")
		c.Next()
	})
	authed.POST("/novels", h.CreateNovel)
	authed.POST("/novels/:slug/cover", h.UploadCover)
	r.GET("/api/novels/:slug", h.GetNovel)
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateNovel_DuplicateSlugReturns400(t *testing.T) {
	r := newRouter(&stubService{slugs: map[string]bool{}})

	w := postJSON(r, "/api/novels", map[string]string{"title": "Sword Saga", "slug": "sword-saga"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(r, "/api/novels", map[string]string{"title": "Other", "slug": "sword-saga"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, model.ErrCodeSlugExists, body.Error.Code)
}

func TestCreateNovel_ValidationError(t *testing.T) {
	r := newRouter(&stubService{slugs: map[string]bool{}})

	w := postJSON(r, "/api/novels", map[string]string{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestGetNovel_NotFound(t *testing.T) {
	r := newRouter(&stubService{slugs: map[string]bool{}})

	req := httptest.NewRequest(http.MethodGet, "/api/novels/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadCover_Multipart(t *testing.T) {
	svc := &stubService{slugs: map[string]bool{}}
	r := newRouter(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("cover", "cover.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake-png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/novels/sword-saga/cover", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("fake-png"), svc.lastCover)
}
