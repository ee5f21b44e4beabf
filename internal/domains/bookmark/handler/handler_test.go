package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"novelhub-backend/internal/domains/bookmark/model"
	"novelhub-backend/internal/domains/bookmark/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/middleware"
)

type stubService struct {
	service.ServiceInterface
	err error
}

func (s stubService) Add(context.Context, shared.Actor, uuid.UUID) error { return s.err }

func TestAddBookmark(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		err  error
		path string
		want int
	}{
		{"created", nil, uuid.NewString(), http.StatusCreated},
		{"duplicate", model.NewAlreadyBookmarkedError(), uuid.NewString(), http.StatusConflict},
		{"missing novel", model.NewNovelNotFoundError(), uuid.NewString(), http.StatusNotFound},
		{"bad id", nil, "nope", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			h := NewBookmarkHandler(stubService{err: tc.err})
			r.POST("/api/bookmarks/:novel_id", func(c *gin.Context) {
				c.Set(middleware.CtxUserID, uuid.New())
				c.Set(middleware.CtxRole, "user")
			}, h.AddBookmark)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/bookmarks/"+tc.path, nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
