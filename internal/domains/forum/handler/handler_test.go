package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/domains/forum/model"
	"novelhub-backend/internal/domains/forum/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/middleware"
)

type stubService struct {
	service.ServiceInterface
	err error
}

func (s stubService) Vote(_ context.Context, _ shared.Actor, req model.VoteRequest) (*model.VoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &model.VoteResponse{TargetType: req.TargetType, TargetID: req.TargetID, Score: req.Value, UserVote: req.Value}, nil
}

func (s stubService) CreateMessage(context.Context, shared.Actor, string, model.CreateMessageRequest) (*model.MessageResponse, error) {
	return nil, s.err
}

func (s stubService) UploadAttachment(_ context.Context, _ shared.Actor, data []byte) (*model.AttachmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.AttachmentResponse{URL: "http://minio/a.png", Markdown: "![](http://minio/a.png)"}, nil
}

func newRouter(s stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewForumHandler(s)
	auth := func(c *gin.Context) { c.Set(middleware.CtxUserID, uuid.New()) }
	r.POST("/api/forum/vote", auth, h.Vote)
	r.POST("/api/forum/threads/:slug/messages", auth, h.CreateMessage)
	r.POST("/api/forum/attachments", auth, h.UploadAttachment)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestVote(t *testing.T) {
	r := newRouter(stubService{})
	target := uuid.NewString()

	w := postJSON(r, "/api/forum/vote", `{"target_type":"thread","target_id":"`+target+`","value":1}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_vote":1`)

	w = postJSON(r, "/api/forum/vote", `{"target_type":"thread","target_id":"`+target+`","value":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = postJSON(r, "/api/forum/vote", `{"target_type":"novel","target_id":"`+target+`","value":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMessage_Locked(t *testing.T) {
	r := newRouter(stubService{err: model.NewThreadLockedError()})

	w := postJSON(r, "/api/forum/threads/some-thread/messages", `{"body":"hello"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeThreadLocked)
}

func postFile(t *testing.T, r http.Handler, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "upload.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/forum/attachments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	return w
}

func TestUploadAttachment(t *testing.T) {
	w := postFile(t, newRouter(stubService{}), "file", []byte("img"))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"markdown":"![](http://minio/a.png)"`)

	w = postFile(t, newRouter(stubService{}), "image", []byte("img"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postFile(t, newRouter(stubService{err: model.NewInvalidUploadError(errors.New("not an image"))}), "file", []byte("img"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeInvalidUpload)
}
