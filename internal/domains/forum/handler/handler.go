package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/forum/model"
	"novelhub-backend/internal/domains/forum/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

// =====================================================
// FORUM HANDLER
// =====================================================

const maxAttachmentBytes = 5 << 20

type ForumHandler struct {
	forumService service.ServiceInterface
}

func NewForumHandler(forumService service.ServiceInterface) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

func viewer(c *gin.Context) *shared.Actor {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return nil
	}
	return &actor
}

func requireActor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
	}
	return actor, ok
}

// =====================================================
// CATEGORIES
// =====================================================

// ListCategories - GET /api/forum/categories
func (h *ForumHandler) ListCategories(c *gin.Context) {
	categories, err := h.forumService.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, categories)
}

// CreateCategory - POST /api/admin/forum/categories
func (h *ForumHandler) CreateCategory(c *gin.Context) {
	var req model.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.forumService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// =====================================================
// THREADS
// =====================================================

// ListThreads - GET /api/forum/threads?category=&novel_id=&sort=activity|new|top
func (h *ForumHandler) ListThreads(c *gin.Context) {
	var req model.ListThreadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.forumService.ListThreads(c.Request.Context(), req, viewer(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Threads, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// GetThread - GET /api/forum/threads/:slug
func (h *ForumHandler) GetThread(c *gin.Context) {
	resp, err := h.forumService.GetThread(c.Request.Context(), c.Param("slug"), viewer(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// CreateThread - POST /api/forum/threads
func (h *ForumHandler) CreateThread(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req model.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.forumService.CreateThread(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// UpdateThread - PUT /api/forum/threads/:slug
func (h *ForumHandler) UpdateThread(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req model.UpdateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.forumService.UpdateThread(c.Request.Context(), actor, c.Param("slug"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// DeleteThread - DELETE /api/forum/threads/:slug
func (h *ForumHandler) DeleteThread(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if err := h.forumService.DeleteThread(c.Request.Context(), actor, c.Param("slug")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ModerateThread - PATCH /api/admin/forum/threads/:slug
func (h *ForumHandler) ModerateThread(c *gin.Context) {
	var req model.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.forumService.ModerateThread(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// =====================================================
// MESSAGES
// =====================================================

// ListMessages - GET /api/forum/threads/:slug/messages
func (h *ForumHandler) ListMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := h.forumService.ListMessages(c.Request.Context(), c.Param("slug"), page, limit, viewer(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Messages, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// CreateMessage - POST /api/forum/threads/:slug/messages
func (h *ForumHandler) CreateMessage(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req model.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.forumService.CreateMessage(c.Request.Context(), actor, c.Param("slug"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// UpdateMessage - PUT /api/forum/messages/:id
func (h *ForumHandler) UpdateMessage(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid message ID")
		return
	}
	var req model.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.forumService.UpdateMessage(c.Request.Context(), actor, id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// DeleteMessage - DELETE /api/forum/messages/:id
func (h *ForumHandler) DeleteMessage(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid message ID")
		return
	}

	if err := h.forumService.DeleteMessage(c.Request.Context(), actor, id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// =====================================================
// VOTES
// =====================================================

// Vote - POST /api/forum/vote
func (h *ForumHandler) Vote(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req model.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.forumService.Vote(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// UploadAttachment - POST /api/forum/attachments (multipart, field "file")
func (h *ForumHandler) UploadAttachment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxAttachmentBytes {
		response.BadRequest(c, "attachment must not exceed 5MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "cannot read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes+1))
	if err != nil {
		response.BadRequest(c, "cannot read file")
		return
	}

	resp, err := h.forumService.UploadAttachment(c.Request.Context(), actor, data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// =====================================================
// HELPERS
// =====================================================

func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, verrs)
		return
	}

	status, code := mapForumError(err)
	if status == http.StatusInternalServerError {
		logger.Error("forum handler error", err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, code, err.Error())
}

func mapForumError(err error) (int, string) {
	var fErr *model.ForumError
	if errors.As(err, &fErr) {
		switch fErr.Code {
		case model.ErrCodeCategoryNotFound, model.ErrCodeThreadNotFound, model.ErrCodeMessageNotFound:
			return http.StatusNotFound, fErr.Code
		case model.ErrCodeForbidden, model.ErrCodeThreadLocked:
			return http.StatusForbidden, fErr.Code
		case model.ErrCodeCategoryExists:
			return http.StatusConflict, fErr.Code
		case model.ErrCodeInvalidVote, model.ErrCodeInvalidParent, model.ErrCodeInvalidUpload:
			return http.StatusBadRequest, fErr.Code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
