package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/comment/model"
	"novelhub-backend/internal/domains/comment/service"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

type CommentHandler struct {
	commentService service.ServiceInterface
}

func NewCommentHandler(commentService service.ServiceInterface) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// ListComments - GET /api/chapters/:id/comments?paragraph_id=p-3
func (h *CommentHandler) ListComments(c *gin.Context) {
	chapterID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req model.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.commentService.List(c.Request.Context(), chapterID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Comments, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// ParagraphCounts - GET /api/chapters/:id/comments/counts
func (h *CommentHandler) ParagraphCounts(c *gin.Context) {
	chapterID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	counts, err := h.commentService.CountsByParagraph(c.Request.Context(), chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts)
}

// CreateComment - POST /api/chapters/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	chapterID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.commentService.Create(c.Request.Context(), actor, chapterID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// UpdateComment - PUT /api/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.commentService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// DeleteComment - DELETE /api/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), actor, id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, verrs)
		return
	}

	var cErr *model.CommentError
	if errors.As(err, &cErr) {
		switch cErr.Code {
		case model.ErrCodeCommentNotFound, model.ErrCodeChapterNotFound:
			response.ErrorResponse(c, http.StatusNotFound, cErr.Code, cErr.Message)
		case model.ErrCodeForbidden:
			response.ErrorResponse(c, http.StatusForbidden, cErr.Code, cErr.Message)
		default:
			response.ErrorResponse(c, http.StatusBadRequest, cErr.Code, cErr.Message)
		}
		return
	}

	logger.Error("comment handler error", err)
	response.InternalServerError(c, "Internal server error")
}
