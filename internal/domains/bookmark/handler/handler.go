package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/bookmark/model"
	"novelhub-backend/internal/domains/bookmark/service"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

type BookmarkHandler struct {
	bookmarkService service.ServiceInterface
}

func NewBookmarkHandler(bookmarkService service.ServiceInterface) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// ListBookmarks - GET /api/bookmarks
func (h *BookmarkHandler) ListBookmarks(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := h.bookmarkService.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Bookmarks, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// AddBookmark - POST /api/bookmarks/:novel_id
func (h *BookmarkHandler) AddBookmark(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	novelID, ok := novelIDParam(c)
	if !ok {
		return
	}

	if err := h.bookmarkService.Add(c.Request.Context(), actor, novelID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, model.StatusResponse{NovelID: novelID, IsBookmarked: true})
}

// RemoveBookmark - DELETE /api/bookmarks/:novel_id
func (h *BookmarkHandler) RemoveBookmark(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	novelID, ok := novelIDParam(c)
	if !ok {
		return
	}

	if err := h.bookmarkService.Remove(c.Request.Context(), userID, novelID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStatus - GET /api/bookmarks/:novel_id
func (h *BookmarkHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	novelID, ok := novelIDParam(c)
	if !ok {
		return
	}

	bookmarked, err := h.bookmarkService.IsBookmarked(c.Request.Context(), userID, novelID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.StatusResponse{NovelID: novelID, IsBookmarked: bookmarked})
}

func novelIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("novel_id"))
	if err != nil {
		response.BadRequest(c, "Invalid novel ID")
		return uuid.Nil, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	var bErr *model.BookmarkError
	if errors.As(err, &bErr) {
		status := http.StatusNotFound
		if bErr.Code == model.ErrCodeAlreadyBookmarked {
			status = http.StatusConflict
		}
		response.ErrorResponse(c, status, bErr.Code, bErr.Message)
		return
	}
	logger.Error("bookmark handler error", err)
	response.InternalServerError(c, "Internal server error")
}
