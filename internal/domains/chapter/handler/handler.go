package handler

import (
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/chapter/model"
	"novelhub-backend/internal/domains/chapter/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

type ChapterHandler struct {
	chapterService service.ServiceInterface
}

func NewChapterHandler(chapterService service.ServiceInterface) *ChapterHandler {
	return &ChapterHandler{chapterService: chapterService}
}

func viewer(c *gin.Context) *shared.Actor {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return nil
	}
	return &actor
}

// =====================================================
// PUBLIC ENDPOINTS
// =====================================================

// ListChapters godoc
// GET /api/novels/:slug/chapters
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	chapters, err := h.chapterService.List(c.Request.Context(), c.Param("slug"), viewer(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, chapters)
}

// ReadChapter godoc
// GET /api/novels/:slug/chapters/:number?part=2
func (h *ChapterHandler) ReadChapter(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		response.BadRequest(c, "Invalid chapter number")
		return
	}

	var part *int
	if raw := c.Query("part"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			response.BadRequest(c, "Invalid part number")
			return
		}
		part = &p
	}

	view, err := h.chapterService.Read(c.Request.Context(), c.Param("slug"), number, part, viewer(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// =====================================================
// AUTHOR ENDPOINTS
// =====================================================

// CreateChapter godoc
// POST /api/novels/:slug/chapters
func (h *ChapterHandler) CreateChapter(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.chapterService.Create(c.Request.Context(), actor, c.Param("slug"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// GetChapter godoc
// GET /api/chapters/:id
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	resp, err := h.chapterService.GetForEdit(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// UpdateChapter godoc
// PUT /api/chapters/:id
func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	var req model.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.chapterService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// DeleteChapter godoc
// DELETE /api/chapters/:id
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	if err := h.chapterService.Delete(c.Request.Context(), actor, id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// =====================================================
// HELPERS
// =====================================================

func actorAndID(c *gin.Context) (shared.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return shared.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid chapter ID")
		return shared.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, verrs)
		return
	}

	status, code := mapChapterError(err)
	if status == http.StatusInternalServerError {
		logger.Error("chapter handler error", err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, code, err.Error())
}

func mapChapterError(err error) (int, string) {
	var chErr *model.ChapterError
	if errors.As(err, &chErr) {
		switch chErr.Code {
		case model.ErrCodeChapterNotFound, model.ErrCodeNovelNotFound:
			return http.StatusNotFound, chErr.Code
		case model.ErrCodeNumberExists:
			return http.StatusConflict, chErr.Code
		case model.ErrCodeForbidden:
			return http.StatusForbidden, chErr.Code
		case model.ErrCodeInvalidCost:
			return http.StatusBadRequest, chErr.Code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
