package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/domains/novel/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

const maxCoverBytes = 5 << 20

// =====================================================
// NOVEL HANDLER
// =====================================================

type NovelHandler struct {
	novelService service.ServiceInterface
}

func NewNovelHandler(novelService service.ServiceInterface) *NovelHandler {
	return &NovelHandler{novelService: novelService}
}

// viewer trả nil khi request anonymous (OptionalAuthMiddleware)
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

// ListNovels godoc
// GET /api/novels
func (h *NovelHandler) ListNovels(c *gin.Context) {
	var req model.ListNovelsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.novelService.List(c.Request.Context(), req, viewer(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, resp.Novels, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// GetNovel godoc
// GET /api/novels/:slug
func (h *NovelHandler) GetNovel(c *gin.Context) {
	resp, err := h.novelService.GetBySlug(c.Request.Context(), c.Param("slug"), viewer(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// GetNovelByID godoc
// GET /api/novels/id/:id
func (h *NovelHandler) GetNovelByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid novel ID")
		return
	}

	resp, err := h.novelService.GetByID(c.Request.Context(), id, viewer(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ListByAuthor godoc
// GET /api/authors/:id/novels
func (h *NovelHandler) ListByAuthor(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid author ID")
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := h.novelService.ListByAuthor(c.Request.Context(), authorID, viewer(c), page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Novels, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// ListTags godoc
// GET /api/tags
func (h *NovelHandler) ListTags(c *gin.Context) {
	tags, err := h.novelService.ListTags(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

// =====================================================
// AUTHOR ENDPOINTS
// =====================================================

// CreateNovel godoc
// POST /api/novels
func (h *NovelHandler) CreateNovel(c *gin.Context) {
	// Step 1: Get actor
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	// Step 2: Bind request body
	var req model.CreateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	// Step 3: Call service
	resp, err := h.novelService.Create(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// UpdateNovel godoc
// PUT /api/novels/id/:id
func (h *NovelHandler) UpdateNovel(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid novel ID")
		return
	}

	var req model.UpdateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.novelService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// DeleteNovel godoc
// DELETE /api/novels/id/:id
func (h *NovelHandler) DeleteNovel(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid novel ID")
		return
	}

	if err := h.novelService.Delete(c.Request.Context(), actor, id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadCover godoc
// POST /api/novels/:slug/cover (multipart, field "cover")
func (h *NovelHandler) UploadCover(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	// Step 1: Read multipart file
	fileHeader, err := c.FormFile("cover")
	if err != nil {
		response.BadRequest(c, "cover file is required")
		return
	}
	if fileHeader.Size > maxCoverBytes {
		response.BadRequest(c, "cover must not exceed 5MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "cannot read cover file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxCoverBytes+1))
	if err != nil {
		response.BadRequest(c, "cannot read cover file")
		return
	}

	// Step 2: Call service
	resp, err := h.novelService.UploadCover(c.Request.Context(), actor, c.Param("slug"), data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// =====================================================
// ADMIN ENDPOINTS
// =====================================================

// SetFeatured godoc
// PATCH /api/admin/novels/:id/feature
func (h *NovelHandler) SetFeatured(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid novel ID")
		return
	}

	var req model.SetFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.novelService.SetFeatured(c.Request.Context(), id, req.Featured); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_featured": req.Featured})
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

	status, code := mapNovelError(err)
	if status == http.StatusInternalServerError {
		logger.Error("novel handler error", err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, code, err.Error())
}

// mapNovelError maps novel error to HTTP status code
// Slug trùng là lỗi input của client nên trả 400
func mapNovelError(err error) (int, string) {
	var novelErr *model.NovelError
	if errors.As(err, &novelErr) {
		switch novelErr.Code {
		case model.ErrCodeNovelNotFound:
			return http.StatusNotFound, novelErr.Code
		case model.ErrCodeSlugExists, model.ErrCodeInvalidImage, model.ErrCodeInvalidSlug:
			return http.StatusBadRequest, novelErr.Code
		case model.ErrCodeForbidden:
			return http.StatusForbidden, novelErr.Code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
