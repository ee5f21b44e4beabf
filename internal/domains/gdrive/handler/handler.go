package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/gdrive/model"
	"novelhub-backend/internal/domains/gdrive/service"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

type DriveHandler struct {
	driveService service.ServiceInterface
	frontendURL  string
}

// NewDriveHandler - frontendURL là nơi callback redirect về sau khi connect
func NewDriveHandler(driveService service.ServiceInterface, frontendURL string) *DriveHandler {
	return &DriveHandler{driveService: driveService, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// =====================================================
// CONNECT
// =====================================================

// AuthURL godoc
// GET /api/gdrive/auth-url
func (h *DriveHandler) AuthURL(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	resp, err := h.driveService.AuthURL(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Callback godoc
// GET /api/gdrive/callback?code=&state=
// Google redirect browser về đây nên không có bearer token; user lấy từ state.
func (h *DriveHandler) Callback(c *gin.Context) {
	var req model.CallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid callback parameters")
		return
	}

	_, err := h.driveService.Callback(c.Request.Context(), req)
	result := "connected"
	if err != nil {
		var de *model.DriveError
		if !errors.As(err, &de) {
			logger.Error("gdrive callback failed", err)
		}
		result = "error"
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/settings/drive?"+url.Values{"drive": {result}}.Encode())
}

// Status godoc
// GET /api/gdrive/status
func (h *DriveHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	status, err := h.driveService.Status(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// Disconnect godoc
// DELETE /api/gdrive/connection
func (h *DriveHandler) Disconnect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	if err := h.driveService.Disconnect(c.Request.Context(), userID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Google Drive disconnected"})
}

// =====================================================
// FILES & IMPORT
// =====================================================

// ListFiles godoc
// GET /api/gdrive/files?folder_id=
func (h *DriveHandler) ListFiles(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.ListFilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	files, err := h.driveService.ListFiles(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, files)
}

// StartImport godoc
// POST /api/gdrive/import
func (h *DriveHandler) StartImport(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.StartImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	job, err := h.driveService.StartImport(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, job)
}

// ListJobs godoc
// GET /api/gdrive/jobs
func (h *DriveHandler) ListJobs(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	jobs, err := h.driveService.ListJobs(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, jobs)
}

// GetJob godoc
// GET /api/gdrive/jobs/:id
func (h *DriveHandler) GetJob(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.driveService.GetJob(c.Request.Context(), actor, jobID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, job)
}

// =====================================================
// ERROR MAPPING
// =====================================================

func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, verrs)
		return
	}

	var de *model.DriveError
	if !errors.As(err, &de) {
		logger.Error("gdrive handler error", err)
		response.InternalServerError(c, "Internal server error")
		return
	}

	switch de.Code {
	case model.ErrCodeJobNotFound, model.ErrCodeNovelNotFound:
		response.NotFound(c, de.Message)
	case model.ErrCodeForbidden:
		response.Forbidden(c, de.Message)
	case model.ErrCodeNotConnected, model.ErrCodeInvalidState:
		response.ErrorResponse(c, http.StatusBadRequest, de.Code, de.Message)
	case model.ErrCodeDrive, model.ErrCodeExchange:
		logger.Error("google drive upstream error", err)
		response.ErrorResponse(c, http.StatusBadGateway, de.Code, de.Message)
	default:
		response.ErrorResponse(c, http.StatusBadRequest, de.Code, de.Message)
	}
}
