package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"novelhub-backend/internal/domains/analytics/model"
	"novelhub-backend/internal/domains/analytics/service"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsHandler struct {
	analyticsService service.ServiceInterface
}

func NewAnalyticsHandler(analyticsService service.ServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Heartbeat godoc
// POST /api/analytics/reading-time
func (h *AnalyticsHandler) Heartbeat(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	rt, err := h.analyticsService.AddReadingTime(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rt)
}

// GetReadingTime godoc
// GET /api/analytics/reading-time
func (h *AnalyticsHandler) GetReadingTime(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	rt, err := h.analyticsService.GetReadingTime(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rt)
}

// AuthorDashboard godoc
// GET /api/analytics/author
func (h *AnalyticsHandler) AuthorDashboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	dash, err := h.analyticsService.AuthorDashboard(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dash)
}

// ExportEarnings godoc
// GET /api/analytics/author/earnings.xlsx?from=2026-01-01&to=2026-01-31
func (h *AnalyticsHandler) ExportEarnings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	f, err := h.analyticsService.ExportEarnings(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("earnings-%s.xlsx", time.Now().UTC().Format(model.DateLayout))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error("write earnings workbook", err)
	}
}

// AdminDashboard godoc
// GET /api/admin/analytics
func (h *AnalyticsHandler) AdminDashboard(c *gin.Context) {
	dash, err := h.analyticsService.AdminDashboard(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dash)
}

func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, verrs)
		return
	}

	var ae *model.AnalyticsError
	if errors.As(err, &ae) {
		response.ErrorResponse(c, http.StatusBadRequest, ae.Code, ae.Message)
		return
	}

	logger.Error("analytics handler error", err)
	response.InternalServerError(c, "Internal server error")
}
