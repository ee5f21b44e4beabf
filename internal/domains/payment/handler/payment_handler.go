package handler

import (
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/payment/model"
	"novelhub-backend/internal/domains/payment/service"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

type PaymentHandler struct {
	paymentService service.ServiceInterface
}

func NewPaymentHandler(paymentService service.ServiceInterface) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// =====================================================
// PAYPAL
// =====================================================

// CreateOrder godoc
// POST /api/payments/create-order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	// Step 1: Get user
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	// Step 2: Bind body
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	// Step 3: Call service
	resp, err := h.paymentService.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// CaptureOrder godoc
// POST /api/payments/capture-order
func (h *PaymentHandler) CaptureOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.paymentService.CaptureOrder(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// CancelOrder godoc
// POST /api/payments/cancel-order
func (h *PaymentHandler) CancelOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.paymentService.CancelOrder(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ListOrders godoc
// GET /api/payments/orders?status=&page=&limit=
func (h *PaymentHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.paymentService.ListOrders(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Orders, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// =====================================================
// WEBHOOK
// =====================================================

// KofiWebhook godoc
// POST /api/webhooks/kofi (application/x-www-form-urlencoded, field "data")
func (h *PaymentHandler) KofiWebhook(c *gin.Context) {
	// Step 1: Ko-fi gửi JSON trong form field "data"
	data := c.PostForm("data")
	if data == "" {
		response.BadRequest(c, "Missing data field")
		return
	}

	// Step 2: Process. Lỗi 5xx để Ko-fi retry; duplicate / unmatched vẫn 200
	result, err := h.paymentService.HandleKofiWebhook(c.Request.Context(), data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// =====================================================
// ADMIN
// =====================================================

// ListUnmatched godoc
// GET /api/admin/payments/unmatched?page=&limit=
func (h *PaymentHandler) ListUnmatched(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.paymentService.ListUnmatched(c.Request.Context(), page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Orders, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// ClaimKofiOrder godoc
// POST /api/admin/payments/:id/claim
func (h *PaymentHandler) ClaimKofiOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req model.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.paymentService.ClaimKofiOrder(c.Request.Context(), orderID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
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

	status, code := mapPaymentError(err)
	if status == http.StatusInternalServerError {
		logger.Error("payment handler error", err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	if status == http.StatusBadGateway {
		response.ErrorResponse(c, status, code, "Payment provider unavailable")
		return
	}

	var payErr *model.PaymentError
	errors.As(err, &payErr)
	response.ErrorResponse(c, status, code, payErr.Message)
}

func mapPaymentError(err error) (int, string) {
	var payErr *model.PaymentError
	if errors.As(err, &payErr) {
		switch payErr.Code {
		case model.ErrCodeOrderNotFound, model.ErrCodePackageNotFound, model.ErrCodeProfileNotFound:
			return http.StatusNotFound, payErr.Code
		case model.ErrCodeAlreadyCaptured, model.ErrCodeInvalidTransition:
			return http.StatusConflict, payErr.Code
		case model.ErrCodeNotApproved, model.ErrCodeInvalidPayload, model.ErrCodeAmountMismatch, model.ErrCodeProviderNotAllowed:
			return http.StatusBadRequest, payErr.Code
		case model.ErrCodeInvalidToken:
			return http.StatusUnauthorized, payErr.Code
		case model.ErrCodeGateway:
			return http.StatusBadGateway, payErr.Code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
