package handler

import (
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	coinmodel "novelhub-backend/internal/domains/coin/model"
	"novelhub-backend/internal/domains/subscription/model"
	"novelhub-backend/internal/domains/subscription/service"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

type SubscriptionHandler struct {
	service service.ServiceInterface
}

func NewSubscriptionHandler(s service.ServiceInterface) *SubscriptionHandler {
	return &SubscriptionHandler{service: s}
}

func authorParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("author_id"))
	if err != nil {
		response.BadRequest(c, "Invalid author ID")
		return uuid.Nil, false
	}
	return id, true
}

// Subscribe godoc
// POST /api/subscriptions/:author_id
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	authorID, ok := authorParam(c)
	if !ok {
		return
	}

	sub, err := h.service.Subscribe(c.Request.Context(), actor, authorID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// Cancel godoc
// DELETE /api/subscriptions/:author_id
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	authorID, ok := authorParam(c)
	if !ok {
		return
	}

	sub, err := h.service.Cancel(c.Request.Context(), actor, authorID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// ListMine godoc
// GET /api/subscriptions
func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := h.service.ListMine(c.Request.Context(), actor, page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Subscriptions, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// ListSubscribers godoc
// GET /api/subscriptions/subscribers (author)
func (h *SubscriptionHandler) ListSubscribers(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := h.service.ListSubscribers(c.Request.Context(), actor, page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Subscriptions, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// GetTier godoc
// GET /api/authors/:id/tier
func (h *SubscriptionHandler) GetTier(c *gin.Context) {
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid author ID")
		return
	}

	tier, err := h.service.GetTier(c.Request.Context(), authorID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tier)
}

// SetTier godoc
// PUT /api/subscriptions/tier
func (h *SubscriptionHandler) SetTier(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.SetTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tier, err := h.service.SetTier(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tier)
}

func handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, verrs)
		return
	}

	status, code := mapSubscriptionError(err)
	if status == http.StatusInternalServerError {
		logger.Error("subscription handler error", err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, code, err.Error())
}

func mapSubscriptionError(err error) (int, string) {
	var coinErr *coinmodel.CoinError
	if errors.As(err, &coinErr) && coinErr.Code == coinmodel.ErrCodeInsufficientCoins {
		return http.StatusPaymentRequired, coinErr.Code
	}

	var subErr *model.SubscriptionError
	if errors.As(err, &subErr) {
		switch subErr.Code {
		case model.ErrCodeSubscriptionNotFound, model.ErrCodeAuthorNotFound:
			return http.StatusNotFound, subErr.Code
		case model.ErrCodeSelfSubscription, model.ErrCodeNotAccepting:
			return http.StatusBadRequest, subErr.Code
		case model.ErrCodeNotAuthor:
			return http.StatusForbidden, subErr.Code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
