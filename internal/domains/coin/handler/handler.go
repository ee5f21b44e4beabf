package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/coin/model"
	"novelhub-backend/internal/domains/coin/service"
	"novelhub-backend/internal/shared/middleware"
	"novelhub-backend/internal/shared/response"
	"novelhub-backend/pkg/logger"
)

type CoinHandler struct {
	coinService service.ServiceInterface
}

func NewCoinHandler(coinService service.ServiceInterface) *CoinHandler {
	return &CoinHandler{coinService: coinService}
}

// GetBalance godoc
// GET /api/coins/balance
func (h *CoinHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	resp, err := h.coinService.Balance(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// ListTransactions godoc
// GET /api/coins/transactions?type=&page=&limit=
func (h *CoinHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.coinService.History(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, resp.Transactions, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// ListPackages godoc
// GET /api/coins/packages
func (h *CoinHandler) ListPackages(c *gin.Context) {
	response.Success(c, http.StatusOK, h.coinService.Packages(c.Request.Context()))
}

// UnlockChapter godoc
// POST /api/coins/unlock/:chapter_id
func (h *CoinHandler) UnlockChapter(c *gin.Context) {
	// Step 1: Get actor
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	// Step 2: Parse chapter id
	chapterID, err := uuid.Parse(c.Param("chapter_id"))
	if err != nil {
		response.BadRequest(c, "Invalid chapter ID")
		return
	}

	// Step 3: Call service
	resp, err := h.coinService.UnlockChapter(c.Request.Context(), actor, chapterID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Donate godoc
// POST /api/coins/donate
func (h *CoinHandler) Donate(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.coinService.Donate(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// AddCoins godoc
// POST /api/coins/add (admin)
func (h *CoinHandler) AddCoins(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.AddCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tx, err := h.coinService.AdminGrant(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tx)
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

	status, code := mapCoinError(err)
	if status == http.StatusInternalServerError {
		logger.Error("coin handler error", err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, code, err.Error())
}

// mapCoinError - thiếu coin trả 402 Payment Required
func mapCoinError(err error) (int, string) {
	var coinErr *model.CoinError
	if errors.As(err, &coinErr) {
		switch coinErr.Code {
		case model.ErrCodeProfileNotFound, model.ErrCodeChapterNotFound:
			return http.StatusNotFound, coinErr.Code
		case model.ErrCodeInsufficientCoins:
			return http.StatusPaymentRequired, coinErr.Code
		case model.ErrCodeAlreadyPurchased:
			return http.StatusConflict, coinErr.Code
		case model.ErrCodeFreeChapter, model.ErrCodeSelfDonation, model.ErrCodeInvalidAmount, model.ErrCodeOwnChapter:
			return http.StatusBadRequest, coinErr.Code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
