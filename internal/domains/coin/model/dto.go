package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTransferAmount giới hạn một lần donate/grant
const MaxTransferAmount = 1_000_000

// =====================================================
// REQUESTS
// =====================================================

// AddCoinsRequest - admin cộng coin cho user (POST /api/coins/add)
type AddCoinsRequest struct {
	ProfileID   *uuid.UUID `json:"profile_id"`
	Username    string     `json:"username"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
}

func (r AddCoinsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.When(r.ProfileID == nil, validation.Required.Error("profile_id or username is required"))),
		validation.Field(&r.Amount, validation.Required, validation.Min(int64(1)), validation.Max(int64(MaxTransferAmount))),
		validation.Field(&r.Description, validation.Length(0, 255)),
	)
}

type DonateRequest struct {
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
	Message   string `json:"message"`
}

func (r DonateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Recipient, validation.Required),
		validation.Field(&r.Amount, validation.Required, validation.Min(int64(1)), validation.Max(int64(MaxTransferAmount))),
		validation.Field(&r.Message, validation.Length(0, 500)),
	)
}

type HistoryRequest struct {
	Type  string `form:"type"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

func (r HistoryRequest) Validate() error {
	types := make([]interface{}, len(AllTransactionTypes))
	for i, t := range AllTransactionTypes {
		types[i] = string(t.(TransactionType))
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.In(types...)),
	)
}

// =====================================================
// RESPONSES
// =====================================================

type BalanceResponse struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Coins     int64     `json:"coins"`
}

type HistoryResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}

type UnlockResponse struct {
	ChapterID  uuid.UUID `json:"chapter_id"`
	CoinsSpent int64     `json:"coins_spent"`
	Balance    int64     `json:"balance"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

type DonationResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Recipient     string    `json:"recipient"`
	Amount        int64     `json:"amount"`
	Balance       int64     `json:"balance"`
}

type PackageResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Coins      int64           `json:"coins"`
	Bonus      int64           `json:"bonus"`
	TotalCoins int64           `json:"total_coins"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}
