package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// REQUEST DTOs
// =====================================================

type CreateOrderRequest struct {
	PackageID string `json:"package_id"`
}

func (r CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PackageID, validation.Required, validation.Length(1, 64)),
	)
}

// CaptureOrderRequest - OrderID là id phía PayPal (token trên return URL)
type CaptureOrderRequest struct {
	OrderID string `json:"order_id"`
}

func (r CaptureOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderID, validation.Required, validation.Length(1, 64)),
	)
}

type ListOrdersRequest struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

func (r ListOrdersRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In(statusStrings()...)),
	)
}

func statusStrings() []interface{} {
	out := make([]interface{}, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		out = append(out, string(s.(Status)))
	}
	return out
}

// ClaimRequest - admin gán order Ko-fi unmatched; Coins nil thì giữ số coin đã tính
type ClaimRequest struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Coins     *int64    `json:"coins"`
}

func (r ClaimRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProfileID, validation.By(requiredUUID)),
		validation.Field(&r.Coins, validation.NilOrNotEmpty, validation.Min(int64(1))),
	)
}

// uuid.UUID là array nên validation.Required không bắt được uuid.Nil
func requiredUUID(value interface{}) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type CreateOrderResponse struct {
	OrderID         uuid.UUID       `json:"order_id"`
	ProviderOrderID string          `json:"provider_order_id"`
	ApproveURL      string          `json:"approve_url"`
	PackageID       string          `json:"package_id"`
	Coins           int64           `json:"coins"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

type CaptureOrderResponse struct {
	OrderID    uuid.UUID `json:"order_id"`
	Status     Status    `json:"status"`
	CoinsAdded int64     `json:"coins_added"`
	Balance    int64     `json:"balance"`
}

type PaymentOrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProfileID       *uuid.UUID      `json:"profile_id,omitempty"`
	Provider        Provider        `json:"provider"`
	ProviderOrderID string          `json:"provider_order_id"`
	PackageID       string          `json:"package_id,omitempty"`
	Coins           int64           `json:"coins"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          Status          `json:"status"`
	PayerEmail      *string         `json:"payer_email,omitempty"`
	Note            string          `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (o *PaymentOrder) ToResponse() PaymentOrderResponse {
	return PaymentOrderResponse{
		ID:              o.ID,
		ProfileID:       o.ProfileID,
		Provider:        o.Provider,
		ProviderOrderID: o.ProviderOrderID,
		PackageID:       o.PackageID,
		Coins:           o.Coins,
		Amount:          o.Amount,
		Currency:        o.Currency,
		Status:          o.Status,
		PayerEmail:      o.PayerEmail,
		Note:            o.Note,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type ListOrdersResponse struct {
	Orders []PaymentOrderResponse `json:"orders"`
	Page   int                    `json:"page"`
	Limit  int                    `json:"limit"`
	Total  int                    `json:"total"`
}

// KofiResult - kết quả xử lý webhook, handler luôn trả 200 khi không có lỗi
type KofiResult struct {
	OrderID   uuid.UUID `json:"order_id"`
	Status    Status    `json:"status"`
	Coins     int64     `json:"coins"`
	Duplicate bool      `json:"duplicate"`
}
