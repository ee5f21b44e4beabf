package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PROVIDERS & STATUS
// =====================================================

type Provider string

const (
	ProviderPayPal Provider = "paypal"
	ProviderKofi   Provider = "kofi"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusApproved  Status = "approved"
	StatusCaptured  Status = "captured"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	// StatusUnmatched: tiền Ko-fi đã nhận nhưng chưa tìm được profile
	StatusUnmatched Status = "unmatched"
)

var AllStatuses = []interface{}{
	StatusCreated, StatusApproved, StatusCaptured, StatusFailed, StatusCancelled, StatusUnmatched,
}

// PaymentOrder là một lần nạp coin qua provider bên ngoài
type PaymentOrder struct {
	ID              uuid.UUID       `json:"id"`
	ProfileID       *uuid.UUID      `json:"profile_id,omitempty"`
	Provider        Provider        `json:"provider"`
	ProviderOrderID string          `json:"provider_order_id"`
	PackageID       string          `json:"package_id"`
	Coins           int64           `json:"coins"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          Status          `json:"status"`
	PayerEmail      *string         `json:"payer_email,omitempty"`
	Note            string          `json:"note"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OwnedBy - order không có profile (Ko-fi unmatched) không thuộc về ai
func (o *PaymentOrder) OwnedBy(profileID uuid.UUID) bool {
	return o.ProfileID != nil && *o.ProfileID == profileID
}

// ProfileRef là thông tin tối thiểu để ghi có coin và gửi thông báo
type ProfileRef struct {
	ID       uuid.UUID
	Username string
	Email    string
}

// CoinsForAmount quy đổi số tiền Ko-fi ra coin, làm tròn xuống
func CoinsForAmount(amount decimal.Decimal, coinsPerUnit int) int64 {
	if !amount.IsPositive() || coinsPerUnit <= 0 {
		return 0
	}
	return amount.Mul(decimal.NewFromInt(int64(coinsPerUnit))).Floor().IntPart()
}
