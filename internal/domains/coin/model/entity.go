package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxPurchase           TransactionType = "purchase"
	TxChapterUnlock      TransactionType = "chapter_unlock"
	TxChapterIncome      TransactionType = "chapter_income"
	TxDonationSent       TransactionType = "donation_sent"
	TxDonationReceived   TransactionType = "donation_received"
	TxSubscription       TransactionType = "subscription"
	TxSubscriptionIncome TransactionType = "subscription_income"
	TxAdminGrant         TransactionType = "admin_grant"
	TxKofi               TransactionType = "kofi"
)

var AllTransactionTypes = []interface{}{
	TxPurchase, TxChapterUnlock, TxChapterIncome, TxDonationSent, TxDonationReceived,
	TxSubscription, TxSubscriptionIncome, TxAdminGrant, TxKofi,
}

// Transaction là một dòng trong sổ cái coin; Amount có dấu
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	ProfileID      uuid.UUID       `json:"profile_id"`
	Amount         int64           `json:"amount"`
	Type           TransactionType `json:"type"`
	ReferenceID    *uuid.UUID      `json:"reference_id,omitempty"`
	CounterpartyID *uuid.UUID      `json:"counterparty_id,omitempty"`
	Description    string          `json:"description"`
	BalanceAfter   int64           `json:"balance_after"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ChapterPurchase struct {
	ProfileID uuid.UUID
	ChapterID uuid.UUID
	Coins     int64
	CreatedAt time.Time
}

// Entry là một bút toán cần ghi vào sổ cái
type Entry struct {
	ProfileID      uuid.UUID
	Amount         int64
	Type           TransactionType
	ReferenceID    *uuid.UUID
	CounterpartyID *uuid.UUID
	Description    string
}

// Transfer chuyển coin giữa hai profile.
// Credit có thể nhỏ hơn Amount (phần chia cho tác giả); Credit = 0 thì chỉ trừ người gửi.
type Transfer struct {
	From        uuid.UUID
	To          uuid.UUID
	Amount      int64
	Credit      int64
	DebitType   TransactionType
	CreditType  TransactionType
	ReferenceID *uuid.UUID
	Description string
}

// ChapterPrice là thông tin cần để mở khóa chapter
type ChapterPrice struct {
	ChapterID     uuid.UUID
	NovelID       uuid.UUID
	AuthorID      uuid.UUID
	NovelSlug     string
	ChapterNumber int
	Title         string
	Coins         int64
}

// ProfileRef - thông tin tối thiểu của người nhận donation
type ProfileRef struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	IsActive    bool
}

// ApplyDelta tính số dư mới; số dư không bao giờ âm
func ApplyDelta(balance, delta int64) (int64, error) {
	if delta > 0 && balance > math.MaxInt64-delta {
		return balance, ErrBalanceOverflow
	}
	next := balance + delta
	if next < 0 {
		return balance, ErrInsufficientCoins
	}
	return next, nil
}

// AuthorShare phần coin tác giả nhận, làm tròn xuống
func AuthorShare(coins int64, percent int) int64 {
	if percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return coins
	}
	return coins * int64(percent) / 100
}
