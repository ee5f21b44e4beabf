package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxHeartbeatSeconds - client gửi heartbeat mỗi vài phút, lớn hơn là gian lận
const MaxHeartbeatSeconds = 300

// IncomeTypes là các loại coin transaction tính vào thu nhập của tác giả
var IncomeTypes = []string{"chapter_income", "donation_received", "subscription_income"}

type ReadingTime struct {
	ProfileID uuid.UUID `db:"profile_id" json:"profile_id"`
	Seconds   int64     `db:"seconds" json:"seconds"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type NovelStats struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Title         string     `db:"title" json:"title"`
	Slug          string     `db:"slug" json:"slug"`
	Views         int64      `db:"view_count" json:"views"`
	Bookmarks     int        `db:"bookmark_count" json:"bookmarks"`
	Chapters      int        `db:"chapter_count" json:"chapters"`
	LastChapterAt *time.Time `db:"last_chapter_at" json:"last_chapter_at,omitempty"`
}

type EarningsByType struct {
	Type  string `db:"type" json:"type"`
	Coins int64  `db:"coins" json:"coins"`
}

type TransactionRow struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Type         string    `db:"type" json:"type"`
	Amount       int64     `db:"amount" json:"amount"`
	Description  string    `db:"description" json:"description"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type AuthorDashboard struct {
	Novels             []NovelStats     `json:"novels"`
	TotalViews         int64            `json:"total_views"`
	TotalBookmarks     int64            `json:"total_bookmarks"`
	Earnings           []EarningsByType `json:"earnings"`
	TotalEarnings      int64            `json:"total_earnings"`
	Subscribers        int              `json:"subscribers"`
	RecentTransactions []TransactionRow `json:"recent_transactions"`
}

// PlatformTotals - các counter toàn hệ thống
type PlatformTotals struct {
	Users               int64 `db:"users" json:"users"`
	Authors             int64 `db:"authors" json:"authors"`
	Novels              int64 `db:"novels" json:"novels"`
	Chapters            int64 `db:"chapters" json:"chapters"`
	CoinsInCirculation  int64 `db:"coins_in_circulation" json:"coins_in_circulation"`
	ActiveSubscriptions int64 `db:"active_subscriptions" json:"active_subscriptions"`
}

type Revenue struct {
	Provider string          `db:"provider" json:"provider"`
	Currency string          `db:"currency" json:"currency"`
	Amount   decimal.Decimal `db:"amount" json:"amount"`
	Orders   int64           `db:"orders" json:"orders"`
}

type AdminDashboard struct {
	PlatformTotals
	Revenue   []Revenue    `json:"revenue"`
	TopNovels []NovelStats `json:"top_novels"`
}
