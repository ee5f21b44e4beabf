package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// DefaultPeriod - một kỳ subscription
const DefaultPeriod = 30 * 24 * time.Hour

type Subscription struct {
	ID             uuid.UUID `json:"id"`
	SubscriberID   uuid.UUID `json:"subscriber_id"`
	SubscriberName string    `json:"subscriber_username,omitempty"`
	AuthorID       uuid.UUID `json:"author_id"`
	AuthorName     string    `json:"author_username,omitempty"`
	Tier           string    `json:"tier"`
	CoinsPerPeriod int64     `json:"coins_per_period"`
	Status         Status    `json:"status"`
	StartedAt      time.Time `json:"started_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	AutoRenew      bool      `json:"auto_renew"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsActiveAt - còn quyền đọc tại thời điểm t (cancelled vẫn đọc được tới hết hạn)
func (s *Subscription) IsActiveAt(t time.Time) bool {
	if s.Status != StatusActive && s.Status != StatusCancelled {
		return false
	}
	return t.Before(s.ExpiresAt)
}

// Extend gia hạn thêm một kỳ: cộng nối nếu còn hạn, bắt đầu lại nếu đã hết
func (s *Subscription) Extend(now time.Time, period time.Duration) {
	if s.IsActiveAt(now) {
		s.ExpiresAt = s.ExpiresAt.Add(period)
	} else {
		s.StartedAt = now
		s.ExpiresAt = now.Add(period)
	}
	s.Status = StatusActive
	s.AutoRenew = true
	s.UpdatedAt = now
}

// AuthorTier là cấu hình subscription của tác giả, lưu trên profiles
type AuthorTier struct {
	AuthorID uuid.UUID `json:"author_id"`
	Username string    `json:"username"`
	Role     string    `json:"-"`
	Name     string    `json:"name"`
	Price    int64     `json:"price"`
}

// Accepting - tác giả đã bật subscription
func (t *AuthorTier) Accepting() bool {
	return t.Price > 0 && (t.Role == "author" || t.Role == "admin")
}
