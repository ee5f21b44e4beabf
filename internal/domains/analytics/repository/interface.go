package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/analytics/model"
)

type AnalyticsRepository interface {
	// Reading time
	CreateReadingTime(ctx context.Context, profileID uuid.UUID) error
	AddReadingTime(ctx context.Context, profileID uuid.UUID, seconds int64) (*model.ReadingTime, error)
	GetReadingTime(ctx context.Context, profileID uuid.UUID) (*model.ReadingTime, error)

	// Author dashboard
	AuthorNovels(ctx context.Context, authorID uuid.UUID) ([]model.NovelStats, error)
	AuthorEarnings(ctx context.Context, authorID uuid.UUID) ([]model.EarningsByType, error)
	ActiveSubscribers(ctx context.Context, authorID uuid.UUID) (int, error)
	RecentTransactions(ctx context.Context, profileID uuid.UUID, limit int) ([]model.TransactionRow, error)
	IncomeBetween(ctx context.Context, authorID uuid.UUID, from, to time.Time) ([]model.TransactionRow, error)

	// Admin dashboard
	PlatformTotals(ctx context.Context) (*model.PlatformTotals, error)
	RevenueByProvider(ctx context.Context) ([]model.Revenue, error)
	TopNovels(ctx context.Context, limit int) ([]model.NovelStats, error)

	// AddViews cộng view counter từ Redis vào novels.view_count trong một transaction
	AddViews(ctx context.Context, views map[uuid.UUID]int64) error
}
