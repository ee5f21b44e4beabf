package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"novelhub-backend/internal/domains/analytics/model"
)

type ServiceInterface interface {
	CreateReadingTime(ctx context.Context, profileID uuid.UUID) error
	AddReadingTime(ctx context.Context, profileID uuid.UUID, req model.HeartbeatRequest) (*model.ReadingTime, error)
	GetReadingTime(ctx context.Context, profileID uuid.UUID) (*model.ReadingTime, error)

	AuthorDashboard(ctx context.Context, authorID uuid.UUID) (*model.AuthorDashboard, error)
	ExportEarnings(ctx context.Context, authorID uuid.UUID, req model.ExportRequest) (*excelize.File, error)
	AdminDashboard(ctx context.Context) (*model.AdminDashboard, error)

	// FlushViews chuyển view counter Redis vào DB, trả về số novel được cập nhật
	FlushViews(ctx context.Context) (int, error)
}

// Counters - phần cache dùng cho view counter (*cache.RedisClient)
type Counters interface {
	GetAndDeleteCounters(ctx context.Context, pattern string) (map[string]int64, error)
	IncrementBy(ctx context.Context, key string, delta int64) (int64, error)
}
