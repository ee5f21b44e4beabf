package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/notification/model"
)

// NotificationService - producer (coin, forum, chapter job) gọi Notify,
// handler gọi các method đọc/đánh dấu
type NotificationService interface {
	Notify(ctx context.Context, in model.CreateInput) error
	NotifyNovelFollowers(ctx context.Context, novelID, exclude uuid.UUID, in model.CreateInput) (int64, error)

	List(ctx context.Context, profileID uuid.UUID, req model.ListRequest) (*model.ListResponse, error)
	UnreadCount(ctx context.Context, profileID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, profileID uuid.UUID, req model.MarkReadRequest) (int64, error)
	MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error)
	Delete(ctx context.Context, profileID, id uuid.UUID) error

	CleanupOldReadNotifications(ctx context.Context, olderThan time.Duration) (int64, error)
}
