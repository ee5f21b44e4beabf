package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/notification/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// CreateForNovelFollowers insert một notification cho mỗi người bookmark novel
	CreateForNovelFollowers(ctx context.Context, novelID uuid.UUID, exclude uuid.UUID, in model.CreateInput) (int64, error)

	List(ctx context.Context, profileID uuid.UUID, unreadOnly bool, limit, offset int) ([]model.Notification, int, error)
	CountUnread(ctx context.Context, profileID uuid.UUID) (int, error)

	MarkRead(ctx context.Context, profileID uuid.UUID, ids []uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error)
	Delete(ctx context.Context, profileID, id uuid.UUID) error
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}
