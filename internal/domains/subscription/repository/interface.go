package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/subscription/model"
	pkgdb "novelhub-backend/pkg/database"
)

type Repository interface {
	GetAuthorTier(ctx context.Context, authorID uuid.UUID) (*model.AuthorTier, error)
	SetAuthorTier(ctx context.Context, authorID uuid.UUID, name string, price int64) error

	// GetForUpdate khóa row (subscriber, author); ErrSubscriptionNotFound nếu chưa có
	GetForUpdate(ctx context.Context, q pkgdb.DBTX, subscriberID, authorID uuid.UUID) (*model.Subscription, error)
	Upsert(ctx context.Context, q pkgdb.DBTX, s *model.Subscription) error
	UpdateStatus(ctx context.Context, q pkgdb.DBTX, id uuid.UUID, status model.Status, autoRenew bool) error

	Get(ctx context.Context, subscriberID, authorID uuid.UUID) (*model.Subscription, error)
	ListBySubscriber(ctx context.Context, subscriberID uuid.UUID, limit, offset int) ([]model.Subscription, int, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]model.Subscription, int, error)
	HasActive(ctx context.Context, subscriberID, authorID uuid.UUID, at time.Time) (bool, error)

	// ListDue trả subscription active/cancelled đã tới hạn
	ListDue(ctx context.Context, at time.Time, limit int) ([]model.Subscription, error)
}
