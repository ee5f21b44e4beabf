package service

import (
	"context"

	"github.com/google/uuid"

	coinmodel "novelhub-backend/internal/domains/coin/model"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/domains/subscription/model"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/database"
)

type ServiceInterface interface {
	Subscribe(ctx context.Context, actor shared.Actor, authorID uuid.UUID) (*model.Subscription, error)
	Cancel(ctx context.Context, actor shared.Actor, authorID uuid.UUID) (*model.Subscription, error)
	ListMine(ctx context.Context, actor shared.Actor, page, limit int) (*model.ListResponse, error)
	ListSubscribers(ctx context.Context, actor shared.Actor, page, limit int) (*model.ListResponse, error)

	// HasActive dùng cho chapter access check
	HasActive(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error)

	GetTier(ctx context.Context, authorID uuid.UUID) (*model.AuthorTier, error)
	SetTier(ctx context.Context, actor shared.Actor, req model.SetTierRequest) (*model.AuthorTier, error)

	// RenewOrExpire - job định kỳ
	RenewOrExpire(ctx context.Context) (*model.RenewResult, error)
}

// Ledger - coin ledger, ghi sổ trong transaction của subscription
type Ledger interface {
	Transfer(ctx context.Context, q database.DBTX, t coinmodel.Transfer) (*coinmodel.Transaction, *coinmodel.Transaction, error)
}

type Notifier interface {
	Notify(ctx context.Context, input notifmodel.CreateInput) error
}
