package service

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/coin/model"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/shared"
)

type ServiceInterface interface {
	// AddCoins cộng coin trong transaction riêng (admin grant, CLI)
	AddCoins(ctx context.Context, profileID uuid.UUID, amount int64, txType model.TransactionType, referenceID *uuid.UUID, description string) (*model.Transaction, error)
	AdminGrant(ctx context.Context, admin shared.Actor, req model.AddCoinsRequest) (*model.Transaction, error)

	UnlockChapter(ctx context.Context, actor shared.Actor, chapterID uuid.UUID) (*model.UnlockResponse, error)
	Donate(ctx context.Context, actor shared.Actor, req model.DonateRequest) (*model.DonationResponse, error)

	Balance(ctx context.Context, profileID uuid.UUID) (*model.BalanceResponse, error)
	History(ctx context.Context, profileID uuid.UUID, req model.HistoryRequest) (*model.HistoryResponse, error)
	Packages(ctx context.Context) []model.PackageResponse

	HasPurchased(ctx context.Context, profileID, chapterID uuid.UUID) (bool, error)
	PurchasedChapterIDs(ctx context.Context, profileID uuid.UUID, chapterIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// Notifier - notification service
type Notifier interface {
	Notify(ctx context.Context, input notifmodel.CreateInput) error
}
