package repository

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/coin/model"
	pkgdb "novelhub-backend/pkg/database"
)

// Repository - các method nhận q chạy trong transaction của service
type Repository interface {
	// LockBalance SELECT ... FOR UPDATE trên profiles.coins
	LockBalance(ctx context.Context, q pkgdb.DBTX, profileID uuid.UUID) (int64, error)
	SetBalance(ctx context.Context, q pkgdb.DBTX, profileID uuid.UUID, balance int64) error
	InsertTransaction(ctx context.Context, q pkgdb.DBTX, tx *model.Transaction) error
	InsertPurchase(ctx context.Context, q pkgdb.DBTX, p *model.ChapterPurchase) error

	GetBalance(ctx context.Context, profileID uuid.UUID) (int64, error)
	ListTransactions(ctx context.Context, profileID uuid.UUID, txType string, limit, offset int) ([]model.Transaction, int, error)
	HasPurchased(ctx context.Context, profileID, chapterID uuid.UUID) (bool, error)
	PurchasedChapterIDs(ctx context.Context, profileID uuid.UUID, chapterIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	GetChapterPrice(ctx context.Context, chapterID uuid.UUID) (*model.ChapterPrice, error)
	FindProfileByUsername(ctx context.Context, username string) (*model.ProfileRef, error)
	FindProfileByID(ctx context.Context, id uuid.UUID) (*model.ProfileRef, error)
}
