package repository

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/payment/model"
	pkgdb "novelhub-backend/pkg/database"
)

// PaymentRepository - các method nhận q chạy trong transaction của service
type PaymentRepository interface {
	// Create insert order; trùng (provider, provider_order_id) trả ErrDuplicateOrder
	Create(ctx context.Context, q pkgdb.DBTX, o *model.PaymentOrder) error
	// LockByID SELECT ... FOR UPDATE, chống capture song song
	LockByID(ctx context.Context, q pkgdb.DBTX, id uuid.UUID) (*model.PaymentOrder, error)
	// Update ghi status, profile, coins, payer_email, note
	Update(ctx context.Context, q pkgdb.DBTX, o *model.PaymentOrder) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentOrder, error)
	GetByProviderOrderID(ctx context.Context, provider model.Provider, providerOrderID string) (*model.PaymentOrder, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID, status string, limit, offset int) ([]model.PaymentOrder, int, error)
	ListByStatus(ctx context.Context, status model.Status, limit, offset int) ([]model.PaymentOrder, int, error)

	// Profile lookup cho Ko-fi
	FindProfileByEmail(ctx context.Context, email string) (*model.ProfileRef, error)
	FindProfileByKofiName(ctx context.Context, name string) (*model.ProfileRef, error)
	FindProfileByID(ctx context.Context, id uuid.UUID) (*model.ProfileRef, error)
}
