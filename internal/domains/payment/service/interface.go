package service

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/config"
	coinmodel "novelhub-backend/internal/domains/coin/model"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/domains/payment/model"
	"novelhub-backend/pkg/database"
)

// =====================================================
// PAYMENT SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// PayPal
	CreateOrder(ctx context.Context, profileID uuid.UUID, req model.CreateOrderRequest) (*model.CreateOrderResponse, error)
	CaptureOrder(ctx context.Context, profileID uuid.UUID, req model.CaptureOrderRequest) (*model.CaptureOrderResponse, error)
	CancelOrder(ctx context.Context, profileID uuid.UUID, req model.CaptureOrderRequest) (*model.PaymentOrderResponse, error)
	ListOrders(ctx context.Context, profileID uuid.UUID, req model.ListOrdersRequest) (*model.ListOrdersResponse, error)

	// Ko-fi
	HandleKofiWebhook(ctx context.Context, data string) (*model.KofiResult, error)

	// Admin
	ListUnmatched(ctx context.Context, page, limit int) (*model.ListOrdersResponse, error)
	ClaimKofiOrder(ctx context.Context, orderID uuid.UUID, req model.ClaimRequest) (*model.PaymentOrderResponse, error)
}

// =====================================================
// DEPENDENCIES
// =====================================================

// CoinCrediter - *coinservice.Ledger; ghi có trong cùng transaction với order
type CoinCrediter interface {
	Post(ctx context.Context, q database.DBTX, e coinmodel.Entry) (*coinmodel.Transaction, error)
}

type PackageCatalog interface {
	Get(id string) (config.CoinPackage, error)
}

type Notifier interface {
	Notify(ctx context.Context, in notifmodel.CreateInput) error
}
