package gateway

import (
	"context"

	"novelhub-backend/internal/infrastructure/paypal"
)

// =====================================================
// GATEWAY INTERFACES
// =====================================================

// PayPalGateway - Orders v2; implementation thật là *paypal.Client
type PayPalGateway interface {
	// CreateOrder tạo order intent CAPTURE, trả về link approve cho người mua
	CreateOrder(ctx context.Context, in paypal.CreateOrderInput) (*paypal.Order, error)

	// CaptureOrder capture order đã được approve
	CaptureOrder(ctx context.Context, orderID string) (*paypal.Capture, error)
}

var _ PayPalGateway = (*paypal.Client)(nil)
