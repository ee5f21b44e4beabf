package mock

import (
	"context"
	"fmt"
	"sync"

	"novelhub-backend/internal/domains/payment/gateway"
	"novelhub-backend/internal/infrastructure/paypal"
)

// =====================================================
// MOCK PAYPAL GATEWAY (dev khi chưa có credentials, tests)
// =====================================================

type mockOrder struct {
	in       paypal.CreateOrderInput
	approved bool
	captured bool
}

type MockPayPalGateway struct {
	mu         sync.Mutex
	approveURL string
	seq        int
	orders     map[string]*mockOrder

	shouldFailCreate  bool
	shouldFailCapture bool
	autoApprove       bool
}

// NewMockPayPalGateway - autoApprove=true thì mọi order coi như người mua đã approve
func NewMockPayPalGateway(approveURL string, autoApprove bool) *MockPayPalGateway {
	return &MockPayPalGateway{
		approveURL:  approveURL,
		orders:      make(map[string]*mockOrder),
		autoApprove: autoApprove,
	}
}

var _ gateway.PayPalGateway = (*MockPayPalGateway)(nil)

func (m *MockPayPalGateway) CreateOrder(_ context.Context, in paypal.CreateOrderInput) (*paypal.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shouldFailCreate {
		return nil, fmt.Errorf("mock order creation failed")
	}

	m.seq++
	id := fmt.Sprintf("MOCK-%06d", m.seq)
	m.orders[id] = &mockOrder{in: in, approved: m.autoApprove}

	return &paypal.Order{
		ID:         id,
		Status:     "CREATED",
		ApproveURL: fmt.Sprintf("%s?token=%s", m.approveURL, id),
	}, nil
}

func (m *MockPayPalGateway) CaptureOrder(_ context.Context, orderID string) (*paypal.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shouldFailCapture {
		return nil, fmt.Errorf("mock capture failed")
	}

	o, ok := m.orders[orderID]
	if !ok {
		return nil, &paypal.APIError{StatusCode: 404, Name: "RESOURCE_NOT_FOUND", Message: "order not found"}
	}
	if o.captured {
		return nil, paypal.ErrAlreadyCaptured
	}
	if !o.approved {
		return nil, paypal.ErrOrderNotApproved
	}

	o.captured = true
	return &paypal.Capture{
		OrderID:     orderID,
		CaptureID:   "CAP-" + orderID,
		Status:      "COMPLETED",
		Amount:      o.in.Amount,
		Currency:    o.in.Currency,
		ReferenceID: o.in.ReferenceID,
		PayerEmail:  "buyer@example.com",
	}, nil
}

// Approve giả lập người mua bấm approve trên trang PayPal
func (m *MockPayPalGateway) Approve(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.approved = true
	}
}

// SetFailCreate sets whether order creation should fail
func (m *MockPayPalGateway) SetFailCreate(shouldFail bool) {
	m.mu.Lock()
	m.shouldFailCreate = shouldFail
	m.mu.Unlock()
}

// SetFailCapture sets whether capture should fail
func (m *MockPayPalGateway) SetFailCapture(shouldFail bool) {
	m.mu.Lock()
	m.shouldFailCapture = shouldFail
	m.mu.Unlock()
}
