package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"novelhub-backend/internal/config"
	coinmodel "novelhub-backend/internal/domains/coin/model"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/domains/payment/gateway"
	"novelhub-backend/internal/domains/payment/model"
	"novelhub-backend/internal/domains/payment/repository"
	"novelhub-backend/internal/infrastructure/paypal"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/database"
	"novelhub-backend/pkg/logger"
)

// =====================================================
// PAYMENT SERVICE IMPLEMENTATION
// =====================================================
type paymentService struct {
	repo     repository.PaymentRepository
	tx       database.Transactor
	paypal   gateway.PayPalGateway
	ledger   CoinCrediter
	catalog  PackageCatalog
	notifier Notifier
	currency string
	kofi     config.KoFiConfig
}

func NewPaymentService(
	repo repository.PaymentRepository,
	tx database.Transactor,
	paypalGateway gateway.PayPalGateway,
	ledger CoinCrediter,
	catalog PackageCatalog,
	notifier Notifier,
	currency string,
	kofi config.KoFiConfig,
) ServiceInterface {
	return &paymentService{
		repo:     repo,
		tx:       tx,
		paypal:   paypalGateway,
		ledger:   ledger,
		catalog:  catalog,
		notifier: notifier,
		currency: strings.ToUpper(currency),
		kofi:     kofi,
	}
}

// =====================================================
// CREATE ORDER
// =====================================================

// CreateOrder tạo order PayPal cho một gói coin và lưu ở trạng thái created
func (s *paymentService) CreateOrder(ctx context.Context, profileID uuid.UUID, req model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Resolve package, giá lấy từ catalog chứ không tin client
	pkg, err := s.catalog.Get(req.PackageID)
	if err != nil {
		return nil, model.NewPackageNotFoundError(req.PackageID)
	}

	// Step 3: Tạo order phía PayPal, reference_id là id nội bộ
	orderID := uuid.New()
	ppOrder, err := s.paypal.CreateOrder(ctx, paypal.CreateOrderInput{
		ReferenceID: orderID.String(),
		Description: fmt.Sprintf("%s (%d coins)", pkg.Name, pkg.TotalCoins()),
		Amount:      pkg.Price,
		Currency:    s.currency,
	})
	if err != nil {
		logger.ErrorWithFields("paypal create order failed", err, map[string]interface{}{
			"profile_id": profileID,
			"package_id": pkg.ID,
		})
		return nil, model.NewGatewayError(err)
	}

	// Step 4: Persist
	order := &model.PaymentOrder{
		ID:              orderID,
		ProfileID:       &profileID,
		Provider:        model.ProviderPayPal,
		ProviderOrderID: ppOrder.ID,
		PackageID:       pkg.ID,
		Coins:           pkg.TotalCoins(),
		Amount:          pkg.Price,
		Currency:        s.currency,
		Status:          model.StatusCreated,
	}
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		return s.repo.Create(ctx, q, order)
	})
	if err != nil {
		return nil, fmt.Errorf("save payment order: %w", err)
	}

	logger.Info("paypal order created", map[string]interface{}{
		"order_id":          order.ID,
		"provider_order_id": order.ProviderOrderID,
		"profile_id":        profileID,
		"coins":             order.Coins,
	})

	return &model.CreateOrderResponse{
		OrderID:         order.ID,
		ProviderOrderID: order.ProviderOrderID,
		ApproveURL:      ppOrder.ApproveURL,
		PackageID:       pkg.ID,
		Coins:           order.Coins,
		Amount:          order.Amount,
		Currency:        order.Currency,
	}, nil
}

// =====================================================
// CAPTURE ORDER
// =====================================================

// CaptureOrder capture qua PayPal rồi ghi có coin trong cùng transaction với việc chuyển status
func (s *paymentService) CaptureOrder(ctx context.Context, profileID uuid.UUID, req model.CaptureOrderRequest) (*model.CaptureOrderResponse, error) {
	// Step 1: Validate + load order
	if err := req.Validate(); err != nil {
		return nil, err
	}
	order, err := s.ownedPayPalOrder(ctx, profileID, req.OrderID)
	if err != nil {
		return nil, err
	}

	// Step 2: Kiểm tra lifecycle trước khi gọi PayPal
	if _, err := model.NextStatus(ctx, order.Status, model.EventCapture); err != nil {
		return nil, transitionError(err, order.Status, model.EventCapture)
	}

	// Step 3: Capture phía PayPal
	capture, err := s.paypal.CaptureOrder(ctx, order.ProviderOrderID)
	switch {
	case errors.Is(err, paypal.ErrOrderNotApproved):
		return nil, model.NewNotApprovedError()
	case errors.Is(err, paypal.ErrAlreadyCaptured):
		// PayPal đã capture nhưng lần trước chưa kịp ghi có
		logger.Warn("paypal order already captured remotely, crediting", map[string]interface{}{
			"order_id":          order.ID,
			"provider_order_id": order.ProviderOrderID,
		})
		capture = &paypal.Capture{
			OrderID:  order.ProviderOrderID,
			Status:   "COMPLETED",
			Amount:   order.Amount,
			Currency: order.Currency,
		}
	case err != nil:
		logger.ErrorWithFields("paypal capture failed", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return nil, model.NewGatewayError(err)
	}

	// Step 4: Capture chưa hoàn tất
	switch capture.Status {
	case "COMPLETED":
	case "DECLINED", "FAILED", "VOIDED":
		if _, ferr := s.transition(ctx, order.ID, model.EventFail, func(_ database.DBTX, o *model.PaymentOrder) error {
			o.Note = "capture " + strings.ToLower(capture.Status)
			return nil
		}); ferr != nil {
			logger.Error("mark payment order failed", ferr)
		}
		return nil, model.NewGatewayError(fmt.Errorf("capture status %s", capture.Status))
	default:
		// PENDING: PayPal đang review, giữ order ở approved để capture lại sau
		if order.Status == model.StatusApproved {
			return &model.CaptureOrderResponse{OrderID: order.ID, Status: order.Status}, nil
		}
		o, err := s.transition(ctx, order.ID, model.EventApprove, nil)
		if err != nil {
			return nil, err
		}
		return &model.CaptureOrderResponse{OrderID: o.ID, Status: o.Status}, nil
	}

	// Step 5: Số tiền phải khớp với order đã tạo
	if !capture.Amount.Equal(order.Amount) || !strings.EqualFold(capture.Currency, order.Currency) {
		logger.Warn("paypal capture amount mismatch", map[string]interface{}{
			"order_id":          order.ID,
			"expected":          order.Amount.String() + " " + order.Currency,
			"captured":          capture.Amount.String() + " " + capture.Currency,
			"paypal_capture_id": capture.CaptureID,
		})
		if _, ferr := s.transition(ctx, order.ID, model.EventFail, func(_ database.DBTX, o *model.PaymentOrder) error {
			o.Note = fmt.Sprintf("amount mismatch: captured %s %s", capture.Amount.String(), capture.Currency)
			return nil
		}); ferr != nil {
			logger.Error("mark payment order failed", ferr)
		}
		return nil, model.NewAmountMismatchError()
	}

	// Step 6: captured + ghi có coin trong một transaction
	var credited *coinmodel.Transaction
	captured, err := s.transition(ctx, order.ID, model.EventCapture, func(q database.DBTX, o *model.PaymentOrder) error {
		if capture.PayerEmail != "" {
			email := capture.PayerEmail
			o.PayerEmail = &email
		}
		if capture.CaptureID != "" {
			o.Note = "capture " + capture.CaptureID
		}
		txn, err := s.ledger.Post(ctx, q, coinmodel.Entry{
			ProfileID:   profileID,
			Amount:      o.Coins,
			Type:        coinmodel.TxPurchase,
			ReferenceID: &o.ID,
			Description: fmt.Sprintf("PayPal purchase: %s", o.PackageID),
		})
		if err != nil {
			return err
		}
		credited = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("paypal order captured", map[string]interface{}{
		"order_id":   captured.ID,
		"profile_id": profileID,
		"coins":      captured.Coins,
	})
	s.notifyCredited(ctx, profileID, captured.Coins, "PayPal")

	return &model.CaptureOrderResponse{
		OrderID:    captured.ID,
		Status:     captured.Status,
		CoinsAdded: captured.Coins,
		Balance:    credited.BalanceAfter,
	}, nil
}

// CancelOrder - người mua bấm cancel trên PayPal
func (s *paymentService) CancelOrder(ctx context.Context, profileID uuid.UUID, req model.CaptureOrderRequest) (*model.PaymentOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	order, err := s.ownedPayPalOrder(ctx, profileID, req.OrderID)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.transition(ctx, order.ID, model.EventCancel, nil)
	if err != nil {
		return nil, err
	}
	resp := cancelled.ToResponse()
	return &resp, nil
}

// =====================================================
// LIST
// =====================================================

func (s *paymentService) ListOrders(ctx context.Context, profileID uuid.UUID, req model.ListOrdersRequest) (*model.ListOrdersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)
	orders, total, err := s.repo.ListByProfile(ctx, profileID, req.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	return toListResponse(orders, page, limit, total), nil
}

func (s *paymentService) ListUnmatched(ctx context.Context, page, limit int) (*model.ListOrdersResponse, error) {
	page, limit, offset := utils.NormalizePage(page, limit)
	orders, total, err := s.repo.ListByStatus(ctx, model.StatusUnmatched, limit, offset)
	if err != nil {
		return nil, err
	}
	return toListResponse(orders, page, limit, total), nil
}

func toListResponse(orders []model.PaymentOrder, page, limit, total int) *model.ListOrdersResponse {
	items := make([]model.PaymentOrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, orders[i].ToResponse())
	}
	return &model.ListOrdersResponse{Orders: items, Page: page, Limit: limit, Total: total}
}

// =====================================================
// HELPERS
// =====================================================

// ownedPayPalOrder - order của người khác trả not found, không lộ sự tồn tại
func (s *paymentService) ownedPayPalOrder(ctx context.Context, profileID uuid.UUID, providerOrderID string) (*model.PaymentOrder, error) {
	order, err := s.repo.GetByProviderOrderID(ctx, model.ProviderPayPal, providerOrderID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !order.OwnedBy(profileID) {
		return nil, model.NewOrderNotFoundError()
	}
	return order, nil
}

// transition khóa order, áp dụng event theo lifecycle, chạy apply rồi lưu lại
func (s *paymentService) transition(
	ctx context.Context,
	orderID uuid.UUID,
	event string,
	apply func(q database.DBTX, o *model.PaymentOrder) error,
) (*model.PaymentOrder, error) {
	var out *model.PaymentOrder
	err := s.tx.WithinTx(ctx, func(q database.DBTX) error {
		o, err := s.repo.LockByID(ctx, q, orderID)
		if err != nil {
			return err
		}

		next, err := model.NextStatus(ctx, o.Status, event)
		if err != nil {
			return transitionError(err, o.Status, event)
		}
		o.Status = next

		if apply != nil {
			if err := apply(q, o); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, q, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return out, nil
}

func (s *paymentService) notifyCredited(ctx context.Context, profileID uuid.UUID, coins int64, source string) {
	if s.notifier == nil || coins <= 0 {
		return
	}
	err := s.notifier.Notify(ctx, notifmodel.CreateInput{
		ProfileID: profileID,
		Type:      notifmodel.TypeSystem,
		Title:     fmt.Sprintf("%d coins added to your wallet", coins),
		Body:      "Payment received via " + source,
		Link:      "/coins",
	})
	if err != nil {
		logger.Error("notify coin credit failed", err)
	}
}

func transitionError(err error, status model.Status, event string) error {
	switch {
	case errors.Is(err, model.ErrAlreadyCaptured):
		return model.NewAlreadyCapturedError()
	case errors.Is(err, model.ErrInvalidTransition):
		return model.NewInvalidTransitionError(status, event)
	}
	return err
}

func mapRepoError(err error) error {
	var perr *model.PaymentError
	if errors.As(err, &perr) {
		return err
	}
	switch {
	case errors.Is(err, model.ErrOrderNotFound):
		return model.NewOrderNotFoundError()
	case errors.Is(err, model.ErrProfileNotFound):
		return model.NewProfileNotFoundError()
	}
	return err
}
