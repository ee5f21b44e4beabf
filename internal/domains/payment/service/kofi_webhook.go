package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	coinmodel "novelhub-backend/internal/domains/coin/model"
	"novelhub-backend/internal/domains/payment/model"
	"novelhub-backend/pkg/database"
	"novelhub-backend/pkg/logger"
)

const maxNoteRunes = 500

// =====================================================
// KO-FI WEBHOOK
// =====================================================

// HandleKofiWebhook xử lý field "data" của Ko-fi.
// Cùng kofi_transaction_id gửi lại chỉ trả kết quả cũ, không ghi có lần hai.
func (s *paymentService) HandleKofiWebhook(ctx context.Context, data string) (*model.KofiResult, error) {
	// Step 1: Validate payload theo JSON schema
	payload, err := model.ParseKofiPayload(data)
	if err != nil {
		logger.Warn("kofi webhook rejected: invalid payload", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	// Step 2: Verify token
	if !s.validKofiToken(payload.VerificationToken) {
		logger.Warn("kofi webhook rejected: bad token", map[string]interface{}{
			"kofi_transaction_id": payload.TransactionID,
		})
		return nil, model.NewInvalidTokenError()
	}

	// Step 3: Idempotency check
	if existing, err := s.repo.GetByProviderOrderID(ctx, model.ProviderKofi, payload.TransactionID); err == nil {
		return duplicateResult(existing), nil
	} else if !errors.Is(err, model.ErrOrderNotFound) {
		return nil, err
	}

	// Step 4: Tìm profile nhận coin
	profile, err := s.resolveKofiProfile(ctx, payload)
	if err != nil {
		return nil, err
	}

	order := &model.PaymentOrder{
		ID:              uuid.New(),
		Provider:        model.ProviderKofi,
		ProviderOrderID: payload.TransactionID,
		Coins:           model.CoinsForAmount(payload.AmountDecimal(), s.kofi.CoinsPerUnit),
		Amount:          payload.AmountDecimal(),
		Currency:        payload.Currency,
		Status:          model.StatusCreated,
		Note:            kofiNote(payload),
	}
	if email := payload.EmailAddress(); email != "" {
		order.PayerEmail = &email
	}

	// Step 5: Quyết định trạng thái
	switch {
	case profile == nil:
		order.Status = model.StatusUnmatched
	case !strings.EqualFold(payload.Currency, s.currency):
		// tỉ giá chỉ cấu hình cho một currency, admin claim thủ công
		order.ProfileID = &profile.ID
		order.Status = model.StatusUnmatched
		order.Note = truncateRunes(fmt.Sprintf("currency %s needs manual review; %s", payload.Currency, order.Note), maxNoteRunes)
	default:
		order.ProfileID = &profile.ID
		if order.Status, err = model.NextStatus(ctx, order.Status, model.EventCapture); err != nil {
			return nil, err
		}
	}

	// Step 6: Persist + ghi có trong một transaction
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.Create(ctx, q, order); err != nil {
			return err
		}
		if order.Status != model.StatusCaptured || order.Coins <= 0 {
			return nil
		}
		_, err := s.ledger.Post(ctx, q, coinmodel.Entry{
			ProfileID:   profile.ID,
			Amount:      order.Coins,
			Type:        coinmodel.TxKofi,
			ReferenceID: &order.ID,
			Description: fmt.Sprintf("Ko-fi %s %s %s", strings.ToLower(payload.Type), payload.Amount, payload.Currency),
		})
		return err
	})
	if errors.Is(err, model.ErrDuplicateOrder) {
		// request song song cùng transaction id
		existing, gerr := s.repo.GetByProviderOrderID(ctx, model.ProviderKofi, payload.TransactionID)
		if gerr != nil {
			return nil, gerr
		}
		return duplicateResult(existing), nil
	}
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"order_id":            order.ID,
		"kofi_transaction_id": order.ProviderOrderID,
		"status":              order.Status,
		"coins":               order.Coins,
	}
	if order.Status == model.StatusUnmatched {
		logger.Warn("kofi payment stored as unmatched", fields)
	} else {
		logger.Info("kofi payment credited", fields)
		s.notifyCredited(ctx, profile.ID, order.Coins, "Ko-fi")
	}

	return &model.KofiResult{OrderID: order.ID, Status: order.Status, Coins: order.Coins}, nil
}

// ClaimKofiOrder - admin gán order unmatched cho profile và ghi có
func (s *paymentService) ClaimKofiOrder(ctx context.Context, orderID uuid.UUID, req model.ClaimRequest) (*model.PaymentOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.repo.FindProfileByID(ctx, req.ProfileID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	claimed, err := s.transition(ctx, orderID, model.EventClaim, func(q database.DBTX, o *model.PaymentOrder) error {
		if o.Provider != model.ProviderKofi {
			return model.NewProviderNotAllowedError(o.Provider)
		}
		o.ProfileID = &profile.ID
		if req.Coins != nil {
			o.Coins = *req.Coins
		}
		if o.Coins <= 0 {
			return nil
		}
		_, err := s.ledger.Post(ctx, q, coinmodel.Entry{
			ProfileID:   profile.ID,
			Amount:      o.Coins,
			Type:        coinmodel.TxKofi,
			ReferenceID: &o.ID,
			Description: "Ko-fi payment (claimed)",
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("kofi order claimed", map[string]interface{}{
		"order_id":   claimed.ID,
		"profile_id": profile.ID,
		"coins":      claimed.Coins,
	})
	s.notifyCredited(ctx, profile.ID, claimed.Coins, "Ko-fi")

	resp := claimed.ToResponse()
	return &resp, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *paymentService) validKofiToken(token string) bool {
	if s.kofi.VerificationToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.kofi.VerificationToken)) == 1
}

// resolveKofiProfile: email trước, sau đó "@username" trong message và from_name.
// Không tìm thấy trả nil, nil.
func (s *paymentService) resolveKofiProfile(ctx context.Context, p *model.KofiPayload) (*model.ProfileRef, error) {
	if email := p.EmailAddress(); email != "" {
		profile, err := s.repo.FindProfileByEmail(ctx, email)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, model.ErrProfileNotFound) {
			return nil, err
		}
	}

	for _, name := range p.UsernameCandidates() {
		profile, err := s.repo.FindProfileByKofiName(ctx, name)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, model.ErrProfileNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func duplicateResult(o *model.PaymentOrder) *model.KofiResult {
	return &model.KofiResult{OrderID: o.ID, Status: o.Status, Coins: o.Coins, Duplicate: true}
}

func kofiNote(p *model.KofiPayload) string {
	parts := []string{p.Type}
	if name := p.Sender(); name != "" {
		parts = append(parts, "from "+name)
	}
	if p.Message != nil && strings.TrimSpace(*p.Message) != "" {
		parts = append(parts, fmt.Sprintf("%q", strings.TrimSpace(*p.Message)))
	}
	return truncateRunes(strings.Join(parts, " "), maxNoteRunes)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
