package service

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/coin/model"
	"novelhub-backend/internal/domains/coin/repository"
	"novelhub-backend/pkg/database"
)

// Ledger ghi bút toán coin. Mọi method nhận q của transaction bên ngoài nên
// subscription/payment có thể ghi sổ cùng transaction với nghiệp vụ của mình.
type Ledger struct {
	repo repository.Repository
	now  func() time.Time
}

func NewLedger(repo repository.Repository) *Ledger {
	return &Ledger{repo: repo, now: time.Now}
}

// Post khóa số dư, áp delta rồi ghi một dòng transaction
func (l *Ledger) Post(ctx context.Context, q database.DBTX, e model.Entry) (*model.Transaction, error) {
	if e.Amount == 0 {
		return nil, model.NewInvalidAmountError("amount must not be zero")
	}

	balance, err := l.repo.LockBalance(ctx, q, e.ProfileID)
	if err != nil {
		return nil, err
	}
	return l.apply(ctx, q, balance, e)
}

// Transfer trừ From và cộng To (Credit coin) trong cùng transaction.
// Hai row được khóa theo thứ tự UUID để hai transfer ngược chiều không deadlock.
func (l *Ledger) Transfer(ctx context.Context, q database.DBTX, t model.Transfer) (*model.Transaction, *model.Transaction, error) {
	if t.Amount <= 0 || t.Credit < 0 || t.Credit > t.Amount {
		return nil, nil, model.NewInvalidAmountError("invalid transfer amount")
	}
	if t.From == t.To {
		return nil, nil, model.NewSelfDonationError()
	}

	balances := make(map[uuid.UUID]int64, 2)
	for _, id := range lockOrder(t.From, t.To) {
		b, err := l.repo.LockBalance(ctx, q, id)
		if err != nil {
			return nil, nil, err
		}
		balances[id] = b
	}

	from, to := t.From, t.To
	debit, err := l.apply(ctx, q, balances[from], model.Entry{
		ProfileID:      from,
		Amount:         -t.Amount,
		Type:           t.DebitType,
		ReferenceID:    t.ReferenceID,
		CounterpartyID: &to,
		Description:    t.Description,
	})
	if err != nil {
		return nil, nil, err
	}

	if t.Credit == 0 {
		return debit, nil, nil
	}

	credit, err := l.apply(ctx, q, balances[to], model.Entry{
		ProfileID:      to,
		Amount:         t.Credit,
		Type:           t.CreditType,
		ReferenceID:    t.ReferenceID,
		CounterpartyID: &from,
		Description:    t.Description,
	})
	if err != nil {
		return nil, nil, err
	}
	return debit, credit, nil
}

func (l *Ledger) apply(ctx context.Context, q database.DBTX, balance int64, e model.Entry) (*model.Transaction, error) {
	next, err := model.ApplyDelta(balance, e.Amount)
	if err != nil {
		if errors.Is(err, model.ErrInsufficientCoins) {
			return nil, model.NewInsufficientCoinsError(balance, -e.Amount)
		}
		return nil, model.NewInvalidAmountError(err.Error())
	}

	if err := l.repo.SetBalance(ctx, q, e.ProfileID, next); err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		ID:             uuid.New(),
		ProfileID:      e.ProfileID,
		Amount:         e.Amount,
		Type:           e.Type,
		ReferenceID:    e.ReferenceID,
		CounterpartyID: e.CounterpartyID,
		Description:    e.Description,
		BalanceAfter:   next,
		CreatedAt:      l.now(),
	}
	if err := l.repo.InsertTransaction(ctx, q, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func lockOrder(a, b uuid.UUID) []uuid.UUID {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return []uuid.UUID{a, b}
	}
	return []uuid.UUID{b, a}
}
