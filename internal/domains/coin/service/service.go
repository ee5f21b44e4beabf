package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/config"
	"novelhub-backend/internal/domains/coin/model"
	"novelhub-backend/internal/domains/coin/repository"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/database"
	"novelhub-backend/pkg/logger"
)

type coinService struct {
	repo     repository.Repository
	tx       database.Transactor
	ledger   *Ledger
	catalog  *config.CoinCatalog
	cfg      config.CoinConfig
	currency string
	notifier Notifier
	now      func() time.Time
}

func NewCoinService(
	repo repository.Repository,
	tx database.Transactor,
	ledger *Ledger,
	catalog *config.CoinCatalog,
	cfg config.CoinConfig,
	currency string,
	notifier Notifier,
) ServiceInterface {
	return &coinService{
		repo:     repo,
		tx:       tx,
		ledger:   ledger,
		catalog:  catalog,
		cfg:      cfg,
		currency: currency,
		notifier: notifier,
		now:      time.Now,
	}
}

// =====================================================
// CREDIT
// =====================================================

func (s *coinService) AddCoins(ctx context.Context, profileID uuid.UUID, amount int64, txType model.TransactionType, referenceID *uuid.UUID, description string) (*model.Transaction, error) {
	if amount <= 0 {
		return nil, model.NewInvalidAmountError("amount must be positive")
	}

	var result *model.Transaction
	err := s.tx.WithinTx(ctx, func(q database.DBTX) error {
		t, err := s.ledger.Post(ctx, q, model.Entry{
			ProfileID:   profileID,
			Amount:      amount,
			Type:        txType,
			ReferenceID: referenceID,
			Description: description,
		})
		result = t
		return err
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	logger.Info("coins added", map[string]interface{}{
		"profile_id": profileID.String(),
		"amount":     amount,
		"type":       string(txType),
	})
	return result, nil
}

// AdminGrant - POST /api/coins/add
func (s *coinService) AdminGrant(ctx context.Context, admin shared.Actor, req model.AddCoinsRequest) (*model.Transaction, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Resolve profile
	var target *model.ProfileRef
	var err error
	if req.ProfileID != nil {
		target, err = s.repo.FindProfileByID(ctx, *req.ProfileID)
	} else {
		target, err = s.repo.FindProfileByUsername(ctx, strings.TrimSpace(req.Username))
	}
	if err != nil {
		return nil, mapRepoError(err)
	}

	// Step 3: Credit
	desc := req.Description
	if desc == "" {
		desc = "Admin grant"
	}
	adminID := admin.ID
	return s.AddCoins(ctx, target.ID, req.Amount, model.TxAdminGrant, &adminID, desc)
}

// =====================================================
// DEBIT
// =====================================================

func (s *coinService) UnlockChapter(ctx context.Context, actor shared.Actor, chapterID uuid.UUID) (*model.UnlockResponse, error) {
	// Step 1: Load chapter price
	price, err := s.repo.GetChapterPrice(ctx, chapterID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if price.Coins <= 0 {
		return nil, model.NewFreeChapterError()
	}
	if price.AuthorID == actor.ID {
		return nil, model.NewOwnChapterError()
	}

	// Step 2: Already purchased?
	owned, err := s.repo.HasPurchased(ctx, actor.ID, chapterID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, model.NewAlreadyPurchasedError()
	}

	// Step 3: Purchase + transfer trong một transaction
	now := s.now()
	ref := chapterID
	var debit *model.Transaction
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.InsertPurchase(ctx, q, &model.ChapterPurchase{
			ProfileID: actor.ID,
			ChapterID: chapterID,
			Coins:     price.Coins,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		d, _, err := s.ledger.Transfer(ctx, q, model.Transfer{
			From:        actor.ID,
			To:          price.AuthorID,
			Amount:      price.Coins,
			Credit:      model.AuthorShare(price.Coins, s.cfg.AuthorSharePercent),
			DebitType:   model.TxChapterUnlock,
			CreditType:  model.TxChapterIncome,
			ReferenceID: &ref,
			Description: fmt.Sprintf("%s - chapter %d", price.NovelSlug, price.ChapterNumber),
		})
		debit = d
		return err
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	logger.Info("chapter unlocked", map[string]interface{}{
		"profile_id": actor.ID.String(),
		"chapter_id": chapterID.String(),
		"coins":      price.Coins,
	})

	return &model.UnlockResponse{
		ChapterID:  chapterID,
		CoinsSpent: price.Coins,
		Balance:    debit.BalanceAfter,
		UnlockedAt: now,
	}, nil
}

func (s *coinService) Donate(ctx context.Context, actor shared.Actor, req model.DonateRequest) (*model.DonationResponse, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Amount < s.cfg.MinDonation {
		return nil, model.NewInvalidAmountError(fmt.Sprintf("Minimum donation is %d coins", s.cfg.MinDonation))
	}

	// Step 2: Resolve recipient
	recipient, err := s.repo.FindProfileByUsername(ctx, strings.TrimPrefix(strings.TrimSpace(req.Recipient), "@"))
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !recipient.IsActive {
		return nil, model.NewProfileNotFoundError()
	}
	if recipient.ID == actor.ID {
		return nil, model.NewSelfDonationError()
	}

	// Step 3: Transfer
	var debit *model.Transaction
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		d, _, err := s.ledger.Transfer(ctx, q, model.Transfer{
			From:        actor.ID,
			To:          recipient.ID,
			Amount:      req.Amount,
			Credit:      req.Amount,
			DebitType:   model.TxDonationSent,
			CreditType:  model.TxDonationReceived,
			Description: strings.TrimSpace(req.Message),
		})
		debit = d
		return err
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	// Step 4: Notify recipient, lỗi không làm hỏng donation
	s.notifyDonation(ctx, actor, recipient, req)

	return &model.DonationResponse{
		TransactionID: debit.ID,
		Recipient:     recipient.Username,
		Amount:        req.Amount,
		Balance:       debit.BalanceAfter,
	}, nil
}

func (s *coinService) notifyDonation(ctx context.Context, actor shared.Actor, recipient *model.ProfileRef, req model.DonateRequest) {
	if s.notifier == nil {
		return
	}
	sender := "Someone"
	if p, err := s.repo.FindProfileByID(ctx, actor.ID); err == nil {
		sender = p.Username
	}
	err := s.notifier.Notify(ctx, notifmodel.CreateInput{
		ProfileID: recipient.ID,
		Type:      notifmodel.TypeDonation,
		Title:     fmt.Sprintf("%s donated %d coins", sender, req.Amount),
		Body:      strings.TrimSpace(req.Message),
		Link:      "/coins/transactions",
	})
	if err != nil {
		logger.ErrorWithFields("donation notification failed", err, map[string]interface{}{
			"recipient_id": recipient.ID.String(),
		})
	}
}

// =====================================================
// QUERIES
// =====================================================

func (s *coinService) Balance(ctx context.Context, profileID uuid.UUID) (*model.BalanceResponse, error) {
	coins, err := s.repo.GetBalance(ctx, profileID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return &model.BalanceResponse{ProfileID: profileID, Coins: coins}, nil
}

func (s *coinService) History(ctx context.Context, profileID uuid.UUID, req model.HistoryRequest) (*model.HistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	txs, total, err := s.repo.ListTransactions(ctx, profileID, req.Type, limit, offset)
	if err != nil {
		return nil, err
	}
	return &model.HistoryResponse{Transactions: txs, Total: total, Page: page, Limit: limit}, nil
}

func (s *coinService) Packages(_ context.Context) []model.PackageResponse {
	pkgs := s.catalog.List()
	out := make([]model.PackageResponse, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, model.PackageResponse{
			ID:         p.ID,
			Name:       p.Name,
			Coins:      p.Coins,
			Bonus:      p.Bonus,
			TotalCoins: p.TotalCoins(),
			Price:      p.Price,
			Currency:   s.currency,
		})
	}
	return out
}

func (s *coinService) HasPurchased(ctx context.Context, profileID, chapterID uuid.UUID) (bool, error) {
	return s.repo.HasPurchased(ctx, profileID, chapterID)
}

func (s *coinService) PurchasedChapterIDs(ctx context.Context, profileID uuid.UUID, chapterIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.repo.PurchasedChapterIDs(ctx, profileID, chapterIDs)
}

// mapRepoError chuyển sentinel của repository sang CoinError
func mapRepoError(err error) error {
	var coinErr *model.CoinError
	if errors.As(err, &coinErr) {
		return err
	}
	switch {
	case errors.Is(err, model.ErrProfileNotFound):
		return model.NewProfileNotFoundError()
	case errors.Is(err, model.ErrChapterNotFound):
		return model.NewChapterNotFoundError()
	case errors.Is(err, model.ErrAlreadyPurchased):
		return model.NewAlreadyPurchasedError()
	case errors.Is(err, model.ErrInsufficientCoins):
		return &model.CoinError{Code: model.ErrCodeInsufficientCoins, Message: "Insufficient coins", Err: err}
	}
	return err
}
