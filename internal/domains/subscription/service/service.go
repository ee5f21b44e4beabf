package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	coinmodel "novelhub-backend/internal/domains/coin/model"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/domains/subscription/model"
	"novelhub-backend/internal/domains/subscription/repository"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/database"
	"novelhub-backend/pkg/logger"
)

const renewBatchSize = 200

type subscriptionService struct {
	repo     repository.Repository
	tx       database.Transactor
	ledger   Ledger
	notifier Notifier
	period   time.Duration
	now      func() time.Time
}

func NewSubscriptionService(
	repo repository.Repository,
	tx database.Transactor,
	ledger Ledger,
	notifier Notifier,
	periodDays int,
) ServiceInterface {
	period := model.DefaultPeriod
	if periodDays > 0 {
		period = time.Duration(periodDays) * 24 * time.Hour
	}
	return &subscriptionService{
		repo:     repo,
		tx:       tx,
		ledger:   ledger,
		notifier: notifier,
		period:   period,
		now:      time.Now,
	}
}

// =====================================================
// SUBSCRIBE / CANCEL
// =====================================================

func (s *subscriptionService) Subscribe(ctx context.Context, actor shared.Actor, authorID uuid.UUID) (*model.Subscription, error) {
	// Step 1: Validate
	if actor.ID == authorID {
		return nil, model.NewSelfSubscriptionError()
	}
	tier, err := s.repo.GetAuthorTier(ctx, authorID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !tier.Accepting() {
		return nil, model.NewNotAcceptingError()
	}

	// Step 2: Charge + upsert trong một transaction
	now := s.now()
	var sub *model.Subscription
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		existing, err := s.repo.GetForUpdate(ctx, q, actor.ID, authorID)
		switch {
		case errors.Is(err, model.ErrSubscriptionNotFound):
			existing = &model.Subscription{
				ID:           uuid.New(),
				SubscriberID: actor.ID,
				AuthorID:     authorID,
				Status:       model.StatusExpired,
			}
		case err != nil:
			return err
		}

		if err := s.charge(ctx, q, existing, tier.Price, "Subscription to "+tier.Username); err != nil {
			return err
		}

		existing.Tier = tier.Name
		existing.CoinsPerPeriod = tier.Price
		existing.Extend(now, s.period)
		if err := s.repo.Upsert(ctx, q, existing); err != nil {
			return err
		}
		sub = existing
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	sub.AuthorName = tier.Username

	// Step 3: Notify author
	s.notify(ctx, notifmodel.CreateInput{
		ProfileID: authorID,
		Type:      notifmodel.TypeSubscription,
		Title:     "You have a new subscriber",
		Body:      fmt.Sprintf("Subscription active until %s", sub.ExpiresAt.Format("2006-01-02")),
		Link:      "/dashboard/subscribers",
	})

	logger.Info("subscription charged", map[string]interface{}{
		"subscriber_id": actor.ID.String(),
		"author_id":     authorID.String(),
		"coins":         tier.Price,
	})
	return sub, nil
}

// charge chuyển coin subscriber → author, ref là subscription id
func (s *subscriptionService) charge(ctx context.Context, q database.DBTX, sub *model.Subscription, price int64, desc string) error {
	ref := sub.ID
	_, _, err := s.ledger.Transfer(ctx, q, coinmodel.Transfer{
		From:        sub.SubscriberID,
		To:          sub.AuthorID,
		Amount:      price,
		Credit:      price,
		DebitType:   coinmodel.TxSubscription,
		CreditType:  coinmodel.TxSubscriptionIncome,
		ReferenceID: &ref,
		Description: desc,
	})
	return err
}

// Cancel tắt auto renew; quyền đọc giữ tới expires_at
func (s *subscriptionService) Cancel(ctx context.Context, actor shared.Actor, authorID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.repo.Get(ctx, actor.ID, authorID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !sub.IsActiveAt(s.now()) {
		return nil, model.NewSubscriptionNotFoundError()
	}

	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		return s.repo.UpdateStatus(ctx, q, sub.ID, model.StatusCancelled, false)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	sub.Status = model.StatusCancelled
	sub.AutoRenew = false
	return sub, nil
}

// =====================================================
// QUERIES
// =====================================================

func (s *subscriptionService) ListMine(ctx context.Context, actor shared.Actor, page, limit int) (*model.ListResponse, error) {
	page, limit, offset := utils.NormalizePage(page, limit)
	subs, total, err := s.repo.ListBySubscriber(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &model.ListResponse{Subscriptions: nonNil(subs), Total: total, Page: page, Limit: limit}, nil
}

func (s *subscriptionService) ListSubscribers(ctx context.Context, actor shared.Actor, page, limit int) (*model.ListResponse, error) {
	page, limit, offset := utils.NormalizePage(page, limit)
	subs, total, err := s.repo.ListByAuthor(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &model.ListResponse{Subscriptions: nonNil(subs), Total: total, Page: page, Limit: limit}, nil
}

func (s *subscriptionService) HasActive(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error) {
	return s.repo.HasActive(ctx, subscriberID, authorID, s.now())
}

func (s *subscriptionService) GetTier(ctx context.Context, authorID uuid.UUID) (*model.AuthorTier, error) {
	tier, err := s.repo.GetAuthorTier(ctx, authorID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return tier, nil
}

func (s *subscriptionService) SetTier(ctx context.Context, actor shared.Actor, req model.SetTierRequest) (*model.AuthorTier, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if actor.Role != "author" && !actor.IsAdmin() {
		return nil, model.NewNotAuthorError()
	}
	if err := s.repo.SetAuthorTier(ctx, actor.ID, req.Name, req.Price); err != nil {
		return nil, mapRepoError(err)
	}
	return s.repo.GetAuthorTier(ctx, actor.ID)
}

// =====================================================
// RENEW JOB
// =====================================================

// RenewOrExpire xử lý subscription tới hạn; mỗi subscription một transaction
// để một subscriber thiếu coin không chặn cả batch
func (s *subscriptionService) RenewOrExpire(ctx context.Context) (*model.RenewResult, error) {
	result := &model.RenewResult{}
	now := s.now()

	due, err := s.repo.ListDue(ctx, now, renewBatchSize)
	if err != nil {
		return nil, err
	}

	for _, sub := range due {
		renewed, err := s.renewOne(ctx, sub, now)
		switch {
		case err != nil:
			result.Failed++
			logger.ErrorWithFields("subscription renewal failed", err, map[string]interface{}{
				"subscription_id": sub.ID.String(),
			})
		case renewed:
			result.Renewed++
		default:
			result.Expired++
		}
	}
	return result, nil
}

func (s *subscriptionService) renewOne(ctx context.Context, due model.Subscription, now time.Time) (bool, error) {
	renewed := false
	var notice *notifmodel.CreateInput

	err := s.tx.WithinTx(ctx, func(q database.DBTX) error {
		sub, err := s.repo.GetForUpdate(ctx, q, due.SubscriberID, due.AuthorID)
		if err != nil {
			return err
		}
		// đã được gia hạn bởi request khác
		if sub.IsActiveAt(now) {
			renewed = true
			return nil
		}

		if sub.AutoRenew && sub.CoinsPerPeriod > 0 {
			chargeErr := s.charge(ctx, q, sub, sub.CoinsPerPeriod, "Subscription renewal: "+sub.AuthorName)
			if chargeErr == nil {
				sub.Extend(now, s.period)
				renewed = true
				return s.repo.Upsert(ctx, q, sub)
			}
			if !errors.Is(chargeErr, coinmodel.ErrInsufficientCoins) {
				return chargeErr
			}
			notice = &notifmodel.CreateInput{
				ProfileID: sub.SubscriberID,
				Type:      notifmodel.TypeSubscription,
				Title:     fmt.Sprintf("Your subscription to %s has expired", sub.AuthorName),
				Body:      "Not enough coins to renew",
				Link:      "/coins",
			}
		}
		return s.repo.UpdateStatus(ctx, q, sub.ID, model.StatusExpired, false)
	})
	if err != nil {
		return false, err
	}
	if notice != nil {
		s.notify(ctx, *notice)
	}
	return renewed, nil
}

func (s *subscriptionService) notify(ctx context.Context, in notifmodel.CreateInput) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, in); err != nil {
		logger.Error("subscription notification failed", err)
	}
}

func nonNil(subs []model.Subscription) []model.Subscription {
	if subs == nil {
		return []model.Subscription{}
	}
	return subs
}

func mapRepoError(err error) error {
	var subErr *model.SubscriptionError
	var coinErr *coinmodel.CoinError
	if errors.As(err, &subErr) || errors.As(err, &coinErr) {
		return err
	}
	switch {
	case errors.Is(err, model.ErrSubscriptionNotFound):
		return model.NewSubscriptionNotFoundError()
	case errors.Is(err, model.ErrAuthorNotFound), errors.Is(err, coinmodel.ErrProfileNotFound):
		return model.NewAuthorNotFoundError()
	}
	return err
}
