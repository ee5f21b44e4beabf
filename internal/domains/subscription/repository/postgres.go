package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"novelhub-backend/internal/domains/subscription/model"
	pkgdb "novelhub-backend/pkg/database"
)

const selectSubscription = `
	SELECT s.id, s.subscriber_id, sp.username, s.author_id, ap.username,
		s.tier, s.coins_per_period, s.status, s.started_at, s.expires_at, s.auto_renew,
		s.created_at, s.updated_at
	FROM subscriptions s
	JOIN profiles sp ON sp.id = s.subscriber_id
	JOIN profiles ap ON ap.id = s.author_id`

type postgresRepository struct {
	db pkgdb.DBTX
}

func NewPostgresRepository(db pkgdb.DBTX) Repository {
	return &postgresRepository{db: db}
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	s := &model.Subscription{}
	err := row.Scan(
		&s.ID, &s.SubscriberID, &s.SubscriberName, &s.AuthorID, &s.AuthorName,
		&s.Tier, &s.CoinsPerPeriod, &s.Status, &s.StartedAt, &s.ExpiresAt, &s.AutoRenew,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return s, nil
}

func collect(rows pgx.Rows) ([]model.Subscription, error) {
	defer rows.Close()
	var out []model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// =====================================================
// TIER
// =====================================================

func (r *postgresRepository) GetAuthorTier(ctx context.Context, authorID uuid.UUID) (*model.AuthorTier, error) {
	t := &model.AuthorTier{}
	err := r.db.QueryRow(ctx, `
		SELECT id, username, role, subscription_tier, subscription_price
		FROM profiles WHERE id = $1 AND is_active
	`, authorID).Scan(&t.AuthorID, &t.Username, &t.Role, &t.Name, &t.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("get author tier: %w", err)
	}
	return t, nil
}

func (r *postgresRepository) SetAuthorTier(ctx context.Context, authorID uuid.UUID, name string, price int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET subscription_tier = $2, subscription_price = $3, updated_at = NOW()
		WHERE id = $1
	`, authorID, name, price)
	if err != nil {
		return fmt.Errorf("set author tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAuthorNotFound
	}
	return nil
}

// =====================================================
// WRITE (trong transaction)
// =====================================================

func (r *postgresRepository) GetForUpdate(ctx context.Context, q pkgdb.DBTX, subscriberID, authorID uuid.UUID) (*model.Subscription, error) {
	row := q.QueryRow(ctx, selectSubscription+`
		WHERE s.subscriber_id = $1 AND s.author_id = $2
		FOR UPDATE OF s
	`, subscriberID, authorID)
	return scanSubscription(row)
}

func (r *postgresRepository) Upsert(ctx context.Context, q pkgdb.DBTX, s *model.Subscription) error {
	query := `
		INSERT INTO subscriptions
			(id, subscriber_id, author_id, tier, coins_per_period, status, started_at, expires_at, auto_renew, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (subscriber_id, author_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			coins_per_period = EXCLUDED.coins_per_period,
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			expires_at = EXCLUDED.expires_at,
			auto_renew = EXCLUDED.auto_renew,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query,
		s.ID, s.SubscriberID, s.AuthorID, s.Tier, s.CoinsPerPeriod, s.Status,
		s.StartedAt, s.ExpiresAt, s.AutoRenew, s.UpdatedAt,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, q pkgdb.DBTX, id uuid.UUID, status model.Status, autoRenew bool) error {
	tag, err := q.Exec(ctx, `
		UPDATE subscriptions SET status = $2, auto_renew = $3, updated_at = NOW() WHERE id = $1
	`, id, status, autoRenew)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSubscriptionNotFound
	}
	return nil
}

// =====================================================
// READ
// =====================================================

func (r *postgresRepository) Get(ctx context.Context, subscriberID, authorID uuid.UUID) (*model.Subscription, error) {
	return scanSubscription(r.db.QueryRow(ctx, selectSubscription+`
		WHERE s.subscriber_id = $1 AND s.author_id = $2
	`, subscriberID, authorID))
}

func (r *postgresRepository) ListBySubscriber(ctx context.Context, subscriberID uuid.UUID, limit, offset int) ([]model.Subscription, int, error) {
	return r.list(ctx, "s.subscriber_id", subscriberID, limit, offset)
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]model.Subscription, int, error) {
	return r.list(ctx, "s.author_id", authorID, limit, offset)
}

func (r *postgresRepository) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]model.Subscription, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions s WHERE `+column+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	rows, err := r.db.Query(ctx, selectSubscription+`
		WHERE `+column+` = $1
		ORDER BY s.expires_at DESC
		LIMIT $2 OFFSET $3
	`, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}
	subs, err := collect(rows)
	return subs, total, err
}

func (r *postgresRepository) HasActive(ctx context.Context, subscriberID, authorID uuid.UUID, at time.Time) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE subscriber_id = $1 AND author_id = $2
				AND status IN ('active', 'cancelled') AND expires_at > $3
		)
	`, subscriberID, authorID, at).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check active subscription: %w", err)
	}
	return ok, nil
}

func (r *postgresRepository) ListDue(ctx context.Context, at time.Time, limit int) ([]model.Subscription, error) {
	rows, err := r.db.Query(ctx, selectSubscription+`
		WHERE s.status IN ('active', 'cancelled') AND s.expires_at <= $1
		ORDER BY s.expires_at
		LIMIT $2
	`, at, limit)
	if err != nil {
		return nil, fmt.Errorf("list due subscriptions: %w", err)
	}
	return collect(rows)
}
