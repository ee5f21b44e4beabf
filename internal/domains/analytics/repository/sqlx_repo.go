package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"novelhub-backend/internal/domains/analytics/model"
)

type sqlxRepository struct {
	db *sqlx.DB
}

// NewSQLXRepository - analytics chỉ đọc/aggregate nên dùng sqlx trên database/sql (lib/pq)
func NewSQLXRepository(db *sqlx.DB) AnalyticsRepository {
	return &sqlxRepository{db: db}
}

// =====================================================
// READING TIME
// =====================================================

func (r *sqlxRepository) CreateReadingTime(ctx context.Context, profileID uuid.UUID) error {
	const query = `INSERT INTO reading_times (profile_id) VALUES ($1) ON CONFLICT (profile_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, profileID); err != nil {
		return fmt.Errorf("create reading time: %w", err)
	}
	return nil
}

func (r *sqlxRepository) AddReadingTime(ctx context.Context, profileID uuid.UUID, seconds int64) (*model.ReadingTime, error) {
	// upsert: profile tạo trước khi có bảng reading_times vẫn được tính
	const query = `
		INSERT INTO reading_times (profile_id, seconds, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (profile_id) DO UPDATE
		SET seconds = reading_times.seconds + EXCLUDED.seconds, updated_at = NOW()
		RETURNING profile_id, seconds, updated_at`

	var rt model.ReadingTime
	if err := r.db.GetContext(ctx, &rt, query, profileID, seconds); err != nil {
		return nil, fmt.Errorf("add reading time: %w", err)
	}
	return &rt, nil
}

func (r *sqlxRepository) GetReadingTime(ctx context.Context, profileID uuid.UUID) (*model.ReadingTime, error) {
	const query = `SELECT profile_id, seconds, updated_at FROM reading_times WHERE profile_id = $1`

	var rt model.ReadingTime
	err := r.db.GetContext(ctx, &rt, query, profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.ReadingTime{ProfileID: profileID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reading time: %w", err)
	}
	return &rt, nil
}

// =====================================================
// AUTHOR
// =====================================================

const novelStatsColumns = `id, title, slug, view_count, bookmark_count, chapter_count, last_chapter_at`

func (r *sqlxRepository) AuthorNovels(ctx context.Context, authorID uuid.UUID) ([]model.NovelStats, error) {
	query := `SELECT ` + novelStatsColumns + ` FROM novels WHERE author_id = $1 ORDER BY view_count DESC, title`

	novels := []model.NovelStats{}
	if err := r.db.SelectContext(ctx, &novels, query, authorID); err != nil {
		return nil, fmt.Errorf("author novels: %w", err)
	}
	return novels, nil
}

func (r *sqlxRepository) AuthorEarnings(ctx context.Context, authorID uuid.UUID) ([]model.EarningsByType, error) {
	const query = `
		SELECT type, COALESCE(SUM(amount), 0) AS coins
		FROM coin_transactions
		WHERE profile_id = $1 AND type = ANY($2)
		GROUP BY type
		ORDER BY type`

	earnings := []model.EarningsByType{}
	if err := r.db.SelectContext(ctx, &earnings, query, authorID, pq.Array(model.IncomeTypes)); err != nil {
		return nil, fmt.Errorf("author earnings: %w", err)
	}
	return earnings, nil
}

func (r *sqlxRepository) ActiveSubscribers(ctx context.Context, authorID uuid.UUID) (int, error) {
	// subscription đã cancel vẫn còn quyền tới expires_at
	const query = `
		SELECT COUNT(*) FROM subscriptions
		WHERE author_id = $1 AND status IN ('active', 'cancelled') AND expires_at > NOW()`

	var n int
	if err := r.db.GetContext(ctx, &n, query, authorID); err != nil {
		return 0, fmt.Errorf("active subscribers: %w", err)
	}
	return n, nil
}

func (r *sqlxRepository) RecentTransactions(ctx context.Context, profileID uuid.UUID, limit int) ([]model.TransactionRow, error) {
	const query = `
		SELECT id, type, amount, description, balance_after, created_at
		FROM coin_transactions
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows := []model.TransactionRow{}
	if err := r.db.SelectContext(ctx, &rows, query, profileID, limit); err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return rows, nil
}

func (r *sqlxRepository) IncomeBetween(ctx context.Context, authorID uuid.UUID, from, to time.Time) ([]model.TransactionRow, error) {
	const query = `
		SELECT id, type, amount, description, balance_after, created_at
		FROM coin_transactions
		WHERE profile_id = $1 AND type = ANY($2) AND created_at >= $3 AND created_at < $4
		ORDER BY created_at`

	rows := []model.TransactionRow{}
	if err := r.db.SelectContext(ctx, &rows, query, authorID, pq.Array(model.IncomeTypes), from, to); err != nil {
		return nil, fmt.Errorf("income between: %w", err)
	}
	return rows, nil
}

// =====================================================
// ADMIN
// =====================================================

func (r *sqlxRepository) PlatformTotals(ctx context.Context) (*model.PlatformTotals, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM profiles WHERE is_active) AS users,
			(SELECT COUNT(*) FROM profiles WHERE is_active AND role = 'author') AS authors,
			(SELECT COUNT(*) FROM novels) AS novels,
			(SELECT COUNT(*) FROM chapters) AS chapters,
			(SELECT COALESCE(SUM(coins), 0) FROM profiles) AS coins_in_circulation,
			(SELECT COUNT(*) FROM subscriptions WHERE status = 'active') AS active_subscriptions`

	var totals model.PlatformTotals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("platform totals: %w", err)
	}
	return &totals, nil
}

func (r *sqlxRepository) RevenueByProvider(ctx context.Context) ([]model.Revenue, error) {
	const query = `
		SELECT provider, currency, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS orders
		FROM payment_orders
		WHERE status = 'captured'
		GROUP BY provider, currency
		ORDER BY provider, currency`

	revenue := []model.Revenue{}
	if err := r.db.SelectContext(ctx, &revenue, query); err != nil {
		return nil, fmt.Errorf("revenue: %w", err)
	}
	return revenue, nil
}

func (r *sqlxRepository) TopNovels(ctx context.Context, limit int) ([]model.NovelStats, error) {
	query := `SELECT ` + novelStatsColumns + ` FROM novels ORDER BY view_count DESC LIMIT $1`

	novels := []model.NovelStats{}
	if err := r.db.SelectContext(ctx, &novels, query, limit); err != nil {
		return nil, fmt.Errorf("top novels: %w", err)
	}
	return novels, nil
}

// =====================================================
// VIEWS
// =====================================================

func (r *sqlxRepository) AddViews(ctx context.Context, views map[uuid.UUID]int64) error {
	if len(views) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PreparexContext(ctx, `UPDATE novels SET view_count = view_count + $2 WHERE id = $1`)
	if err != nil {
		return fmt.Errorf("prepare add views: %w", err)
	}
	defer stmt.Close()

	for id, n := range views {
		// novel đã bị xoá thì UPDATE 0 row, bỏ qua
		if _, err := stmt.ExecContext(ctx, id, n); err != nil {
			return fmt.Errorf("add views %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add views: %w", err)
	}
	return nil
}
