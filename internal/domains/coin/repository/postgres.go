package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"novelhub-backend/internal/domains/coin/model"
	"novelhub-backend/internal/infrastructure/database"
	"novelhub-backend/internal/shared/utils"
	pkgdb "novelhub-backend/pkg/database"
)

type postgresRepository struct {
	db pkgdb.DBTX
}

func NewPostgresRepository(db pkgdb.DBTX) Repository {
	return &postgresRepository{db: db}
}

// =====================================================
// BALANCE (trong transaction)
// =====================================================

func (r *postgresRepository) LockBalance(ctx context.Context, q pkgdb.DBTX, profileID uuid.UUID) (int64, error) {
	var coins int64
	err := q.QueryRow(ctx, `SELECT coins FROM profiles WHERE id = $1 FOR UPDATE`, profileID).Scan(&coins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrProfileNotFound
		}
		return 0, fmt.Errorf("lock balance: %w", err)
	}
	return coins, nil
}

func (r *postgresRepository) SetBalance(ctx context.Context, q pkgdb.DBTX, profileID uuid.UUID, balance int64) error {
	tag, err := q.Exec(ctx, `UPDATE profiles SET coins = $2, updated_at = NOW() WHERE id = $1`, profileID, balance)
	if err != nil {
		// CHECK (coins >= 0) là lớp bảo vệ cuối
		if database.IsCheckViolation(err) {
			return model.ErrInsufficientCoins
		}
		return fmt.Errorf("set balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}

func (r *postgresRepository) InsertTransaction(ctx context.Context, q pkgdb.DBTX, t *model.Transaction) error {
	query := `
		INSERT INTO coin_transactions
			(id, profile_id, amount, type, reference_id, counterparty_id, description, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := q.Exec(ctx, query,
		t.ID, t.ProfileID, t.Amount, t.Type, t.ReferenceID, t.CounterpartyID,
		t.Description, t.BalanceAfter, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert coin transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) InsertPurchase(ctx context.Context, q pkgdb.DBTX, p *model.ChapterPurchase) error {
	query := `
		INSERT INTO chapter_purchases (profile_id, chapter_id, coins, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := q.Exec(ctx, query, p.ProfileID, p.ChapterID, p.Coins, p.CreatedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrAlreadyPurchased
		}
		return fmt.Errorf("insert chapter purchase: %w", err)
	}
	return nil
}

// =====================================================
// READ
// =====================================================

func (r *postgresRepository) GetBalance(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var coins int64
	err := r.db.QueryRow(ctx, `SELECT coins FROM profiles WHERE id = $1`, profileID).Scan(&coins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrProfileNotFound
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return coins, nil
}

func (r *postgresRepository) ListTransactions(ctx context.Context, profileID uuid.UUID, txType string, limit, offset int) ([]model.Transaction, int, error) {
	var where utils.WhereBuilder
	where.Add("profile_id = ?", profileID)
	if txType != "" {
		where.Add("type = ?", txType)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM coin_transactions ` + where.SQL()
	if err := r.db.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coin transactions: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, profile_id, amount, type, reference_id, counterparty_id, description, balance_after, created_at
		FROM coin_transactions
		%s
		ORDER BY created_at DESC, id
		LIMIT %s OFFSET %s
	`, where.SQL(), where.Arg(limit), where.Arg(offset))

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list coin transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]model.Transaction, 0, limit)
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(
			&t.ID, &t.ProfileID, &t.Amount, &t.Type, &t.ReferenceID, &t.CounterpartyID,
			&t.Description, &t.BalanceAfter, &t.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan coin transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, total, rows.Err()
}

func (r *postgresRepository) HasPurchased(ctx context.Context, profileID, chapterID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM chapter_purchases WHERE profile_id = $1 AND chapter_id = $2)`
	if err := r.db.QueryRow(ctx, query, profileID, chapterID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check chapter purchase: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) PurchasedChapterIDs(ctx context.Context, profileID uuid.UUID, chapterIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(chapterIDs))
	if len(chapterIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT chapter_id FROM chapter_purchases WHERE profile_id = $1 AND chapter_id = ANY($2)`,
		profileID, chapterIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchased chapters: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func (r *postgresRepository) GetChapterPrice(ctx context.Context, chapterID uuid.UUID) (*model.ChapterPrice, error) {
	query := `
		SELECT c.id, c.novel_id, n.author_id, n.slug, c.chapter_number, c.title, c.coins
		FROM chapters c
		JOIN novels n ON n.id = c.novel_id
		WHERE c.id = $1
	`
	p := &model.ChapterPrice{}
	err := r.db.QueryRow(ctx, query, chapterID).Scan(
		&p.ChapterID, &p.NovelID, &p.AuthorID, &p.NovelSlug, &p.ChapterNumber, &p.Title, &p.Coins,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrChapterNotFound
		}
		return nil, fmt.Errorf("get chapter price: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) FindProfileByUsername(ctx context.Context, username string) (*model.ProfileRef, error) {
	return r.findProfile(ctx, `LOWER(username) = LOWER($1)`, username)
}

func (r *postgresRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (*model.ProfileRef, error) {
	return r.findProfile(ctx, `id = $1`, id)
}

func (r *postgresRepository) findProfile(ctx context.Context, cond string, arg any) (*model.ProfileRef, error) {
	p := &model.ProfileRef{}
	err := r.db.QueryRow(ctx,
		`SELECT id, username, display_name, is_active FROM profiles WHERE `+cond, arg,
	).Scan(&p.ID, &p.Username, &p.DisplayName, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}
