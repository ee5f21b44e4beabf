package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"novelhub-backend/internal/domains/payment/model"
	"novelhub-backend/internal/infrastructure/database"
	"novelhub-backend/internal/shared/utils"
	pkgdb "novelhub-backend/pkg/database"
)

const selectOrder = `
	SELECT id, profile_id, provider, provider_order_id, package_id, coins, amount, currency,
		status, payer_email, note, created_at, updated_at
	FROM payment_orders`

type postgresPaymentRepository struct {
	db pkgdb.DBTX
}

func NewPostgresPaymentRepository(db pkgdb.DBTX) PaymentRepository {
	return &postgresPaymentRepository{db: db}
}

func scanOrder(row pgx.Row) (*model.PaymentOrder, error) {
	o := &model.PaymentOrder{}
	err := row.Scan(
		&o.ID, &o.ProfileID, &o.Provider, &o.ProviderOrderID, &o.PackageID, &o.Coins, &o.Amount, &o.Currency,
		&o.Status, &o.PayerEmail, &o.Note, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func collectOrders(rows pgx.Rows) ([]model.PaymentOrder, error) {
	defer rows.Close()
	var out []model.PaymentOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// =====================================================
// WRITE (trong transaction)
// =====================================================

func (r *postgresPaymentRepository) Create(ctx context.Context, q pkgdb.DBTX, o *model.PaymentOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	err := q.QueryRow(ctx, `
		INSERT INTO payment_orders (id, profile_id, provider, provider_order_id, package_id, coins,
			amount, currency, status, payer_email, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, o.ID, o.ProfileID, o.Provider, o.ProviderOrderID, o.PackageID, o.Coins,
		o.Amount, o.Currency, o.Status, o.PayerEmail, o.Note,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrDuplicateOrder
		}
		return fmt.Errorf("insert payment order: %w", err)
	}
	return nil
}

func (r *postgresPaymentRepository) LockByID(ctx context.Context, q pkgdb.DBTX, id uuid.UUID) (*model.PaymentOrder, error) {
	o, err := scanOrder(q.QueryRow(ctx, selectOrder+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil && !errors.Is(err, model.ErrOrderNotFound) {
		return nil, fmt.Errorf("lock payment order: %w", err)
	}
	return o, err
}

func (r *postgresPaymentRepository) Update(ctx context.Context, q pkgdb.DBTX, o *model.PaymentOrder) error {
	err := q.QueryRow(ctx, `
		UPDATE payment_orders
		SET status = $2, profile_id = $3, coins = $4, payer_email = $5, note = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, o.ID, o.Status, o.ProfileID, o.Coins, o.PayerEmail, o.Note).Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrOrderNotFound
		}
		return fmt.Errorf("update payment order: %w", err)
	}
	return nil
}

// =====================================================
// READ
// =====================================================

func (r *postgresPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentOrder, error) {
	return scanOrder(r.db.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
}

func (r *postgresPaymentRepository) GetByProviderOrderID(ctx context.Context, provider model.Provider, providerOrderID string) (*model.PaymentOrder, error) {
	return scanOrder(r.db.QueryRow(ctx, selectOrder+` WHERE provider = $1 AND provider_order_id = $2`, provider, providerOrderID))
}

func (r *postgresPaymentRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, status string, limit, offset int) ([]model.PaymentOrder, int, error) {
	w := &utils.WhereBuilder{}
	w.Add("profile_id = ?", profileID)
	if status != "" {
		w.Add("status = ?", status)
	}
	return r.list(ctx, w, limit, offset)
}

func (r *postgresPaymentRepository) ListByStatus(ctx context.Context, status model.Status, limit, offset int) ([]model.PaymentOrder, int, error) {
	w := &utils.WhereBuilder{}
	w.Add("status = ?", status)
	return r.list(ctx, w, limit, offset)
}

func (r *postgresPaymentRepository) list(ctx context.Context, w *utils.WhereBuilder, limit, offset int) ([]model.PaymentOrder, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payment_orders `+w.SQL(), w.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payment orders: %w", err)
	}

	query := selectOrder + " " + w.SQL() +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %s OFFSET %s", w.Arg(limit), w.Arg(offset))
	rows, err := r.db.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payment orders: %w", err)
	}
	orders, err := collectOrders(rows)
	return orders, total, err
}

// =====================================================
// PROFILE LOOKUP
// =====================================================

func (r *postgresPaymentRepository) findProfile(ctx context.Context, where string, arg interface{}) (*model.ProfileRef, error) {
	p := &model.ProfileRef{}
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email FROM profiles WHERE is_active AND `+where+` LIMIT 1
	`, arg).Scan(&p.ID, &p.Username, &p.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (r *postgresPaymentRepository) FindProfileByEmail(ctx context.Context, email string) (*model.ProfileRef, error) {
	return r.findProfile(ctx, `LOWER(email) = LOWER($1)`, email)
}

// FindProfileByKofiName ưu tiên kofi_username đã khai báo, sau đó tới username
func (r *postgresPaymentRepository) FindProfileByKofiName(ctx context.Context, name string) (*model.ProfileRef, error) {
	return r.findProfile(ctx, `(LOWER(kofi_username) = LOWER($1) OR LOWER(username) = LOWER($1))
		ORDER BY (LOWER(kofi_username) = LOWER($1)) DESC NULLS LAST`, name)
}

func (r *postgresPaymentRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (*model.ProfileRef, error) {
	return r.findProfile(ctx, `id = $1`, id)
}
