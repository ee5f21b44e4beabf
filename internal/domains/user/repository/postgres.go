package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"novelhub-backend/internal/domains/user/model"
	"novelhub-backend/internal/infrastructure/database"
	"novelhub-backend/internal/shared/utils"
	pkgdb "novelhub-backend/pkg/database"
)

const profileColumns = `
	id, email, username, display_name, password_hash, role, coins,
	avatar_url, bio, kofi_username, subscription_price, subscription_tier,
	is_active, created_at, updated_at`

type postgresRepository struct {
	db pkgdb.DBTX
}

func NewPostgresRepository(db pkgdb.DBTX) Repository {
	return &postgresRepository{db: db}
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	p := &model.Profile{}
	err := row.Scan(
		&p.ID, &p.Email, &p.Username, &p.DisplayName, &p.PasswordHash, &p.Role, &p.Coins,
		&p.AvatarURL, &p.Bio, &p.KofiUsername, &p.SubscriptionPrice, &p.SubscriptionTier,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return p, nil
}

// translateConflict map unique violation sang lỗi theo constraint
func translateConflict(err error) error {
	if !database.IsUniqueViolation(err) {
		return err
	}
	constraint := database.ConstraintName(err)
	switch {
	case strings.Contains(constraint, "email"):
		return model.ErrEmailExists
	case strings.Contains(constraint, "username") && strings.Contains(constraint, "kofi"):
		return model.ErrKofiUsernameTaken
	case strings.Contains(constraint, "username"):
		return model.ErrUsernameExists
	}
	return err
}

// =====================================================
// CREATE / READ
// =====================================================

func (r *postgresRepository) Create(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (id, email, username, display_name, password_hash, role, coins, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Email, p.Username, p.DisplayName, p.PasswordHash,
		p.Role, p.Coins, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if conflict := translateConflict(err); conflict != err {
			return conflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = LOWER($1)`
	return scanProfile(r.db.QueryRow(ctx, query, email))
}

func (r *postgresRepository) FindByUsername(ctx context.Context, username string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(username) = LOWER($1)`
	return scanProfile(r.db.QueryRow(ctx, query, username))
}

func (r *postgresRepository) FindByKofiUsername(ctx context.Context, kofiUsername string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(kofi_username) = LOWER($1)`
	return scanProfile(r.db.QueryRow(ctx, query, kofiUsername))
}

// =====================================================
// UPDATE
// =====================================================

func (r *postgresRepository) UpdateProfile(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $2, bio = $3, avatar_url = $4, kofi_username = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, p.ID, p.DisplayName, p.Bio, p.AvatarURL, p.KofiUsername).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrUserNotFound
		}
		if conflict := translateConflict(err); conflict != err {
			return conflict
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, isActive)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// =====================================================
// ADMIN LIST
// =====================================================

func (r *postgresRepository) List(ctx context.Context, req model.ListUsersRequest) ([]model.Profile, int, error) {
	_, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	var where utils.WhereBuilder
	if req.Role != "" {
		where.Add("role = ?", req.Role)
	}
	if s := strings.TrimSpace(req.Search); s != "" {
		pattern := utils.ContainsPattern(s)
		where.Add(`(username ILIKE ? ESCAPE '\' OR email ILIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM profiles ` + where.SQL()
	if err := r.db.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM profiles %s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		profileColumns, where.SQL(), where.Arg(limit), where.Arg(offset))

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0, limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, total, rows.Err()
}
