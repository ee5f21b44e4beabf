package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/oauth2"

	"novelhub-backend/internal/domains/gdrive/model"
	pkgdb "novelhub-backend/pkg/database"
)

const selectJob = `
	SELECT id, profile_id, novel_id, file_ids, starting_chapter, coins, publish_at, status,
		imported, failed, error, done_files, created_at, updated_at
	FROM import_jobs`

type postgresDriveRepository struct {
	db pkgdb.DBTX
}

func NewPostgresDriveRepository(db pkgdb.DBTX) DriveRepository {
	return &postgresDriveRepository{db: db}
}

// =====================================================
// CONNECTION
// =====================================================

func (r *postgresDriveRepository) SaveToken(ctx context.Context, profileID uuid.UUID, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal drive token: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO drive_connections (profile_id, token)
		VALUES ($1, $2)
		ON CONFLICT (profile_id) DO UPDATE SET token = EXCLUDED.token, updated_at = NOW()
	`, profileID, data)
	if err != nil {
		return fmt.Errorf("save drive token: %w", err)
	}
	return nil
}

func (r *postgresDriveRepository) GetConnection(ctx context.Context, profileID uuid.UUID) (*model.DriveConnection, error) {
	var (
		conn = &model.DriveConnection{ProfileID: profileID}
		raw  []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT token, created_at, updated_at FROM drive_connections WHERE profile_id = $1
	`, profileID).Scan(&raw, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotConnected
		}
		return nil, fmt.Errorf("get drive connection: %w", err)
	}

	conn.Token = &oauth2.Token{}
	if err := json.Unmarshal(raw, conn.Token); err != nil {
		return nil, fmt.Errorf("decode drive token: %w", err)
	}
	return conn, nil
}

func (r *postgresDriveRepository) DeleteConnection(ctx context.Context, profileID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM drive_connections WHERE profile_id = $1`, profileID)
	return err
}

// =====================================================
// IMPORT JOBS
// =====================================================

func scanJob(row pgx.Row) (*model.ImportJob, error) {
	var (
		j    = &model.ImportJob{}
		done []byte
	)
	err := row.Scan(
		&j.ID, &j.ProfileID, &j.NovelID, &j.FileIDs, &j.StartingChapter, &j.Coins, &j.PublishAt, &j.Status,
		&j.Imported, &j.Failed, &j.Error, &done, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrJobNotFound
		}
		return nil, err
	}
	if len(done) > 0 {
		if err := json.Unmarshal(done, &j.DoneFiles); err != nil {
			return nil, fmt.Errorf("decode done_files: %w", err)
		}
	}
	return j, nil
}

func (r *postgresDriveRepository) CreateJob(ctx context.Context, j *model.ImportJob) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = model.JobPending
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO import_jobs (id, profile_id, novel_id, file_ids, starting_chapter, coins, publish_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, j.ID, j.ProfileID, j.NovelID, j.FileIDs, j.StartingChapter, j.Coins, j.PublishAt, j.Status,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert import job: %w", err)
	}
	return nil
}

func (r *postgresDriveRepository) GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	return scanJob(r.db.QueryRow(ctx, selectJob+` WHERE id = $1`, id))
}

func (r *postgresDriveRepository) ListJobs(ctx context.Context, profileID uuid.UUID, limit int) ([]model.ImportJob, error) {
	rows, err := r.db.Query(ctx, selectJob+` WHERE profile_id = $1 ORDER BY created_at DESC LIMIT $2`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("list import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.ImportJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *postgresDriveRepository) ClaimJob(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE import_jobs SET status = 'running', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'running')
	`, id)
	if err != nil {
		return false, fmt.Errorf("claim import job: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RecordFile ghi file đã tạo chapter; task bị giao lại sẽ bỏ qua file này
func (r *postgresDriveRepository) RecordFile(ctx context.Context, id uuid.UUID, fileID string, chapterNumber int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE import_jobs
		SET done_files = done_files || jsonb_build_object($2::text, $3::int), updated_at = NOW()
		WHERE id = $1
	`, id, fileID, chapterNumber)
	if err != nil {
		return fmt.Errorf("record imported file: %w", err)
	}
	return nil
}

func (r *postgresDriveRepository) FinishJob(ctx context.Context, j *model.ImportJob) error {
	err := r.db.QueryRow(ctx, `
		UPDATE import_jobs SET status = $2, imported = $3, failed = $4, error = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, j.ID, j.Status, j.Imported, j.Failed, j.Error).Scan(&j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrJobNotFound
		}
		return fmt.Errorf("finish import job: %w", err)
	}
	return nil
}
