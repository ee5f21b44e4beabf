package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"novelhub-backend/internal/domains/chapter/model"
	"novelhub-backend/internal/infrastructure/database"
	pkgdb "novelhub-backend/pkg/database"
)

const chapterColumns = `
	id, novel_id, chapter_number, part_number, title, slug, content, word_count,
	coins, publish_at, created_at, updated_at`

// thứ tự đọc: chapter_number rồi part_number (NULL = part 0)
const readingOrder = `chapter_number, COALESCE(part_number, 0)`

type postgresChapterRepository struct {
	db pkgdb.DBTX
}

func NewPostgresChapterRepository(db pkgdb.DBTX) ChapterRepository {
	return &postgresChapterRepository{db: db}
}

func scanChapter(row pgx.Row) (*model.Chapter, error) {
	c := &model.Chapter{}
	err := row.Scan(
		&c.ID, &c.NovelID, &c.ChapterNumber, &c.PartNumber, &c.Title, &c.Slug, &c.Content,
		&c.WordCount, &c.Coins, &c.PublishAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrChapterNotFound
		}
		return nil, err
	}
	return c, nil
}

// =====================================================
// WRITE
// =====================================================

func (r *postgresChapterRepository) Create(ctx context.Context, q pkgdb.DBTX, c *model.Chapter) error {
	query := `
		INSERT INTO chapters (` + chapterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := q.Exec(ctx, query,
		c.ID, c.NovelID, c.ChapterNumber, c.PartNumber, c.Title, c.Slug, c.Content,
		c.WordCount, c.Coins, c.PublishAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrNumberExists
		}
		return fmt.Errorf("insert chapter: %w", err)
	}
	return nil
}

func (r *postgresChapterRepository) Update(ctx context.Context, q pkgdb.DBTX, c *model.Chapter) error {
	query := `
		UPDATE chapters
		SET chapter_number = $2, part_number = $3, title = $4, slug = $5, content = $6,
			word_count = $7, coins = $8, publish_at = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		c.ID, c.ChapterNumber, c.PartNumber, c.Title, c.Slug, c.Content,
		c.WordCount, c.Coins, c.PublishAt, c.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrNumberExists
		}
		return fmt.Errorf("update chapter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrChapterNotFound
	}
	return nil
}

func (r *postgresChapterRepository) Delete(ctx context.Context, q pkgdb.DBTX, id uuid.UUID) error {
	tag, err := q.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrChapterNotFound
	}
	return nil
}

func (r *postgresChapterRepository) RefreshNovelStats(ctx context.Context, q pkgdb.DBTX, novelID uuid.UUID, now time.Time) error {
	query := `
		UPDATE novels n SET
			chapter_count = s.cnt,
			last_chapter_at = s.last_at,
			updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS cnt, MAX(COALESCE(publish_at, created_at)) AS last_at
			FROM chapters
			WHERE novel_id = $1 AND (publish_at IS NULL OR publish_at <= $2)
		) s
		WHERE n.id = $1
	`
	if _, err := q.Exec(ctx, query, novelID, now); err != nil {
		return fmt.Errorf("refresh novel stats: %w", err)
	}
	return nil
}

// =====================================================
// READ
// =====================================================

func (r *postgresChapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Chapter, error) {
	return scanChapter(r.db.QueryRow(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE id = $1`, id))
}

func (r *postgresChapterRepository) GetByNumber(ctx context.Context, novelID uuid.UUID, number int, part *int) (*model.Chapter, error) {
	query := `
		SELECT ` + chapterColumns + ` FROM chapters
		WHERE novel_id = $1 AND chapter_number = $2 AND COALESCE(part_number, 0) = COALESCE($3::int, 0)
	`
	return scanChapter(r.db.QueryRow(ctx, query, novelID, number, part))
}

func (r *postgresChapterRepository) ListByNovel(ctx context.Context, novelID uuid.UUID, publishedBefore *time.Time) ([]model.Chapter, error) {
	query := `
		SELECT id, novel_id, chapter_number, part_number, title, slug, '' AS content, word_count,
			coins, publish_at, created_at, updated_at
		FROM chapters
		WHERE novel_id = $1 AND ($2::timestamptz IS NULL OR publish_at IS NULL OR publish_at <= $2)
		ORDER BY ` + readingOrder

	rows, err := r.db.Query(ctx, query, novelID, publishedBefore)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	chapters := []model.Chapter{}
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, *c)
	}
	return chapters, rows.Err()
}

func (r *postgresChapterRepository) Neighbors(ctx context.Context, c *model.Chapter, publishedBefore *time.Time) (*model.ChapterRef, *model.ChapterRef, error) {
	part := 0
	if c.PartNumber != nil {
		part = *c.PartNumber
	}
	visible := `novel_id = $1 AND ($4::timestamptz IS NULL OR publish_at IS NULL OR publish_at <= $4)`

	prevQuery := `
		SELECT id, chapter_number, part_number, title FROM chapters
		WHERE ` + visible + ` AND (chapter_number, COALESCE(part_number, 0)) < ($2, $3)
		ORDER BY chapter_number DESC, COALESCE(part_number, 0) DESC
		LIMIT 1
	`
	nextQuery := `
		SELECT id, chapter_number, part_number, title FROM chapters
		WHERE ` + visible + ` AND (chapter_number, COALESCE(part_number, 0)) > ($2, $3)
		ORDER BY ` + readingOrder + `
		LIMIT 1
	`

	prev, err := r.ref(ctx, prevQuery, c.NovelID, c.ChapterNumber, part, publishedBefore)
	if err != nil {
		return nil, nil, err
	}
	next, err := r.ref(ctx, nextQuery, c.NovelID, c.ChapterNumber, part, publishedBefore)
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func (r *postgresChapterRepository) ref(ctx context.Context, query string, args ...any) (*model.ChapterRef, error) {
	ref := &model.ChapterRef{}
	err := r.db.QueryRow(ctx, query, args...).Scan(&ref.ID, &ref.ChapterNumber, &ref.PartNumber, &ref.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("chapter neighbor: %w", err)
	}
	return ref, nil
}

func (r *postgresChapterRepository) MaxNumber(ctx context.Context, novelID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(chapter_number), 0) FROM chapters WHERE novel_id = $1`, novelID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("max chapter number: %w", err)
	}
	return n, nil
}
