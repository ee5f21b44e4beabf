package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/bookmark/model"
	"novelhub-backend/internal/infrastructure/database"
	pkgdb "novelhub-backend/pkg/database"
)

type postgresBookmarkRepository struct {
	db pkgdb.DBTX
}

func NewPostgresBookmarkRepository(db pkgdb.DBTX) BookmarkRepository {
	return &postgresBookmarkRepository{db: db}
}

func (r *postgresBookmarkRepository) Insert(ctx context.Context, q pkgdb.DBTX, profileID, novelID uuid.UUID) error {
	_, err := q.Exec(ctx, `INSERT INTO bookmarks (profile_id, novel_id) VALUES ($1, $2)`, profileID, novelID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrAlreadyBookmarked
		}
		if database.IsForeignKeyViolation(err) {
			return model.ErrNovelNotFound
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

func (r *postgresBookmarkRepository) Delete(ctx context.Context, q pkgdb.DBTX, profileID, novelID uuid.UUID) error {
	tag, err := q.Exec(ctx, `DELETE FROM bookmarks WHERE profile_id = $1 AND novel_id = $2`, profileID, novelID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookmarkNotFound
	}
	return nil
}

func (r *postgresBookmarkRepository) AdjustNovelCount(ctx context.Context, q pkgdb.DBTX, novelID uuid.UUID, delta int) error {
	_, err := q.Exec(ctx, `
		UPDATE novels SET bookmark_count = GREATEST(bookmark_count + $2, 0)
		WHERE id = $1
	`, novelID, delta)
	if err != nil {
		return fmt.Errorf("adjust bookmark count: %w", err)
	}
	return nil
}

func (r *postgresBookmarkRepository) List(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]model.Bookmark, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookmarks WHERE profile_id = $1`, profileID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookmarks: %w", err)
	}

	query := `
		SELECT b.profile_id, b.novel_id, b.last_chapter_id, b.last_chapter_number, b.created_at, b.updated_at,
		       n.slug, n.title, n.cover_url, n.chapter_count, n.last_chapter_at
		FROM bookmarks b
		JOIN novels n ON n.id = b.novel_id
		WHERE b.profile_id = $1
		ORDER BY n.last_chapter_at DESC NULLS LAST, b.updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, profileID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]model.Bookmark, 0)
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(
			&b.ProfileID, &b.NovelID, &b.LastChapterID, &b.LastChapterNumber, &b.CreatedAt, &b.UpdatedAt,
			&b.NovelSlug, &b.NovelTitle, &b.NovelCoverURL, &b.NovelChapterCount, &b.NovelLastChapter,
		); err != nil {
			return nil, 0, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, total, rows.Err()
}

func (r *postgresBookmarkRepository) Exists(ctx context.Context, profileID, novelID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookmarks WHERE profile_id = $1 AND novel_id = $2)`,
		profileID, novelID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}
	return exists, nil
}

func (r *postgresBookmarkRepository) UpdateProgress(ctx context.Context, profileID, novelID, chapterID uuid.UUID, chapterNumber int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookmarks
		SET last_chapter_id = $3, last_chapter_number = $4, updated_at = NOW()
		WHERE profile_id = $1 AND novel_id = $2
	`, profileID, novelID, chapterID, chapterNumber)
	if err != nil {
		return false, fmt.Errorf("update reading progress: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
