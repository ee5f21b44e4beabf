package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/infrastructure/database"
	"novelhub-backend/internal/shared/utils"
	pkgdb "novelhub-backend/pkg/database"
)

const selectNovel = `
	SELECT
		n.id, n.author_id, p.username, p.display_name,
		n.title, n.slug, n.description, n.cover_url, n.status,
		ARRAY(
			SELECT t.name FROM novel_tags nt JOIN tags t ON t.id = nt.tag_id
			WHERE nt.novel_id = n.id ORDER BY t.name
		) AS tags,
		n.view_count, n.bookmark_count, n.chapter_count, n.last_chapter_at,
		n.is_featured, n.created_at, n.updated_at
	FROM novels n
	JOIN profiles p ON p.id = n.author_id`

var sortClauses = map[string]string{
	model.SortLatest:  "n.last_chapter_at DESC NULLS LAST, n.created_at DESC",
	model.SortPopular: "n.bookmark_count DESC, n.view_count DESC",
	model.SortViews:   "n.view_count DESC",
	model.SortTitle:   "LOWER(n.title) ASC",
}

type postgresNovelRepository struct {
	db pkgdb.DBTX
}

func NewPostgresNovelRepository(db pkgdb.DBTX) NovelRepository {
	return &postgresNovelRepository{db: db}
}

func scanNovel(row pgx.Row) (*model.Novel, error) {
	n := &model.Novel{}
	var tags []string
	err := row.Scan(
		&n.ID, &n.AuthorID, &n.AuthorUsername, &n.AuthorName,
		&n.Title, &n.Slug, &n.Description, &n.CoverURL, &n.Status,
		pq.Array(&tags),
		&n.ViewCount, &n.BookmarkCount, &n.ChapterCount, &n.LastChapterAt,
		&n.IsFeatured, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNovelNotFound
		}
		return nil, err
	}
	n.Tags = tags
	return n, nil
}

// =====================================================
// WRITE
// =====================================================

func (r *postgresNovelRepository) Create(ctx context.Context, q pkgdb.DBTX, n *model.Novel) error {
	query := `
		INSERT INTO novels (id, author_id, title, slug, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.Exec(ctx, query, n.ID, n.AuthorID, n.Title, n.Slug, n.Description, n.Status, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrSlugExists
		}
		return fmt.Errorf("insert novel: %w", err)
	}
	return nil
}

func (r *postgresNovelRepository) Update(ctx context.Context, q pkgdb.DBTX, n *model.Novel) error {
	query := `
		UPDATE novels
		SET title = $2, slug = $3, description = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := q.QueryRow(ctx, query, n.ID, n.Title, n.Slug, n.Description, n.Status).Scan(&n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNovelNotFound
		}
		if database.IsUniqueViolation(err) {
			return model.ErrSlugExists
		}
		return fmt.Errorf("update novel: %w", err)
	}
	return nil
}

func (r *postgresNovelRepository) ReplaceTags(ctx context.Context, q pkgdb.DBTX, novelID uuid.UUID, tags []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM novel_tags WHERE novel_id = $1`, novelID); err != nil {
		return fmt.Errorf("clear novel tags: %w", err)
	}

	names, slugs := normalizeTags(tags)
	if len(names) == 0 {
		return nil
	}

	// upsert tags theo slug rồi link vào novel trong một statement
	query := `
		WITH input AS (
			SELECT * FROM unnest($2::text[], $3::text[]) AS x(name, slug)
		), upserted AS (
			INSERT INTO tags (name, slug)
			SELECT name, slug FROM input
			ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			RETURNING id
		)
		INSERT INTO novel_tags (novel_id, tag_id)
		SELECT $1, id FROM upserted
		ON CONFLICT DO NOTHING
	`
	if _, err := q.Exec(ctx, query, novelID, pq.Array(names), pq.Array(slugs)); err != nil {
		return fmt.Errorf("link novel tags: %w", err)
	}
	return nil
}

// normalizeTags trim + bỏ trùng theo slug
func normalizeTags(tags []string) ([]string, []string) {
	seen := make(map[string]bool, len(tags))
	names := make([]string, 0, len(tags))
	slugs := make([]string, 0, len(tags))
	for _, t := range tags {
		name := strings.TrimSpace(t)
		slug := utils.GenerateSlug(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		names = append(names, name)
		slugs = append(slugs, slug)
	}
	return names, slugs
}

func (r *postgresNovelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM novels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete novel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNovelNotFound
	}
	return nil
}

func (r *postgresNovelRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE novels SET is_featured = $2, updated_at = NOW() WHERE id = $1`, id, featured)
	if err != nil {
		return fmt.Errorf("set featured: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNovelNotFound
	}
	return nil
}

func (r *postgresNovelRepository) SetCoverURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.db.Exec(ctx, `UPDATE novels SET cover_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("set cover url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNovelNotFound
	}
	return nil
}

// =====================================================
// READ
// =====================================================

func (r *postgresNovelRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Novel, error) {
	return scanNovel(r.db.QueryRow(ctx, selectNovel+` WHERE n.id = $1`, id))
}

func (r *postgresNovelRepository) GetBySlug(ctx context.Context, slug string) (*model.Novel, error) {
	return scanNovel(r.db.QueryRow(ctx, selectNovel+` WHERE n.slug = $1`, slug))
}

func (r *postgresNovelRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM novels WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *postgresNovelRepository) List(ctx context.Context, f model.ListFilter) ([]model.Novel, int, error) {
	var where utils.WhereBuilder
	if f.Query != "" {
		pattern := utils.ContainsPattern(f.Query)
		where.Add(`(n.title ILIKE ? ESCAPE '\' OR n.description ILIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.TagSlug != "" {
		where.Add(`EXISTS (
			SELECT 1 FROM novel_tags nt JOIN tags t ON t.id = nt.tag_id
			WHERE nt.novel_id = n.id AND t.slug = ?)`, f.TagSlug)
	}
	if f.Status != "" {
		where.Add("n.status = ?", f.Status)
	}
	if f.AuthorID != nil {
		where.Add("n.author_id = ?", *f.AuthorID)
	}
	if !f.IncludeDrafts {
		where.Add("n.status <> ?", model.StatusDraft)
	}
	if f.FeaturedOnly {
		where.Add("n.is_featured = ?", true)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM novels n ` + where.SQL()
	if err := r.db.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count novels: %w", err)
	}

	orderBy, ok := sortClauses[f.Sort]
	if !ok {
		orderBy = sortClauses[model.SortLatest]
	}

	query := fmt.Sprintf(`%s %s ORDER BY %s LIMIT %s OFFSET %s`,
		selectNovel, where.SQL(), orderBy, where.Arg(f.Limit), where.Arg(f.Offset))

	rows, err := r.db.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list novels: %w", err)
	}
	defer rows.Close()

	novels := make([]model.Novel, 0, f.Limit)
	for rows.Next() {
		n, err := scanNovel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan novel: %w", err)
		}
		novels = append(novels, *n)
	}
	return novels, total, rows.Err()
}

func (r *postgresNovelRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug, COUNT(n.id)
		FROM tags t
		LEFT JOIN novel_tags nt ON nt.tag_id = t.id
		LEFT JOIN novels n ON n.id = nt.novel_id AND n.status <> 'draft'
		GROUP BY t.id
		ORDER BY COUNT(n.id) DESC, t.name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.NovelCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
