package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"novelhub-backend/internal/domains/comment/model"
	"novelhub-backend/internal/infrastructure/database"
	"novelhub-backend/internal/shared/utils"
	pkgdb "novelhub-backend/pkg/database"
)

type postgresCommentRepository struct {
	db pkgdb.DBTX
}

func NewPostgresCommentRepository(db pkgdb.DBTX) CommentRepository {
	return &postgresCommentRepository{db: db}
}

const selectComment = `
	SELECT c.id, c.chapter_id, c.profile_id, c.paragraph_id, c.parent_id, c.body, c.created_at, c.updated_at,
	       p.username, p.display_name, p.avatar_url
	FROM chapter_comments c
	JOIN profiles p ON p.id = c.profile_id
`

func scanComment(row pgx.Row) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(
		&c.ID, &c.ChapterID, &c.ProfileID, &c.ParagraphID, &c.ParentID, &c.Body, &c.CreatedAt, &c.UpdatedAt,
		&c.Username, &c.DisplayName, &c.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO chapter_comments (id, chapter_id, profile_id, paragraph_id, parent_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.ChapterID, c.ProfileID, c.ParagraphID, c.ParentID, c.Body, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			if database.ConstraintName(err) == "chapter_comments_parent_id_fkey" {
				return model.ErrInvalidParent
			}
			return model.ErrChapterNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *postgresCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, selectComment+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (r *postgresCommentRepository) UpdateBody(ctx context.Context, id uuid.UUID, body string) error {
	tag, err := r.db.Exec(ctx, `UPDATE chapter_comments SET body = $2, updated_at = NOW() WHERE id = $1`, id, body)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

// Delete xóa luôn replies (ON DELETE CASCADE)
func (r *postgresCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM chapter_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

func (r *postgresCommentRepository) List(ctx context.Context, chapterID uuid.UUID, paragraphID *string, limit, offset int) ([]model.Comment, int, error) {
	w := &utils.WhereBuilder{}
	w.Add("c.chapter_id = ?", chapterID)
	if paragraphID != nil {
		w.Add("c.paragraph_id = ?", *paragraphID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM chapter_comments c ` + w.SQL()
	if err := r.db.QueryRow(ctx, countQuery, w.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := selectComment + " " + w.SQL() +
		fmt.Sprintf(` ORDER BY c.created_at ASC LIMIT %s OFFSET %s`, w.Arg(limit), w.Arg(offset))
	rows, err := r.db.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, total, rows.Err()
}

func (r *postgresCommentRepository) CountsByParagraph(ctx context.Context, chapterID uuid.UUID) ([]model.ParagraphCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT paragraph_id, COUNT(*)
		FROM chapter_comments
		WHERE chapter_id = $1 AND paragraph_id IS NOT NULL
		GROUP BY paragraph_id
		ORDER BY paragraph_id
	`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("count comments by paragraph: %w", err)
	}
	defer rows.Close()

	counts := make([]model.ParagraphCount, 0)
	for rows.Next() {
		var pc model.ParagraphCount
		if err := rows.Scan(&pc.ParagraphID, &pc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}
