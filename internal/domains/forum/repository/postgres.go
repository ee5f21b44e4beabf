package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"novelhub-backend/internal/domains/forum/model"
	"novelhub-backend/internal/infrastructure/database"
	"novelhub-backend/internal/shared/utils"
	pkgdb "novelhub-backend/pkg/database"
)

type postgresForumRepository struct {
	db pkgdb.DBTX
}

func NewPostgresForumRepository(db pkgdb.DBTX) ForumRepository {
	return &postgresForumRepository{db: db}
}

// =====================================================
// CATEGORIES
// =====================================================

func (r *postgresForumRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.sort_order,
		       (SELECT COUNT(*) FROM forum_threads t WHERE t.category_id = c.id)
		FROM forum_categories c
		ORDER BY c.sort_order, c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list forum categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder, &c.ThreadCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresForumRepository) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, name, slug, description, sort_order FROM forum_categories WHERE slug = $1`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get forum category: %w", err)
	}
	return &c, nil
}

func (r *postgresForumRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM forum_categories WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *postgresForumRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO forum_categories (id, name, slug, description, sort_order) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Slug, c.Description, c.SortOrder,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrCategoryExists
		}
		return fmt.Errorf("create forum category: %w", err)
	}
	return nil
}

// =====================================================
// THREADS
// =====================================================

const selectThread = `
	SELECT t.id, t.category_id, t.novel_id, t.author_id, t.title, t.slug, t.body, t.score,
	       t.message_count, t.is_pinned, t.is_locked, t.last_activity_at, t.created_at, t.updated_at,
	       c.slug, p.username, p.display_name
	FROM forum_threads t
	JOIN forum_categories c ON c.id = t.category_id
	JOIN profiles p ON p.id = t.author_id
`

func scanThread(row pgx.Row) (*model.Thread, error) {
	var t model.Thread
	err := row.Scan(
		&t.ID, &t.CategoryID, &t.NovelID, &t.AuthorID, &t.Title, &t.Slug, &t.Body, &t.Score,
		&t.MessageCount, &t.IsPinned, &t.IsLocked, &t.LastActivityAt, &t.CreatedAt, &t.UpdatedAt,
		&t.CategorySlug, &t.AuthorUsername, &t.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func threadOrder(sort string) string {
	switch sort {
	case model.SortNew:
		return "t.is_pinned DESC, t.created_at DESC"
	case model.SortTop:
		return "t.is_pinned DESC, t.score DESC, t.created_at DESC"
	default:
		return "t.is_pinned DESC, t.last_activity_at DESC"
	}
}

func (r *postgresForumRepository) ListThreads(ctx context.Context, f model.ThreadFilter, limit, offset int) ([]model.Thread, int, error) {
	w := &utils.WhereBuilder{}
	if f.CategoryID != nil {
		w.Add("t.category_id = ?", *f.CategoryID)
	}
	if f.NovelID != nil {
		w.Add("t.novel_id = ?", *f.NovelID)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM forum_threads t `+w.SQL(), w.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count forum threads: %w", err)
	}

	query := fmt.Sprintf(`%s %s ORDER BY %s LIMIT %s OFFSET %s`,
		selectThread, w.SQL(), threadOrder(f.Sort), w.Arg(limit), w.Arg(offset))
	rows, err := r.db.Query(ctx, query, w.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list forum threads: %w", err)
	}
	defer rows.Close()

	threads := make([]model.Thread, 0)
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan forum thread: %w", err)
		}
		threads = append(threads, *t)
	}
	return threads, total, rows.Err()
}

func (r *postgresForumRepository) getThread(ctx context.Context, where string, arg any) (*model.Thread, error) {
	t, err := scanThread(r.db.QueryRow(ctx, selectThread+" WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrThreadNotFound
		}
		return nil, fmt.Errorf("get forum thread: %w", err)
	}
	return t, nil
}

func (r *postgresForumRepository) GetThreadBySlug(ctx context.Context, slug string) (*model.Thread, error) {
	return r.getThread(ctx, "t.slug = $1", slug)
}

func (r *postgresForumRepository) GetThreadByID(ctx context.Context, id uuid.UUID) (*model.Thread, error) {
	return r.getThread(ctx, "t.id = $1", id)
}

func (r *postgresForumRepository) CreateThread(ctx context.Context, t *model.Thread) error {
	query := `
		INSERT INTO forum_threads
			(id, category_id, novel_id, author_id, title, slug, body, last_activity_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.CategoryID, t.NovelID, t.AuthorID, t.Title, t.Slug, t.Body,
		t.LastActivityAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) && database.ConstraintName(err) == "forum_threads_category_id_fkey" {
			return model.ErrCategoryNotFound
		}
		return fmt.Errorf("create forum thread: %w", err)
	}
	return nil
}

func (r *postgresForumRepository) UpdateThread(ctx context.Context, t *model.Thread) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE forum_threads SET title = $2, body = $3, updated_at = $4 WHERE id = $1`,
		t.ID, t.Title, t.Body, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update forum thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrThreadNotFound
	}
	return nil
}

// DeleteThread: messages xóa theo cascade, votes dọn tay vì target_id không có FK
func (r *postgresForumRepository) DeleteThread(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM forum_votes
		WHERE (target_type = 'thread' AND target_id = $1)
		   OR (target_type = 'message' AND target_id IN (SELECT id FROM forum_messages WHERE thread_id = $1))
	`, id)
	if err != nil {
		return fmt.Errorf("delete thread votes: %w", err)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM forum_threads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete forum thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrThreadNotFound
	}
	return nil
}

func (r *postgresForumRepository) SetModeration(ctx context.Context, id uuid.UUID, pinned, locked bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE forum_threads SET is_pinned = $2, is_locked = $3, updated_at = NOW() WHERE id = $1`,
		id, pinned, locked,
	)
	if err != nil {
		return fmt.Errorf("moderate forum thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrThreadNotFound
	}
	return nil
}

// =====================================================
// MESSAGES
// =====================================================

const selectMessage = `
	SELECT m.id, m.thread_id, m.author_id, m.parent_id, m.body, m.score, m.is_deleted,
	       m.created_at, m.updated_at, p.username, p.display_name
	FROM forum_messages m
	JOIN profiles p ON p.id = m.author_id
`

func scanMessage(row pgx.Row) (*model.Message, error) {
	var m model.Message
	err := row.Scan(
		&m.ID, &m.ThreadID, &m.AuthorID, &m.ParentID, &m.Body, &m.Score, &m.IsDeleted,
		&m.CreatedAt, &m.UpdatedAt, &m.AuthorUsername, &m.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresForumRepository) ListMessages(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]model.Message, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM forum_messages WHERE thread_id = $1`, threadID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count forum messages: %w", err)
	}

	rows, err := r.db.Query(ctx,
		selectMessage+` WHERE m.thread_id = $1 ORDER BY m.created_at ASC LIMIT $2 OFFSET $3`,
		threadID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list forum messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan forum message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, total, rows.Err()
}

func (r *postgresForumRepository) GetMessage(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	m, err := scanMessage(r.db.QueryRow(ctx, selectMessage+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrMessageNotFound
		}
		return nil, fmt.Errorf("get forum message: %w", err)
	}
	return m, nil
}

func (r *postgresForumRepository) CreateMessage(ctx context.Context, q pkgdb.DBTX, m *model.Message) error {
	_, err := q.Exec(ctx, `
		INSERT INTO forum_messages (id, thread_id, author_id, parent_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.ThreadID, m.AuthorID, m.ParentID, m.Body, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return model.ErrThreadNotFound
		}
		return fmt.Errorf("create forum message: %w", err)
	}
	return nil
}

func (r *postgresForumRepository) TouchThread(ctx context.Context, q pkgdb.DBTX, threadID uuid.UUID, at time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE forum_threads
		SET message_count = message_count + 1, last_activity_at = $2
		WHERE id = $1
	`, threadID, at)
	if err != nil {
		return fmt.Errorf("touch forum thread: %w", err)
	}
	return nil
}

func (r *postgresForumRepository) UpdateMessage(ctx context.Context, m *model.Message) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE forum_messages SET body = $2, is_deleted = $3, updated_at = $4 WHERE id = $1`,
		m.ID, m.Body, m.IsDeleted, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update forum message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrMessageNotFound
	}
	return nil
}

// =====================================================
// VOTES
// =====================================================

func targetTable(target model.TargetType) (string, error) {
	switch target {
	case model.TargetThread:
		return "forum_threads", nil
	case model.TargetMessage:
		return "forum_messages", nil
	}
	return "", model.ErrInvalidVote
}

// LockTarget khóa row thread/message để các vote đồng thời trên cùng target chạy tuần tự
func (r *postgresForumRepository) LockTarget(ctx context.Context, q pkgdb.DBTX, target model.TargetType, id uuid.UUID) (int, error) {
	table, err := targetTable(target)
	if err != nil {
		return 0, err
	}
	var score int
	err = q.QueryRow(ctx, `SELECT score FROM `+table+` WHERE id = $1 FOR UPDATE`, id).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrTargetNotFound
		}
		return 0, fmt.Errorf("lock vote target: %w", err)
	}
	return score, nil
}

func (r *postgresForumRepository) GetVote(ctx context.Context, q pkgdb.DBTX, profileID uuid.UUID, target model.TargetType, id uuid.UUID) (int, error) {
	var value int
	err := q.QueryRow(ctx,
		`SELECT value FROM forum_votes WHERE profile_id = $1 AND target_type = $2 AND target_id = $3`,
		profileID, target, id,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get vote: %w", err)
	}
	return value, nil
}

func (r *postgresForumRepository) SaveVote(ctx context.Context, q pkgdb.DBTX, v model.Vote) error {
	_, err := q.Exec(ctx, `
		INSERT INTO forum_votes (profile_id, target_type, target_id, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_id, target_type, target_id) DO UPDATE SET value = EXCLUDED.value
	`, v.ProfileID, v.TargetType, v.TargetID, v.Value)
	if err != nil {
		return fmt.Errorf("save vote: %w", err)
	}
	return nil
}

func (r *postgresForumRepository) DeleteVote(ctx context.Context, q pkgdb.DBTX, profileID uuid.UUID, target model.TargetType, id uuid.UUID) error {
	_, err := q.Exec(ctx,
		`DELETE FROM forum_votes WHERE profile_id = $1 AND target_type = $2 AND target_id = $3`,
		profileID, target, id,
	)
	if err != nil {
		return fmt.Errorf("delete vote: %w", err)
	}
	return nil
}

func (r *postgresForumRepository) AdjustScore(ctx context.Context, q pkgdb.DBTX, target model.TargetType, id uuid.UUID, delta int) (int, error) {
	table, err := targetTable(target)
	if err != nil {
		return 0, err
	}
	var score int
	err = q.QueryRow(ctx, `UPDATE `+table+` SET score = score + $2 WHERE id = $1 RETURNING score`, id, delta).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrTargetNotFound
		}
		return 0, fmt.Errorf("adjust score: %w", err)
	}
	return score, nil
}

func (r *postgresForumRepository) UserVotes(ctx context.Context, profileID uuid.UUID, target model.TargetType, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	votes := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return votes, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT target_id, value FROM forum_votes
		WHERE profile_id = $1 AND target_type = $2 AND target_id = ANY($3)
	`, profileID, target, ids)
	if err != nil {
		return nil, fmt.Errorf("load user votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var value int
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		votes[id] = value
	}
	return votes, rows.Err()
}
