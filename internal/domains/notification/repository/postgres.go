package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/notification/model"
	pkgdb "novelhub-backend/pkg/database"
)

// ================================================
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ================================================

type notificationRepository struct {
	db pkgdb.DBTX
}

func NewNotificationRepository(db pkgdb.DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, profile_id, type, title, body, link, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING created_at
	`
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, query, n.ID, n.ProfileID, n.Type, n.Title, n.Body, n.Link).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) CreateForNovelFollowers(ctx context.Context, novelID uuid.UUID, exclude uuid.UUID, in model.CreateInput) (int64, error) {
	query := `
		INSERT INTO notifications (profile_id, type, title, body, link)
		SELECT b.profile_id, $3, $4, $5, $6
		FROM bookmarks b
		JOIN profiles p ON p.id = b.profile_id AND p.is_active
		WHERE b.novel_id = $1 AND b.profile_id <> $2
	`
	tag, err := r.db.Exec(ctx, query, novelID, exclude, in.Type, in.Title, in.Body, in.Link)
	if err != nil {
		return 0, fmt.Errorf("fan-out notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) List(ctx context.Context, profileID uuid.UUID, unreadOnly bool, limit, offset int) ([]model.Notification, int, error) {
	where := `WHERE profile_id = $1`
	if unreadOnly {
		where += ` AND is_read = FALSE`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications `+where, profileID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `
		SELECT id, profile_id, type, title, body, link, is_read, created_at
		FROM notifications ` + where + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, profileID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]model.Notification, 0, limit)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.ProfileID, &n.Type, &n.Title, &n.Body, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, profileID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE profile_id = $1 AND is_read = FALSE`, profileID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, profileID uuid.UUID, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE profile_id = $1 AND id = ANY($2) AND is_read = FALSE`,
		profileID, ids,
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE profile_id = $1 AND is_read = FALSE`, profileID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, profileID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND profile_id = $2`, id, profileID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("cleanup notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
