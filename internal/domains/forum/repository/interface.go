package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/forum/model"
	pkgdb "novelhub-backend/pkg/database"
)

type ForumRepository interface {
	// Categories
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateCategory(ctx context.Context, c *model.Category) error

	// Threads
	ListThreads(ctx context.Context, f model.ThreadFilter, limit, offset int) ([]model.Thread, int, error)
	GetThreadBySlug(ctx context.Context, slug string) (*model.Thread, error)
	GetThreadByID(ctx context.Context, id uuid.UUID) (*model.Thread, error)
	CreateThread(ctx context.Context, t *model.Thread) error
	UpdateThread(ctx context.Context, t *model.Thread) error
	DeleteThread(ctx context.Context, id uuid.UUID) error
	SetModeration(ctx context.Context, id uuid.UUID, pinned, locked bool) error

	// Messages
	ListMessages(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]model.Message, int, error)
	GetMessage(ctx context.Context, id uuid.UUID) (*model.Message, error)
	CreateMessage(ctx context.Context, q pkgdb.DBTX, m *model.Message) error
	// TouchThread tăng message_count và cập nhật last_activity_at
	TouchThread(ctx context.Context, q pkgdb.DBTX, threadID uuid.UUID, at time.Time) error
	UpdateMessage(ctx context.Context, m *model.Message) error

	// Votes (trong transaction)
	LockTarget(ctx context.Context, q pkgdb.DBTX, target model.TargetType, id uuid.UUID) (score int, err error)
	GetVote(ctx context.Context, q pkgdb.DBTX, profileID uuid.UUID, target model.TargetType, id uuid.UUID) (int, error)
	SaveVote(ctx context.Context, q pkgdb.DBTX, v model.Vote) error
	DeleteVote(ctx context.Context, q pkgdb.DBTX, profileID uuid.UUID, target model.TargetType, id uuid.UUID) error
	AdjustScore(ctx context.Context, q pkgdb.DBTX, target model.TargetType, id uuid.UUID, delta int) (int, error)
	// UserVotes: vote hiện tại của profile trên các target (không có = không có key)
	UserVotes(ctx context.Context, profileID uuid.UUID, target model.TargetType, ids []uuid.UUID) (map[uuid.UUID]int, error)
}
