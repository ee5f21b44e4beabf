package repository

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/pkg/database"
)

// NovelRepository data access cho novels + tags
type NovelRepository interface {
	// Create - ErrSlugExists khi trùng slug
	Create(ctx context.Context, q database.DBTX, n *model.Novel) error
	Update(ctx context.Context, q database.DBTX, n *model.Novel) error
	// ReplaceTags thay toàn bộ tag của novel, tag mới được tạo theo slug
	ReplaceTags(ctx context.Context, q database.DBTX, novelID uuid.UUID, tags []string) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Novel, error)
	GetBySlug(ctx context.Context, slug string) (*model.Novel, error)
	// SlugExists bỏ qua novel excludeID (dùng khi update)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, f model.ListFilter) ([]model.Novel, int, error)
	ListTags(ctx context.Context) ([]model.Tag, error)

	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	SetCoverURL(ctx context.Context, id uuid.UUID, url string) error
}
