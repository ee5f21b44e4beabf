package service

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/shared"
)

type ServiceInterface interface {
	Create(ctx context.Context, actor shared.Actor, req model.CreateNovelRequest) (*model.NovelResponse, error)
	Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateNovelRequest) (*model.NovelResponse, error)
	Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error

	// GetBySlug tăng view counter; viewer nil = anonymous
	GetBySlug(ctx context.Context, slug string, viewer *shared.Actor) (*model.NovelResponse, error)
	GetByID(ctx context.Context, id uuid.UUID, viewer *shared.Actor) (*model.NovelResponse, error)
	List(ctx context.Context, req model.ListNovelsRequest, viewer *shared.Actor) (*model.ListNovelsResponse, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, viewer *shared.Actor, page, limit int) (*model.ListNovelsResponse, error)
	ListTags(ctx context.Context) ([]model.Tag, error)

	UploadCover(ctx context.Context, actor shared.Actor, slug string, data []byte) (*model.CoverResponse, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error

	// FindBySlug / FindByID trả entity cho các domain khác (chapter, forum, gdrive)
	FindBySlug(ctx context.Context, slug string) (*model.Novel, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Novel, error)
}

// CoverStorage - MinIO
type CoverStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageValidator kiểm tra định dạng/kích thước ảnh
type ImageValidator interface {
	ValidateImage(data []byte) (string, error)
}

// Enqueuer - asynq client
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
}
