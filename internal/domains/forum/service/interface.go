package service

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/forum/model"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/shared"
)

type ServiceInterface interface {
	ListCategories(ctx context.Context) ([]model.CategoryResponse, error)
	CreateCategory(ctx context.Context, req model.CreateCategoryRequest) (*model.CategoryResponse, error)

	ListThreads(ctx context.Context, req model.ListThreadsRequest, viewer *shared.Actor) (*model.ThreadListResponse, error)
	GetThread(ctx context.Context, slug string, viewer *shared.Actor) (*model.ThreadResponse, error)
	CreateThread(ctx context.Context, actor shared.Actor, req model.CreateThreadRequest) (*model.ThreadResponse, error)
	UpdateThread(ctx context.Context, actor shared.Actor, slug string, req model.UpdateThreadRequest) (*model.ThreadResponse, error)
	DeleteThread(ctx context.Context, actor shared.Actor, slug string) error
	ModerateThread(ctx context.Context, slug string, req model.ModerateRequest) (*model.ThreadResponse, error)

	ListMessages(ctx context.Context, slug string, page, limit int, viewer *shared.Actor) (*model.MessageListResponse, error)
	CreateMessage(ctx context.Context, actor shared.Actor, slug string, req model.CreateMessageRequest) (*model.MessageResponse, error)
	UpdateMessage(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateMessageRequest) (*model.MessageResponse, error)
	DeleteMessage(ctx context.Context, actor shared.Actor, id uuid.UUID) error

	Vote(ctx context.Context, actor shared.Actor, req model.VoteRequest) (*model.VoteResponse, error)

	UploadAttachment(ctx context.Context, actor shared.Actor, data []byte) (*model.AttachmentResponse, error)
}

// Renderer - markdown.Renderer
type Renderer interface {
	RenderPost(md string) (string, error)
	StripHTML(s string) string
}

type Notifier interface {
	Notify(ctx context.Context, in notifmodel.CreateInput) error
}

// AttachmentStore - *storage.MinIOStorage
type AttachmentStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type ImageValidator interface {
	ValidateImage(data []byte) (string, error)
}
