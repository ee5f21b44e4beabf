package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/chapter/model"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/shared"
)

type ServiceInterface interface {
	Create(ctx context.Context, actor shared.Actor, novelSlug string, req model.CreateChapterRequest) (*model.ChapterResponse, error)
	Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateChapterRequest) (*model.ChapterResponse, error)
	Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error
	// GetForEdit trả markdown gốc cho tác giả
	GetForEdit(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.ChapterResponse, error)

	List(ctx context.Context, novelSlug string, viewer *shared.Actor) ([]model.ChapterSummary, error)
	Read(ctx context.Context, novelSlug string, number int, part *int, viewer *shared.Actor) (*model.ChapterView, error)

	// NextNumber gợi ý số chapter tiếp theo (Drive import)
	NextNumber(ctx context.Context, novelID uuid.UUID) (int, error)
	// PublishNotice - job chapter:notify_new
	PublishNotice(ctx context.Context, chapterID uuid.UUID) error
}

// NovelFinder - novel service
type NovelFinder interface {
	FindBySlug(ctx context.Context, slug string) (*novelmodel.Novel, error)
	FindByID(ctx context.Context, id uuid.UUID) (*novelmodel.Novel, error)
}

// PurchaseChecker - coin service
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, profileID, chapterID uuid.UUID) (bool, error)
	PurchasedChapterIDs(ctx context.Context, profileID uuid.UUID, chapterIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// SubscriptionChecker - subscription service
type SubscriptionChecker interface {
	HasActive(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error)
}

// ProgressRecorder - bookmark service cập nhật chapter đọc gần nhất
type ProgressRecorder interface {
	UpdateProgress(ctx context.Context, profileID, novelID, chapterID uuid.UUID, chapterNumber int) error
}

// FollowerNotifier - notification service
type FollowerNotifier interface {
	NotifyNovelFollowers(ctx context.Context, novelID, exclude uuid.UUID, in notifmodel.CreateInput) (int64, error)
}

type Renderer interface {
	RenderChapter(md string) (string, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
	EnqueueAt(ctx context.Context, taskType string, payload interface{}, at time.Time) error
}
