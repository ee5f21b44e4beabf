package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/chapter/model"
	pkgdb "novelhub-backend/pkg/database"
)

type ChapterRepository interface {
	Create(ctx context.Context, q pkgdb.DBTX, c *model.Chapter) error
	Update(ctx context.Context, q pkgdb.DBTX, c *model.Chapter) error
	Delete(ctx context.Context, q pkgdb.DBTX, id uuid.UUID) error
	// RefreshNovelStats tính lại chapter_count/last_chapter_at từ chapter đã publish
	RefreshNovelStats(ctx context.Context, q pkgdb.DBTX, novelID uuid.UUID, now time.Time) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Chapter, error)
	GetByNumber(ctx context.Context, novelID uuid.UUID, number int, part *int) (*model.Chapter, error)
	// ListByNovel không load content
	ListByNovel(ctx context.Context, novelID uuid.UUID, publishedBefore *time.Time) ([]model.Chapter, error)
	Neighbors(ctx context.Context, c *model.Chapter, publishedBefore *time.Time) (prev, next *model.ChapterRef, err error)
	MaxNumber(ctx context.Context, novelID uuid.UUID) (int, error)
}
