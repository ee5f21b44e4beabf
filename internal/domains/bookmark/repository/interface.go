package repository

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/bookmark/model"
	pkgdb "novelhub-backend/pkg/database"
)

type BookmarkRepository interface {
	// Insert/Delete chạy cùng tx với AdjustNovelCount
	Insert(ctx context.Context, q pkgdb.DBTX, profileID, novelID uuid.UUID) error
	Delete(ctx context.Context, q pkgdb.DBTX, profileID, novelID uuid.UUID) error
	AdjustNovelCount(ctx context.Context, q pkgdb.DBTX, novelID uuid.UUID, delta int) error

	List(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]model.Bookmark, int, error)
	Exists(ctx context.Context, profileID, novelID uuid.UUID) (bool, error)
	// UpdateProgress chỉ cập nhật bookmark đã có, trả false nếu chưa bookmark
	UpdateProgress(ctx context.Context, profileID, novelID, chapterID uuid.UUID, chapterNumber int) (bool, error)
}
