package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/bookmark/model"
	"novelhub-backend/internal/domains/bookmark/repository"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/database"
)

type ServiceInterface interface {
	Add(ctx context.Context, actor shared.Actor, novelID uuid.UUID) error
	Remove(ctx context.Context, profileID, novelID uuid.UUID) error
	List(ctx context.Context, profileID uuid.UUID, page, limit int) (*model.ListResponse, error)
	IsBookmarked(ctx context.Context, profileID, novelID uuid.UUID) (bool, error)
	// UpdateProgress được chapter service gọi khi reader mở chapter
	UpdateProgress(ctx context.Context, profileID, novelID, chapterID uuid.UUID, chapterNumber int) error
}

// NovelFinder - novel service
type NovelFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*novelmodel.Novel, error)
}

type bookmarkService struct {
	repo   repository.BookmarkRepository
	tx     database.Transactor
	novels NovelFinder
}

func NewBookmarkService(repo repository.BookmarkRepository, tx database.Transactor, novels NovelFinder) ServiceInterface {
	return &bookmarkService{repo: repo, tx: tx, novels: novels}
}

func (s *bookmarkService) Add(ctx context.Context, actor shared.Actor, novelID uuid.UUID) error {
	// Step 1: Novel phải tồn tại và không phải draft của người khác
	novel, err := s.novels.FindByID(ctx, novelID)
	if err != nil {
		if errors.Is(err, novelmodel.ErrNovelNotFound) {
			return model.NewNovelNotFoundError()
		}
		return err
	}
	if novel.Status == novelmodel.StatusDraft && !actor.CanManage(novel.AuthorID) {
		return model.NewNovelNotFoundError()
	}

	// Step 2: Insert + bookmark_count
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.Insert(ctx, q, actor.ID, novelID); err != nil {
			return err
		}
		return s.repo.AdjustNovelCount(ctx, q, novelID, 1)
	})
	return mapRepoError(err)
}

func (s *bookmarkService) Remove(ctx context.Context, profileID, novelID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.Delete(ctx, q, profileID, novelID); err != nil {
			return err
		}
		return s.repo.AdjustNovelCount(ctx, q, novelID, -1)
	})
	return mapRepoError(err)
}

func (s *bookmarkService) List(ctx context.Context, profileID uuid.UUID, page, limit int) (*model.ListResponse, error) {
	page, limit, offset := utils.NormalizePage(page, limit)

	bookmarks, total, err := s.repo.List(ctx, profileID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]model.BookmarkResponse, len(bookmarks))
	for i := range bookmarks {
		items[i] = bookmarks[i].ToResponse()
	}
	return &model.ListResponse{Bookmarks: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *bookmarkService) IsBookmarked(ctx context.Context, profileID, novelID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, profileID, novelID)
}

// UpdateProgress: chưa bookmark thì không tự tạo
func (s *bookmarkService) UpdateProgress(ctx context.Context, profileID, novelID, chapterID uuid.UUID, chapterNumber int) error {
	_, err := s.repo.UpdateProgress(ctx, profileID, novelID, chapterID, chapterNumber)
	return err
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrAlreadyBookmarked):
		return model.NewAlreadyBookmarkedError()
	case errors.Is(err, model.ErrBookmarkNotFound):
		return model.NewBookmarkNotFoundError()
	case errors.Is(err, model.ErrNovelNotFound):
		return model.NewNovelNotFoundError()
	}
	return err
}
