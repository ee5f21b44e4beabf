package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/domains/novel/repository"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/cache"
	"novelhub-backend/pkg/database"
	"novelhub-backend/pkg/logger"
)

const (
	listCachePrefix = "novels:list:"
	listCacheTTL    = 60 * time.Second
	tagsCacheKey    = "novels:tags"
	tagsCacheTTL    = 5 * time.Minute
)

type novelService struct {
	repo    repository.NovelRepository
	tx      database.Transactor
	cache   cache.Cache
	storage CoverStorage
	images  ImageValidator
	queue   Enqueuer
	now     func() time.Time
}

func NewNovelService(
	repo repository.NovelRepository,
	tx database.Transactor,
	c cache.Cache,
	storage CoverStorage,
	images ImageValidator,
	queue Enqueuer,
) ServiceInterface {
	return &novelService{
		repo:    repo,
		tx:      tx,
		cache:   c,
		storage: storage,
		images:  images,
		queue:   queue,
		now:     time.Now,
	}
}

// =====================================================
// CREATE / UPDATE / DELETE
// =====================================================

func (s *novelService) Create(ctx context.Context, actor shared.Actor, req model.CreateNovelRequest) (*model.NovelResponse, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Slug từ title nếu không truyền
	slugSource := req.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = req.Title
	}
	slug := utils.GenerateSlug(slugSource)
	if slug == "" {
		return nil, model.NewInvalidSlugError()
	}

	// Step 3: Check slug unique
	exists, err := s.repo.SlugExists(ctx, slug, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.NewSlugExistsError(slug)
	}

	// Step 4: Insert novel + tags trong một transaction
	status := req.Status
	if status == "" {
		status = model.StatusOngoing
	}
	now := s.now()
	n := &model.Novel{
		ID:          uuid.New(),
		AuthorID:    actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Description: req.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.Create(ctx, q, n); err != nil {
			return err
		}
		return s.repo.ReplaceTags(ctx, q, n.ID, req.Tags)
	})
	if err != nil {
		// unique index bắt được race giữa Step 3 và Step 4
		if errors.Is(err, model.ErrSlugExists) {
			return nil, model.NewSlugExistsError(slug)
		}
		return nil, fmt.Errorf("create novel: %w", err)
	}

	// Step 5: Invalidate list cache
	s.invalidateLists(ctx)

	logger.Info("novel created", map[string]interface{}{"novel_id": n.ID.String(), "slug": slug})

	return s.response(ctx, n.ID)
}

func (s *novelService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateNovelRequest) (*model.NovelResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !actor.CanManage(n.AuthorID) {
		return nil, model.NewForbiddenError()
	}

	if req.Title != nil {
		n.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		n.Description = *req.Description
	}
	if req.Status != nil {
		n.Status = *req.Status
	}
	if req.Slug != nil {
		slug := utils.GenerateSlug(*req.Slug)
		if slug == "" {
			return nil, model.NewInvalidSlugError()
		}
		if slug != n.Slug {
			exists, err := s.repo.SlugExists(ctx, slug, n.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, model.NewSlugExistsError(slug)
			}
			n.Slug = slug
		}
	}

	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.Update(ctx, q, n); err != nil {
			return err
		}
		if req.Tags != nil {
			return s.repo.ReplaceTags(ctx, q, n.ID, *req.Tags)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrSlugExists) {
			return nil, model.NewSlugExistsError(n.Slug)
		}
		return nil, mapRepoError(err)
	}

	s.invalidateLists(ctx)
	return s.response(ctx, n.ID)
}

func (s *novelService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if !actor.CanManage(n.AuthorID) {
		return model.NewForbiddenError()
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}

	// Cover files dọn ở background, lỗi enqueue không làm fail request
	if err := s.queue.Enqueue(ctx, shared.TypeDeleteNovelAssets, shared.DeleteNovelAssetsPayload{NovelID: id.String()}); err != nil {
		logger.Error("enqueue delete novel assets failed", err)
	}

	s.invalidateLists(ctx)
	logger.Info("novel deleted", map[string]interface{}{"novel_id": id.String(), "by": actor.ID.String()})
	return nil
}

// =====================================================
// READ
// =====================================================

func (s *novelService) GetBySlug(ctx context.Context, slug string, viewer *shared.Actor) (*model.NovelResponse, error) {
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !visible(n, viewer) {
		return nil, model.NewNovelNotFoundError()
	}

	// View counter ở Redis; Redis lỗi thì bỏ qua
	if _, err := s.cache.Increment(ctx, model.ViewCounterPrefix+n.ID.String()); err != nil {
		logger.Debug("view counter unavailable: " + err.Error())
	}

	resp := n.ToResponse()
	return &resp, nil
}

func (s *novelService) GetByID(ctx context.Context, id uuid.UUID, viewer *shared.Actor) (*model.NovelResponse, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !visible(n, viewer) {
		return nil, model.NewNovelNotFoundError()
	}
	resp := n.ToResponse()
	return &resp, nil
}

func (s *novelService) List(ctx context.Context, req model.ListNovelsRequest, viewer *shared.Actor) (*model.ListNovelsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	filter := model.ListFilter{
		Query:        strings.TrimSpace(req.Query),
		TagSlug:      req.Tag,
		Status:       model.Status(req.Status),
		FeaturedOnly: req.Featured,
		Sort:         req.Sort,
		Limit:        limit,
		Offset:       offset,
	}
	if req.AuthorID != "" {
		authorID, err := uuid.Parse(req.AuthorID)
		if err != nil {
			return &model.ListNovelsResponse{Novels: []model.NovelResponse{}, Page: page, Limit: limit}, nil
		}
		filter.AuthorID = &authorID
		// tác giả xem danh sách của chính mình thì thấy cả draft
		filter.IncludeDrafts = viewer != nil && viewer.CanManage(authorID)
	}

	// Chỉ cache request anonymous
	cacheKey := ""
	if viewer == nil {
		cacheKey = fmt.Sprintf("%sq=%s|tag=%s|status=%s|author=%s|featured=%t|sort=%s|page=%d|limit=%d",
			listCachePrefix, filter.Query, filter.TagSlug, filter.Status, req.AuthorID, filter.FeaturedOnly, filter.Sort, page, limit)

		var cached model.ListNovelsResponse
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			logger.Debug("novel list cache read failed: " + err.Error())
		}
		if found {
			return &cached, nil
		}
	}

	resp, err := s.list(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, resp, listCacheTTL); err != nil {
			logger.Debug("novel list cache write failed: " + err.Error())
		}
	}
	return resp, nil
}

func (s *novelService) ListByAuthor(ctx context.Context, authorID uuid.UUID, viewer *shared.Actor, page, limit int) (*model.ListNovelsResponse, error) {
	page, limit, offset := utils.NormalizePage(page, limit)
	return s.list(ctx, model.ListFilter{
		AuthorID:      &authorID,
		IncludeDrafts: viewer != nil && viewer.CanManage(authorID),
		Sort:          model.SortLatest,
		Limit:         limit,
		Offset:        offset,
	}, page, limit)
}

func (s *novelService) list(ctx context.Context, f model.ListFilter, page, limit int) (*model.ListNovelsResponse, error) {
	novels, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]model.NovelResponse, len(novels))
	for i := range novels {
		items[i] = novels[i].ToResponse()
	}
	return &model.ListNovelsResponse{Novels: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *novelService) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if found, _ := s.cache.Get(ctx, tagsCacheKey, &tags); found {
		return tags, nil
	}

	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, tagsCacheKey, tags, tagsCacheTTL)
	return tags, nil
}

func (s *novelService) FindBySlug(ctx context.Context, slug string) (*model.Novel, error) {
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return n, nil
}

func (s *novelService) FindByID(ctx context.Context, id uuid.UUID) (*model.Novel, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return n, nil
}

// =====================================================
// COVER / ADMIN
// =====================================================

// UploadCover lưu ảnh gốc, set cover_url tạm thời rồi enqueue job tạo variants
func (s *novelService) UploadCover(ctx context.Context, actor shared.Actor, slug string, data []byte) (*model.CoverResponse, error) {
	n, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !actor.CanManage(n.AuthorID) {
		return nil, model.NewForbiddenError()
	}

	contentType, err := s.images.ValidateImage(data)
	if err != nil {
		return nil, model.NewInvalidImageError(err)
	}

	ext := "jpg"
	if contentType == "image/png" {
		ext = "png"
	}
	key := fmt.Sprintf("covers/%s/original.%s", n.ID, ext)

	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload cover: %w", err)
	}
	if err := s.repo.SetCoverURL(ctx, n.ID, url); err != nil {
		return nil, mapRepoError(err)
	}

	payload := shared.ProcessCoverPayload{NovelID: n.ID.String(), OriginalKey: key}
	if err := s.queue.Enqueue(ctx, shared.TypeProcessCover, payload); err != nil {
		logger.Error("enqueue cover processing failed", err)
	}

	s.invalidateLists(ctx)
	return &model.CoverResponse{CoverURL: url}, nil
}

func (s *novelService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	if err := s.repo.SetFeatured(ctx, id, featured); err != nil {
		return mapRepoError(err)
	}
	s.invalidateLists(ctx)
	return nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *novelService) response(ctx context.Context, id uuid.UUID) (*model.NovelResponse, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	resp := n.ToResponse()
	return &resp, nil
}

func (s *novelService) invalidateLists(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, listCachePrefix+"*"); err != nil {
		logger.Warn("invalidate novel list cache failed", map[string]interface{}{"error": err.Error()})
	}
	_ = s.cache.Delete(ctx, tagsCacheKey)
}

// visible - draft chỉ hiện với tác giả và admin
func visible(n *model.Novel, viewer *shared.Actor) bool {
	if n.Status != model.StatusDraft {
		return true
	}
	return viewer != nil && viewer.CanManage(n.AuthorID)
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, model.ErrNovelNotFound):
		return model.NewNovelNotFoundError()
	case errors.Is(err, model.ErrSlugExists):
		return &model.NovelError{Code: model.ErrCodeSlugExists, Message: "Slug is already in use", Err: err}
	}
	return err
}
