package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/chapter/model"
	"novelhub-backend/internal/domains/chapter/repository"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	novelmodel "novelhub-backend/internal/domains/novel/model"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/cache"
	"novelhub-backend/pkg/database"
	"novelhub-backend/pkg/logger"
)

// novel list cache (novel service) sort theo last_chapter_at
const novelListPattern = "novels:list:*"

type Deps struct {
	Novels        NovelFinder
	Purchases     PurchaseChecker
	Subscriptions SubscriptionChecker
	Progress      ProgressRecorder
	Notifier      FollowerNotifier
	Renderer      Renderer
	Queue         Enqueuer
	Cache         cache.Cache
}

type chapterService struct {
	repo    repository.ChapterRepository
	tx      database.Transactor
	deps    Deps
	maxCost int64
	now     func() time.Time
}

func NewChapterService(repo repository.ChapterRepository, tx database.Transactor, deps Deps, maxCost int64) ServiceInterface {
	return &chapterService{
		repo:    repo,
		tx:      tx,
		deps:    deps,
		maxCost: maxCost,
		now:     time.Now,
	}
}

// =====================================================
// AUTHOR OPERATIONS
// =====================================================

func (s *chapterService) Create(ctx context.Context, actor shared.Actor, novelSlug string, req model.CreateChapterRequest) (*model.ChapterResponse, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCost(req.Coins); err != nil {
		return nil, err
	}

	// Step 2: Novel + ownership
	novel, err := s.manageableNovel(ctx, actor, novelSlug)
	if err != nil {
		return nil, err
	}

	// Step 3: Build chapter
	now := s.now()
	title := strings.TrimSpace(req.Title)
	ch := &model.Chapter{
		ID:            uuid.New(),
		NovelID:       novel.ID,
		ChapterNumber: req.ChapterNumber,
		PartNumber:    req.PartNumber,
		Title:         title,
		Slug:          chapterSlug(title, req.ChapterNumber),
		Content:       req.Content,
		WordCount:     model.CountWords(req.Content),
		Coins:         req.Coins,
		PublishAt:     req.PublishAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Step 4: Insert + cập nhật thống kê novel
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.Create(ctx, q, ch); err != nil {
			return err
		}
		return s.repo.RefreshNovelStats(ctx, q, novel.ID, now)
	})
	if err != nil {
		return nil, s.mapRepoError(err, ch)
	}

	// Step 5: Side effects
	s.schedulePublishNotice(ctx, ch, now)
	s.invalidateNovelLists(ctx)

	logger.Info("chapter created", map[string]interface{}{
		"novel_id":   novel.ID.String(),
		"chapter_id": ch.ID.String(),
		"number":     ch.ChapterNumber,
	})
	return ch.ToResponse(), nil
}

func (s *chapterService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateChapterRequest) (*model.ChapterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ch, novel, err := s.manageableChapter(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	wasPublished := ch.IsPublishedAt(now)

	// Step 1: Merge field
	if req.ChapterNumber != nil {
		ch.ChapterNumber = *req.ChapterNumber
	}
	if req.PartNumber != nil {
		ch.PartNumber = req.PartNumber
	}
	if req.Title != nil {
		ch.Title = strings.TrimSpace(*req.Title)
		ch.Slug = chapterSlug(ch.Title, ch.ChapterNumber)
	}
	if req.Content != nil {
		ch.Content = *req.Content
		ch.WordCount = model.CountWords(ch.Content)
	}
	if req.Coins != nil {
		if err := s.checkCost(*req.Coins); err != nil {
			return nil, err
		}
		ch.Coins = *req.Coins
	}
	rescheduled := false
	if req.PublishAt != nil && (ch.PublishAt == nil || !ch.PublishAt.Equal(*req.PublishAt)) {
		ch.PublishAt = req.PublishAt
		rescheduled = true
	}
	ch.UpdatedAt = now

	// Step 2: Save
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.Update(ctx, q, ch); err != nil {
			return err
		}
		return s.repo.RefreshNovelStats(ctx, q, novel.ID, now)
	})
	if err != nil {
		return nil, s.mapRepoError(err, ch)
	}

	// Step 3: Chapter chuyển từ hẹn giờ sang publish (hoặc đổi lịch) thì báo lại
	if rescheduled && !wasPublished {
		s.schedulePublishNotice(ctx, ch, now)
	}
	s.invalidateNovelLists(ctx)

	return ch.ToResponse(), nil
}

func (s *chapterService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	ch, novel, err := s.manageableChapter(ctx, actor, id)
	if err != nil {
		return err
	}

	now := s.now()
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.Delete(ctx, q, ch.ID); err != nil {
			return err
		}
		return s.repo.RefreshNovelStats(ctx, q, novel.ID, now)
	})
	if err != nil {
		return s.mapRepoError(err, ch)
	}

	s.invalidateNovelLists(ctx)
	logger.Info("chapter deleted", map[string]interface{}{"chapter_id": id.String(), "by": actor.ID.String()})
	return nil
}

func (s *chapterService) GetForEdit(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.ChapterResponse, error) {
	ch, _, err := s.manageableChapter(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return ch.ToResponse(), nil
}

// =====================================================
// READER OPERATIONS
// =====================================================

func (s *chapterService) List(ctx context.Context, novelSlug string, viewer *shared.Actor) ([]model.ChapterSummary, error) {
	novel, err := s.visibleNovel(ctx, novelSlug, viewer)
	if err != nil {
		return nil, err
	}

	now := s.now()
	manager := viewer != nil && viewer.CanManage(novel.AuthorID)
	var cutoff *time.Time
	if !manager {
		cutoff = &now
	}

	chapters, err := s.repo.ListByNovel(ctx, novel.ID, cutoff)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ChapterSummary, len(chapters))
	for i := range chapters {
		summaries[i] = chapters[i].ToSummary(now)
	}
	if viewer == nil {
		return summaries, nil
	}

	// Step: đánh dấu chapter viewer đã mở khóa
	if manager {
		for i := range summaries {
			summaries[i].IsUnlocked = true
		}
		return summaries, nil
	}

	subscribed, err := s.deps.Subscriptions.HasActive(ctx, viewer.ID, novel.AuthorID)
	if err != nil {
		return nil, err
	}

	paidIDs := make([]uuid.UUID, 0)
	for _, c := range chapters {
		if !c.IsFree() {
			paidIDs = append(paidIDs, c.ID)
		}
	}
	purchased, err := s.deps.Purchases.PurchasedChapterIDs(ctx, viewer.ID, paidIDs)
	if err != nil {
		return nil, err
	}

	for i := range summaries {
		summaries[i].IsUnlocked = summaries[i].IsLocked && (subscribed || purchased[summaries[i].ID])
	}
	return summaries, nil
}

// Read trả nội dung chapter nếu viewer có quyền; không có quyền thì body rỗng + is_locked
func (s *chapterService) Read(ctx context.Context, novelSlug string, number int, part *int, viewer *shared.Actor) (*model.ChapterView, error) {
	// Step 1: Novel
	novel, err := s.visibleNovel(ctx, novelSlug, viewer)
	if err != nil {
		return nil, err
	}

	// Step 2: Chapter (chưa publish thì chỉ tác giả/admin thấy)
	ch, err := s.repo.GetByNumber(ctx, novel.ID, number, part)
	if err != nil {
		return nil, s.mapRepoError(err, nil)
	}
	now := s.now()
	manager := viewer != nil && viewer.CanManage(novel.AuthorID)
	if !ch.IsPublishedAt(now) && !manager {
		return nil, model.NewChapterNotFoundError()
	}

	// Step 3: Access check
	allowed, err := s.canRead(ctx, ch, novel, viewer, manager)
	if err != nil {
		return nil, err
	}

	view := &model.ChapterView{
		ID:            ch.ID,
		NovelID:       novel.ID,
		NovelSlug:     novel.Slug,
		NovelTitle:    novel.Title,
		ChapterNumber: ch.ChapterNumber,
		PartNumber:    ch.PartNumber,
		Title:         ch.Title,
		WordCount:     ch.WordCount,
		Coins:         ch.Coins,
		IsLocked:      !allowed,
		IsUnlocked:    allowed && !ch.IsFree(),
		PublishAt:     ch.PublishAt,
		UpdatedAt:     ch.UpdatedAt,
	}

	// Step 4: Render (footnote → goldmark → bluemonday)
	if allowed {
		html, err := s.deps.Renderer.RenderChapter(ch.Content)
		if err != nil {
			return nil, err
		}
		view.Content = html
	}

	// Step 5: Prev / next
	var cutoff *time.Time
	if !manager {
		cutoff = &now
	}
	view.Prev, view.Next, err = s.repo.Neighbors(ctx, ch, cutoff)
	if err != nil {
		return nil, err
	}

	// Step 6: Reading history, lỗi thì bỏ qua
	if viewer != nil && allowed && s.deps.Progress != nil {
		if err := s.deps.Progress.UpdateProgress(ctx, viewer.ID, novel.ID, ch.ID, ch.ChapterNumber); err != nil {
			logger.ErrorWithFields("record reading progress failed", err, map[string]interface{}{
				"profile_id": viewer.ID.String(),
				"chapter_id": ch.ID.String(),
			})
		}
	}

	return view, nil
}

// canRead: free, tác giả/admin, đã mua, hoặc đang subscribe tác giả
func (s *chapterService) canRead(ctx context.Context, ch *model.Chapter, novel *novelmodel.Novel, viewer *shared.Actor, manager bool) (bool, error) {
	if ch.IsFree() || manager {
		return true, nil
	}
	if viewer == nil {
		return false, nil
	}

	purchased, err := s.deps.Purchases.HasPurchased(ctx, viewer.ID, ch.ID)
	if err != nil {
		return false, err
	}
	if purchased {
		return true, nil
	}
	return s.deps.Subscriptions.HasActive(ctx, viewer.ID, novel.AuthorID)
}

func (s *chapterService) NextNumber(ctx context.Context, novelID uuid.UUID) (int, error) {
	n, err := s.repo.MaxNumber(ctx, novelID)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// =====================================================
// NEW CHAPTER NOTICE
// =====================================================

// PublishNotice cập nhật thống kê novel và báo cho người bookmark.
// Chapter bị xóa hoặc dời lịch thì bỏ qua.
func (s *chapterService) PublishNotice(ctx context.Context, chapterID uuid.UUID) error {
	ch, err := s.repo.GetByID(ctx, chapterID)
	if errors.Is(err, model.ErrChapterNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	now := s.now()
	if !ch.IsPublishedAt(now) {
		return nil
	}

	novel, err := s.deps.Novels.FindByID(ctx, ch.NovelID)
	if err != nil {
		if errors.Is(err, novelmodel.ErrNovelNotFound) {
			return nil
		}
		return err
	}
	if novel.Status == novelmodel.StatusDraft {
		return nil
	}

	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		return s.repo.RefreshNovelStats(ctx, q, novel.ID, now)
	})
	if err != nil {
		return err
	}
	s.invalidateNovelLists(ctx)

	_, err = s.deps.Notifier.NotifyNovelFollowers(ctx, novel.ID, novel.AuthorID, notifmodel.CreateInput{
		Type:  notifmodel.TypeNewChapter,
		Title: fmt.Sprintf("%s: %s", novel.Title, ch.Label()),
		Body:  ch.Title,
		Link:  chapterLink(novel.Slug, ch),
	})
	return err
}

func (s *chapterService) schedulePublishNotice(ctx context.Context, ch *model.Chapter, now time.Time) {
	payload := shared.NotifyNewChapterPayload{NovelID: ch.NovelID.String(), ChapterID: ch.ID.String()}

	var err error
	if ch.IsPublishedAt(now) {
		err = s.deps.Queue.Enqueue(ctx, shared.TypeNotifyNewChapter, payload)
	} else {
		err = s.deps.Queue.EnqueueAt(ctx, shared.TypeNotifyNewChapter, payload, *ch.PublishAt)
	}
	if err != nil {
		logger.Error("enqueue new chapter notice failed", err)
	}
}

// =====================================================
// HELPERS
// =====================================================

func (s *chapterService) checkCost(coins int64) error {
	if coins < 0 || (s.maxCost > 0 && coins > s.maxCost) {
		return model.NewInvalidCostError(s.maxCost)
	}
	return nil
}

func (s *chapterService) findNovelBySlug(ctx context.Context, slug string) (*novelmodel.Novel, error) {
	novel, err := s.deps.Novels.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, novelmodel.ErrNovelNotFound) {
			return nil, model.NewNovelNotFoundError()
		}
		return nil, err
	}
	return novel, nil
}

func (s *chapterService) visibleNovel(ctx context.Context, slug string, viewer *shared.Actor) (*novelmodel.Novel, error) {
	novel, err := s.findNovelBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if novel.Status == novelmodel.StatusDraft && (viewer == nil || !viewer.CanManage(novel.AuthorID)) {
		return nil, model.NewNovelNotFoundError()
	}
	return novel, nil
}

func (s *chapterService) manageableNovel(ctx context.Context, actor shared.Actor, slug string) (*novelmodel.Novel, error) {
	novel, err := s.findNovelBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(novel.AuthorID) {
		return nil, model.NewForbiddenError()
	}
	return novel, nil
}

func (s *chapterService) manageableChapter(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.Chapter, *novelmodel.Novel, error) {
	ch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, s.mapRepoError(err, nil)
	}
	novel, err := s.deps.Novels.FindByID(ctx, ch.NovelID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanManage(novel.AuthorID) {
		return nil, nil, model.NewForbiddenError()
	}
	return ch, novel, nil
}

func (s *chapterService) invalidateNovelLists(ctx context.Context) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.DeletePattern(ctx, novelListPattern); err != nil {
		logger.Warn("invalidate novel list cache failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *chapterService) mapRepoError(err error, ch *model.Chapter) error {
	switch {
	case errors.Is(err, model.ErrChapterNotFound):
		return model.NewChapterNotFoundError()
	case errors.Is(err, model.ErrNumberExists):
		label := "Chapter"
		if ch != nil {
			label = ch.Label()
		}
		return model.NewNumberExistsError(label)
	}
	return err
}

func chapterSlug(title string, number int) string {
	if slug := utils.GenerateSlug(title); slug != "" {
		return slug
	}
	return "chapter-" + strconv.Itoa(number)
}

func chapterLink(novelSlug string, ch *model.Chapter) string {
	link := fmt.Sprintf("/novels/%s/chapters/%d", novelSlug, ch.ChapterNumber)
	if ch.PartNumber != nil {
		link += fmt.Sprintf("?part=%d", *ch.PartNumber)
	}
	return link
}
