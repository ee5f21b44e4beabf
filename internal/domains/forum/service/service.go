package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/forum/model"
	"novelhub-backend/internal/domains/forum/repository"
	notifmodel "novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/database"
	"novelhub-backend/pkg/logger"
)

type forumService struct {
	repo     repository.ForumRepository
	tx       database.Transactor
	renderer Renderer
	notifier Notifier
	store    AttachmentStore
	images   ImageValidator
	now      func() time.Time
}

func NewForumService(
	repo repository.ForumRepository,
	tx database.Transactor,
	renderer Renderer,
	notifier Notifier,
	store AttachmentStore,
	images ImageValidator,
) ServiceInterface {
	return &forumService{
		repo:     repo,
		tx:       tx,
		renderer: renderer,
		notifier: notifier,
		store:    store,
		images:   images,
		now:      time.Now,
	}
}

// =====================================================
// CATEGORIES
// =====================================================

func (s *forumService) ListCategories(ctx context.Context) ([]model.CategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.CategoryResponse, len(categories))
	for i := range categories {
		out[i] = categories[i].ToResponse()
	}
	return out, nil
}

func (s *forumService) CreateCategory(ctx context.Context, req model.CreateCategoryRequest) (*model.CategoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slug := utils.GenerateSlug(req.Slug)
	if slug == "" {
		slug = utils.GenerateSlug(req.Name)
	}
	c := &model.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		SortOrder:   req.SortOrder,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, model.ErrCategoryExists) {
			return nil, model.NewCategoryExistsError(slug)
		}
		return nil, err
	}

	resp := c.ToResponse()
	return &resp, nil
}

// =====================================================
// THREADS
// =====================================================

func (s *forumService) ListThreads(ctx context.Context, req model.ListThreadsRequest, viewer *shared.Actor) (*model.ThreadListResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	filter := model.ThreadFilter{Sort: req.Sort}
	if req.Category != "" {
		cat, err := s.repo.GetCategoryBySlug(ctx, req.Category)
		if err != nil {
			return nil, mapRepoError(err)
		}
		filter.CategoryID = &cat.ID
	}
	if req.NovelID != "" {
		id := uuid.MustParse(req.NovelID)
		filter.NovelID = &id
	}

	threads, total, err := s.repo.ListThreads(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]model.ThreadResponse, len(threads))
	ids := make([]uuid.UUID, len(threads))
	for i := range threads {
		items[i] = threads[i].ToResponse()
		ids[i] = threads[i].ID
	}
	if err := s.fillUserVotes(ctx, viewer, model.TargetThread, ids, func(i, v int) { items[i].UserVote = v }); err != nil {
		return nil, err
	}

	return &model.ThreadListResponse{Threads: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *forumService) GetThread(ctx context.Context, slug string, viewer *shared.Actor) (*model.ThreadResponse, error) {
	t, err := s.repo.GetThreadBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	resp, err := s.threadDetail(t)
	if err != nil {
		return nil, err
	}
	err = s.fillUserVotes(ctx, viewer, model.TargetThread, []uuid.UUID{t.ID}, func(_, v int) { resp.UserVote = v })
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *forumService) CreateThread(ctx context.Context, actor shared.Actor, req model.CreateThreadRequest) (*model.ThreadResponse, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, err
	}
	exists, err := s.repo.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.NewCategoryNotFoundError()
	}

	// Step 2: Build - slug = title + 8 ký tự đầu của id để không trùng
	now := s.now()
	title := s.cleanTitle(req.Title)
	t := &model.Thread{
		ID:             uuid.New(),
		CategoryID:     req.CategoryID,
		NovelID:        req.NovelID,
		AuthorID:       actor.ID,
		Title:          title,
		Body:           req.Body,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	t.Slug = threadSlug(title, t.ID)

	// Step 3: Save
	if err := s.repo.CreateThread(ctx, t); err != nil {
		return nil, mapRepoError(err)
	}

	saved, err := s.repo.GetThreadByID(ctx, t.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.threadDetail(saved)
}

func (s *forumService) UpdateThread(ctx context.Context, actor shared.Actor, slug string, req model.UpdateThreadRequest) (*model.ThreadResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t, err := s.repo.GetThreadBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if t.AuthorID != actor.ID {
		return nil, model.NewForbiddenError("Only the thread author can edit it")
	}
	if t.IsLocked && !actor.IsAdmin() {
		return nil, model.NewThreadLockedError()
	}

	if req.Title != nil {
		t.Title = s.cleanTitle(*req.Title)
	}
	if req.Body != nil {
		t.Body = *req.Body
	}
	t.UpdatedAt = s.now()

	if err := s.repo.UpdateThread(ctx, t); err != nil {
		return nil, mapRepoError(err)
	}
	return s.threadDetail(t)
}

func (s *forumService) DeleteThread(ctx context.Context, actor shared.Actor, slug string) error {
	t, err := s.repo.GetThreadBySlug(ctx, slug)
	if err != nil {
		return mapRepoError(err)
	}
	if !actor.CanManage(t.AuthorID) {
		return model.NewForbiddenError("Only the thread author or an admin can delete it")
	}
	if err := s.repo.DeleteThread(ctx, t.ID); err != nil {
		return mapRepoError(err)
	}

	logger.Info("forum thread deleted", map[string]interface{}{
		"thread_id": t.ID.String(),
		"by":        actor.ID.String(),
	})
	return nil
}

// ModerateThread - admin pin/lock, field nil giữ nguyên
func (s *forumService) ModerateThread(ctx context.Context, slug string, req model.ModerateRequest) (*model.ThreadResponse, error) {
	t, err := s.repo.GetThreadBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if req.Pinned != nil {
		t.IsPinned = *req.Pinned
	}
	if req.Locked != nil {
		t.IsLocked = *req.Locked
	}
	if err := s.repo.SetModeration(ctx, t.ID, t.IsPinned, t.IsLocked); err != nil {
		return nil, mapRepoError(err)
	}
	resp := t.ToResponse()
	return &resp, nil
}

// =====================================================
// MESSAGES
// =====================================================

func (s *forumService) ListMessages(ctx context.Context, slug string, page, limit int, viewer *shared.Actor) (*model.MessageListResponse, error) {
	t, err := s.repo.GetThreadBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	page, limit, offset := utils.NormalizePage(page, limit)

	messages, total, err := s.repo.ListMessages(ctx, t.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]model.MessageResponse, len(messages))
	ids := make([]uuid.UUID, len(messages))
	for i := range messages {
		resp, err := s.messageResponse(&messages[i])
		if err != nil {
			return nil, err
		}
		items[i] = resp
		ids[i] = messages[i].ID
	}
	if err := s.fillUserVotes(ctx, viewer, model.TargetMessage, ids, func(i, v int) { items[i].UserVote = v }); err != nil {
		return nil, err
	}

	return &model.MessageListResponse{Messages: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *forumService) CreateMessage(ctx context.Context, actor shared.Actor, slug string, req model.CreateMessageRequest) (*model.MessageResponse, error) {
	// Step 1: Validate + thread
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t, err := s.repo.GetThreadBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if t.IsLocked {
		return nil, model.NewThreadLockedError()
	}

	var parent *model.Message
	if req.ParentID != nil {
		parent, err = s.repo.GetMessage(ctx, *req.ParentID)
		if err != nil || parent.ThreadID != t.ID {
			if err != nil && !errors.Is(err, model.ErrMessageNotFound) {
				return nil, err
			}
			return nil, model.NewInvalidParentError()
		}
	}

	// Step 2: Insert + message_count/last_activity_at
	now := s.now()
	m := &model.Message{
		ID:        uuid.New(),
		ThreadID:  t.ID,
		AuthorID:  actor.ID,
		ParentID:  req.ParentID,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.tx.WithinTx(ctx, func(q database.DBTX) error {
		if err := s.repo.CreateMessage(ctx, q, m); err != nil {
			return err
		}
		return s.repo.TouchThread(ctx, q, t.ID, now)
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	// Step 3: Thông báo (sau commit, lỗi chỉ log)
	s.notifyReply(ctx, actor, t, parent, m)

	saved, err := s.repo.GetMessage(ctx, m.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	resp, err := s.messageResponse(saved)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *forumService) UpdateMessage(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateMessageRequest) (*model.MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMessage(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if m.AuthorID != actor.ID {
		return nil, model.NewForbiddenError("Only the message author can edit it")
	}
	if m.IsDeleted {
		return nil, model.NewMessageNotFoundError()
	}

	m.Body = req.Body
	m.UpdatedAt = s.now()
	if err := s.repo.UpdateMessage(ctx, m); err != nil {
		return nil, mapRepoError(err)
	}

	resp, err := s.messageResponse(m)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteMessage xóa mềm: giữ row, thay body
func (s *forumService) DeleteMessage(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	m, err := s.repo.GetMessage(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if !actor.CanManage(m.AuthorID) {
		return model.NewForbiddenError("Only the message author or an admin can delete it")
	}
	if m.IsDeleted {
		return nil
	}

	m.SoftDelete(s.now())
	return mapRepoError(s.repo.UpdateMessage(ctx, m))
}

// =====================================================
// VOTES
// =====================================================

func (s *forumService) Vote(ctx context.Context, actor shared.Actor, req model.VoteRequest) (*model.VoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp := &model.VoteResponse{TargetType: req.TargetType, TargetID: req.TargetID}
	err := s.tx.WithinTx(ctx, func(q database.DBTX) error {
		// Step 1: Khóa target để vote đồng thời không lệch score
		if _, err := s.repo.LockTarget(ctx, q, req.TargetType, req.TargetID); err != nil {
			return err
		}

		// Step 2: Vote hiện tại -> quyết định thao tác
		existing, err := s.repo.GetVote(ctx, q, actor.ID, req.TargetType, req.TargetID)
		if err != nil {
			return err
		}
		outcome, err := model.ResolveVote(existing, req.Value)
		if err != nil {
			return err
		}

		// Step 3: Apply
		switch outcome.Action {
		case model.VoteDelete:
			err = s.repo.DeleteVote(ctx, q, actor.ID, req.TargetType, req.TargetID)
		default:
			err = s.repo.SaveVote(ctx, q, model.Vote{
				ProfileID:  actor.ID,
				TargetType: req.TargetType,
				TargetID:   req.TargetID,
				Value:      outcome.Stored,
			})
		}
		if err != nil {
			return err
		}

		score, err := s.repo.AdjustScore(ctx, q, req.TargetType, req.TargetID, outcome.Delta)
		if err != nil {
			return err
		}
		resp.Score = score
		resp.UserVote = outcome.Stored
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return resp, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *forumService) threadDetail(t *model.Thread) (*model.ThreadResponse, error) {
	html, err := s.renderer.RenderPost(t.Body)
	if err != nil {
		return nil, fmt.Errorf("render thread body: %w", err)
	}
	resp := t.ToResponse()
	resp.Body = t.Body
	resp.BodyHTML = html
	return &resp, nil
}

func (s *forumService) messageResponse(m *model.Message) (model.MessageResponse, error) {
	if m.IsDeleted {
		return m.ToResponse(""), nil
	}
	html, err := s.renderer.RenderPost(m.Body)
	if err != nil {
		return model.MessageResponse{}, fmt.Errorf("render message body: %w", err)
	}
	return m.ToResponse(html), nil
}

func (s *forumService) fillUserVotes(ctx context.Context, viewer *shared.Actor, target model.TargetType, ids []uuid.UUID, set func(i, v int)) error {
	if viewer == nil || len(ids) == 0 {
		return nil
	}
	votes, err := s.repo.UserVotes(ctx, viewer.ID, target, ids)
	if err != nil {
		return err
	}
	for i, id := range ids {
		if v, ok := votes[id]; ok {
			set(i, v)
		}
	}
	return nil
}

func (s *forumService) cleanTitle(title string) string {
	return strings.TrimSpace(s.renderer.StripHTML(title))
}

// notifyReply báo cho tác giả thread và tác giả message được reply, không tự báo cho mình
func (s *forumService) notifyReply(ctx context.Context, actor shared.Actor, t *model.Thread, parent *model.Message, m *model.Message) {
	link := "/forum/threads/" + t.Slug + "#m-" + m.ID.String()
	recipients := make([]uuid.UUID, 0, 2)
	if t.AuthorID != actor.ID {
		recipients = append(recipients, t.AuthorID)
	}
	if parent != nil && !parent.IsDeleted && parent.AuthorID != actor.ID && parent.AuthorID != t.AuthorID {
		recipients = append(recipients, parent.AuthorID)
	}

	for _, to := range recipients {
		err := s.notifier.Notify(ctx, notifmodel.CreateInput{
			ProfileID: to,
			Type:      notifmodel.TypeForumReply,
			Title:     "New reply in " + t.Title,
			Body:      m.Body,
			Link:      link,
		})
		if err != nil {
			logger.ErrorWithFields("forum reply notification failed", err, map[string]interface{}{
				"thread_id": t.ID.String(),
				"recipient": to.String(),
			})
		}
	}
}

func threadSlug(title string, id uuid.UUID) string {
	base := utils.GenerateSlug(title)
	if len(base) > 80 {
		base = strings.Trim(base[:80], "-")
	}
	suffix := strings.ReplaceAll(id.String(), "-", "")[:8]
	if base == "" {
		return "thread-" + suffix
	}
	return base + "-" + suffix
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrCategoryNotFound):
		return model.NewCategoryNotFoundError()
	case errors.Is(err, model.ErrThreadNotFound):
		return model.NewThreadNotFoundError()
	case errors.Is(err, model.ErrMessageNotFound):
		return model.NewMessageNotFoundError()
	case errors.Is(err, model.ErrTargetNotFound):
		return &model.ForumError{Code: model.ErrCodeThreadNotFound, Message: "Vote target not found", Err: err}
	case errors.Is(err, model.ErrInvalidVote):
		return model.NewInvalidVoteError()
	}
	return err
}

// =====================================================
// ATTACHMENTS
// =====================================================

// UploadAttachment lưu ảnh vào forum/<profile>/<uuid>.<ext>; body tham chiếu ảnh bằng Markdown
func (s *forumService) UploadAttachment(ctx context.Context, actor shared.Actor, data []byte) (*model.AttachmentResponse, error) {
	contentType, err := s.images.ValidateImage(data)
	if err != nil {
		return nil, model.NewInvalidUploadError(err)
	}

	ext := "jpg"
	if contentType == "image/png" {
		ext = "png"
	}
	key := fmt.Sprintf("forum/%s/%s.%s", actor.ID, uuid.New(), ext)

	url, err := s.store.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}

	return &model.AttachmentResponse{URL: url, Markdown: fmt.Sprintf("![](%s)", url)}, nil
}
