package service

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"novelhub-backend/internal/domains/comment/model"
	"novelhub-backend/internal/domains/comment/repository"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/logger"
)

type ServiceInterface interface {
	List(ctx context.Context, chapterID uuid.UUID, req model.ListRequest) (*model.ListResponse, error)
	CountsByParagraph(ctx context.Context, chapterID uuid.UUID) ([]model.ParagraphCount, error)
	Create(ctx context.Context, actor shared.Actor, chapterID uuid.UUID, req model.CreateCommentRequest) (*model.CommentResponse, error)
	Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateCommentRequest) (*model.CommentResponse, error)
	Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error
}

// Sanitizer - markdown.Renderer, comment lưu dạng plain text
type Sanitizer interface {
	StripHTML(s string) string
}

type commentService struct {
	repo      repository.CommentRepository
	sanitizer Sanitizer
	now       func() time.Time
}

func NewCommentService(repo repository.CommentRepository, sanitizer Sanitizer) ServiceInterface {
	return &commentService{repo: repo, sanitizer: sanitizer, now: time.Now}
}

func (s *commentService) List(ctx context.Context, chapterID uuid.UUID, req model.ListRequest) (*model.ListResponse, error) {
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	comments, total, err := s.repo.List(ctx, chapterID, req.ParagraphID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]model.CommentResponse, len(comments))
	for i := range comments {
		items[i] = comments[i].ToResponse()
	}
	return &model.ListResponse{Comments: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *commentService) CountsByParagraph(ctx context.Context, chapterID uuid.UUID) ([]model.ParagraphCount, error) {
	return s.repo.CountsByParagraph(ctx, chapterID)
}

func (s *commentService) Create(ctx context.Context, actor shared.Actor, chapterID uuid.UUID, req model.CreateCommentRequest) (*model.CommentResponse, error) {
	// Step 1: Validate + sanitize
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := s.clean(req.Body)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &model.Comment{
		ID:          uuid.New(),
		ChapterID:   chapterID,
		ProfileID:   actor.ID,
		ParagraphID: req.ParagraphID,
		Body:        body,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Step 2: Reply - chỉ một cấp, reply của reply gắn vào comment gốc
	if req.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, model.ErrCommentNotFound) {
				return nil, model.NewInvalidParentError()
			}
			return nil, err
		}
		if parent.ChapterID != chapterID {
			return nil, model.NewInvalidParentError()
		}
		root := parent.ID
		if parent.ParentID != nil {
			root = *parent.ParentID
		}
		c.ParentID = &root
		c.ParagraphID = parent.ParagraphID
	}

	// Step 3: Save rồi đọc lại để có thông tin tác giả
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, mapRepoError(err)
	}
	saved, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	resp := saved.ToResponse()
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateCommentRequest) (*model.CommentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	// Sửa: chỉ chủ comment (admin cũng không sửa hộ)
	if c.ProfileID != actor.ID {
		return nil, model.NewForbiddenError()
	}

	body, err := s.clean(req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBody(ctx, id, body); err != nil {
		return nil, mapRepoError(err)
	}

	c.Body = body
	c.UpdatedAt = s.now()
	resp := c.ToResponse()
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if !actor.CanManage(c.ProfileID) {
		return model.NewForbiddenError()
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	if actor.ID != c.ProfileID {
		logger.Info("comment removed by admin", map[string]interface{}{
			"comment_id": id.String(),
			"admin_id":   actor.ID.String(),
		})
	}
	return nil
}

// clean bỏ toàn bộ HTML; body chỉ còn tag thì coi như rỗng
func (s *commentService) clean(body string) (string, error) {
	cleaned := strings.TrimSpace(s.sanitizer.StripHTML(body))
	if cleaned == "" {
		return "", validation.Errors{"body": errors.New("cannot be blank")}
	}
	return cleaned, nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, model.ErrCommentNotFound):
		return model.NewCommentNotFoundError()
	case errors.Is(err, model.ErrChapterNotFound):
		return model.NewChapterNotFoundError()
	case errors.Is(err, model.ErrInvalidParent):
		return model.NewInvalidParentError()
	}
	return err
}
