package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/notification/model"
	"novelhub-backend/internal/domains/notification/repository"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/logger"
)

const (
	maxTitleLen = 200
	maxBodyLen  = 1000
)

type notificationService struct {
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo, now: time.Now}
}

// ================================================
// PRODUCERS
// ================================================

func (s *notificationService) Notify(ctx context.Context, in model.CreateInput) error {
	if in.ProfileID == uuid.Nil {
		return fmt.Errorf("notify: profile id is required")
	}
	in = normalize(in)

	n := &model.Notification{
		ProfileID: in.ProfileID,
		Type:      in.Type,
		Title:     in.Title,
		Body:      in.Body,
		Link:      in.Link,
	}
	return s.repo.Create(ctx, n)
}

func (s *notificationService) NotifyNovelFollowers(ctx context.Context, novelID, exclude uuid.UUID, in model.CreateInput) (int64, error) {
	count, err := s.repo.CreateForNovelFollowers(ctx, novelID, exclude, normalize(in))
	if err != nil {
		return 0, err
	}
	logger.Info("novel followers notified", map[string]interface{}{
		"novel_id": novelID.String(),
		"type":     string(in.Type),
		"count":    count,
	})
	return count, nil
}

// normalize cắt title/body theo giới hạn hiển thị
func normalize(in model.CreateInput) model.CreateInput {
	if in.Type == "" {
		in.Type = model.TypeSystem
	}
	in.Title = truncate(strings.TrimSpace(in.Title), maxTitleLen)
	in.Body = truncate(strings.TrimSpace(in.Body), maxBodyLen)
	return in
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

// ================================================
// READER
// ================================================

func (s *notificationService) List(ctx context.Context, profileID uuid.UUID, req model.ListRequest) (*model.ListResponse, error) {
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	items, total, err := s.repo.List(ctx, profileID, req.UnreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &model.ListResponse{
		Notifications: items,
		Total:         total,
		Unread:        unread,
		Page:          page,
		Limit:         limit,
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, profileID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, profileID)
}

func (s *notificationService) MarkRead(ctx context.Context, profileID uuid.UUID, req model.MarkReadRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.repo.MarkRead(ctx, profileID, req.IDs)
}

func (s *notificationService) MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, profileID)
}

func (s *notificationService) Delete(ctx context.Context, profileID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, profileID, id); err != nil {
		if errors.Is(err, model.ErrNotificationNotFound) {
			return model.NewNotificationNotFoundError()
		}
		return err
	}
	return nil
}

// CleanupOldReadNotifications xóa notification đã đọc cũ hơn olderThan
func (s *notificationService) CleanupOldReadNotifications(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, s.now().Add(-olderThan))
}
