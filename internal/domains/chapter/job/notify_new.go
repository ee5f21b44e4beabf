package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"novelhub-backend/internal/domains/chapter/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/logger"
)

// NotifyNewChapterHandler - chapter:notify_new
// Chạy ngay khi chapter publish, hoặc lúc publish_at với chapter hẹn giờ
type NotifyNewChapterHandler struct {
	service service.ServiceInterface
}

func NewNotifyNewChapterHandler(s service.ServiceInterface) *NotifyNewChapterHandler {
	return &NotifyNewChapterHandler{service: s}
}

func (h *NotifyNewChapterHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p shared.NotifyNewChapterPayload
	if err := utils.UnmarshalTask(t, &p); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	chapterID, err := uuid.Parse(p.ChapterID)
	if err != nil {
		return fmt.Errorf("invalid chapter_id %q: %w", p.ChapterID, asynq.SkipRetry)
	}

	if err := h.service.PublishNotice(ctx, chapterID); err != nil {
		return fmt.Errorf("publish notice %s: %w", chapterID, err)
	}

	logger.Debug("new chapter notice processed: " + chapterID.String())
	return nil
}
