package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"novelhub-backend/internal/config"
	"novelhub-backend/internal/domains/notification/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/logger"
)

// ================================================
// CLEANUP OLD READ NOTIFICATIONS JOB HANDLER
// ================================================

type CleanupOldNotificationsHandler struct {
	notificationService service.NotificationService
	jobConfig           config.JobConfig
}

func NewCleanupOldNotificationsHandler(
	notificationService service.NotificationService,
	jobConfig config.JobConfig,
) *CleanupOldNotificationsHandler {
	return &CleanupOldNotificationsHandler{
		notificationService: notificationService,
		jobConfig:           jobConfig,
	}
}

func (h *CleanupOldNotificationsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.CleanupNotificationsPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		// payload lỗi thì dùng retention trong config
		logger.Error("Failed to unmarshal cleanup_old payload, using configured retention", err)
	}

	days := payload.Days
	if days <= 0 {
		days = h.jobConfig.CleanupRetentionDays
	}
	if days <= 0 {
		days = 30
	}

	olderThan := time.Duration(days) * 24 * time.Hour

	logger.Info("Starting CleanupOldNotifications job", map[string]interface{}{
		"days": days,
	})

	deleted, err := h.notificationService.CleanupOldReadNotifications(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("cleanup old read notifications: %w", err)
	}

	logger.Info("Completed CleanupOldNotifications job", map[string]interface{}{
		"days":          days,
		"deleted_count": deleted,
	})
	return nil
}
