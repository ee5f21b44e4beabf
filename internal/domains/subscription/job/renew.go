package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"novelhub-backend/internal/domains/subscription/service"
	"novelhub-backend/pkg/logger"
)

// RenewOrExpireHandler - subscription:renew_or_expire (hourly)
type RenewOrExpireHandler struct {
	service service.ServiceInterface
}

func NewRenewOrExpireHandler(s service.ServiceInterface) *RenewOrExpireHandler {
	return &RenewOrExpireHandler{service: s}
}

func (h *RenewOrExpireHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	result, err := h.service.RenewOrExpire(ctx)
	if err != nil {
		return fmt.Errorf("renew subscriptions: %w", err)
	}

	logger.Info("Completed subscription renewal", map[string]interface{}{
		"renewed": result.Renewed,
		"expired": result.Expired,
		"failed":  result.Failed,
	})
	return nil
}
