package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"novelhub-backend/internal/domains/analytics/service"
	"novelhub-backend/pkg/logger"
)

// FlushViewsHandler - analytics:flush_views, scheduler chạy mỗi 5 phút
type FlushViewsHandler struct {
	service service.ServiceInterface
}

func NewFlushViewsHandler(s service.ServiceInterface) *FlushViewsHandler {
	return &FlushViewsHandler{service: s}
}

func (h *FlushViewsHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	n, err := h.service.FlushViews(ctx)
	if err != nil {
		return fmt.Errorf("flush views: %w", err)
	}
	logger.Debug(fmt.Sprintf("flushed view counters for %d novels", n))
	return nil
}
