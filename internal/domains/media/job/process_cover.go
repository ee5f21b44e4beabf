package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"novelhub-backend/internal/domains/media/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
)

// ProcessCoverHandler resize cover vừa upload thành các variant
type ProcessCoverHandler struct {
	mediaService service.ServiceInterface
}

func NewProcessCoverHandler(mediaService service.ServiceInterface) *ProcessCoverHandler {
	return &ProcessCoverHandler{mediaService: mediaService}
}

func (h *ProcessCoverHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ProcessCoverPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ProcessCover payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	novelID, err := uuid.Parse(payload.NovelID)
	if err != nil || payload.OriginalKey == "" {
		return fmt.Errorf("invalid process cover payload %+v: %w", payload, asynq.SkipRetry)
	}

	log.Info().
		Str("novel_id", payload.NovelID).
		Str("original_key", payload.OriginalKey).
		Msg("Processing novel cover variants")

	if err := h.mediaService.ProcessCover(ctx, novelID, payload.OriginalKey); err != nil {
		log.Error().
			Err(err).
			Str("novel_id", payload.NovelID).
			Msg("Failed to process cover")
		return fmt.Errorf("process cover: %w", err)
	}

	return nil
}
