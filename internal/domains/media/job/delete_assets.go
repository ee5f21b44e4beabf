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

// DeleteNovelAssetsHandler xoá cover files sau khi novel bị xoá
type DeleteNovelAssetsHandler struct {
	mediaService service.ServiceInterface
}

func NewDeleteNovelAssetsHandler(mediaService service.ServiceInterface) *DeleteNovelAssetsHandler {
	return &DeleteNovelAssetsHandler{mediaService: mediaService}
}

func (h *DeleteNovelAssetsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.DeleteNovelAssetsPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeleteNovelAssets payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	novelID, err := uuid.Parse(payload.NovelID)
	if err != nil {
		return fmt.Errorf("invalid novel_id %q: %w", payload.NovelID, asynq.SkipRetry)
	}

	if err := h.mediaService.DeleteNovelAssets(ctx, novelID); err != nil {
		log.Error().
			Err(err).
			Str("novel_id", payload.NovelID).
			Msg("Failed to delete novel assets")
		return err
	}

	log.Info().
		Str("novel_id", payload.NovelID).
		Msg("Novel assets deleted")
	return nil
}
