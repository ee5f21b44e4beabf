package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"novelhub-backend/internal/domains/gdrive/model"
	"novelhub-backend/internal/domains/gdrive/service"
	"novelhub-backend/internal/shared"
	"novelhub-backend/internal/shared/utils"
	"novelhub-backend/pkg/logger"
)

// DriveImportHandler - gdrive:import
type DriveImportHandler struct {
	service service.ServiceInterface
}

func NewDriveImportHandler(s service.ServiceInterface) *DriveImportHandler {
	return &DriveImportHandler{service: s}
}

func (h *DriveImportHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p shared.DriveImportPayload
	if err := utils.UnmarshalTask(t, &p); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(p.JobID)
	if err != nil {
		return fmt.Errorf("invalid job_id %q: %w", p.JobID, asynq.SkipRetry)
	}

	results, err := h.service.RunImport(ctx, jobID)
	if err != nil {
		// job đã bị xoá hoặc user disconnect: retry không giúp gì
		var de *model.DriveError
		if errors.Is(err, model.ErrJobNotFound) || errors.As(err, &de) {
			return fmt.Errorf("drive import %s: %v: %w", jobID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("drive import %s: %w", jobID, err)
	}

	logger.Debug(fmt.Sprintf("drive import %s processed %d files", jobID, len(results)))
	return nil
}
