package repository

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"novelhub-backend/internal/domains/gdrive/model"
)

type DriveRepository interface {
	// Connection
	SaveToken(ctx context.Context, profileID uuid.UUID, tok *oauth2.Token) error
	GetConnection(ctx context.Context, profileID uuid.UUID) (*model.DriveConnection, error)
	DeleteConnection(ctx context.Context, profileID uuid.UUID) error

	// Import jobs
	CreateJob(ctx context.Context, job *model.ImportJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error)
	ListJobs(ctx context.Context, profileID uuid.UUID, limit int) ([]model.ImportJob, error)
	// ClaimJob chuyển pending/running → running; false nếu job đã kết thúc
	ClaimJob(ctx context.Context, id uuid.UUID) (bool, error)
	RecordFile(ctx context.Context, id uuid.UUID, fileID string, chapterNumber int) error
	FinishJob(ctx context.Context, job *model.ImportJob) error
}
