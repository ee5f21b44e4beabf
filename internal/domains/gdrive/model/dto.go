package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const MaxFilesPerImport = 200

type CallbackRequest struct {
	Code  string `form:"code"`
	State string `form:"state"`
	Error string `form:"error"`
}

type ListFilesRequest struct {
	FolderID string `form:"folder_id"`
}

type StartImportRequest struct {
	NovelID         uuid.UUID  `json:"novel_id"`
	FileIDs         []string   `json:"file_ids"`
	StartingChapter int        `json:"starting_chapter"`
	Coins           int64      `json:"coins"`
	PublishAt       *time.Time `json:"publish_at"`
}

func (r StartImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NovelID, validation.By(func(v interface{}) error {
			if v.(uuid.UUID) == uuid.Nil {
				return validation.ErrRequired
			}
			return nil
		})),
		validation.Field(&r.FileIDs, validation.Required, validation.Length(1, MaxFilesPerImport),
			validation.Each(validation.Required, validation.Length(1, 128))),
		validation.Field(&r.StartingChapter, validation.Min(0)),
		validation.Field(&r.Coins, validation.Min(int64(0))),
	)
}

type AuthURLResponse struct {
	URL string `json:"url"`
}

type ConnectionStatus struct {
	Connected   bool       `json:"connected"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

type ImportJobResponse struct {
	ID              uuid.UUID  `json:"id"`
	NovelID         uuid.UUID  `json:"novel_id"`
	FileCount       int        `json:"file_count"`
	StartingChapter int        `json:"starting_chapter"`
	Coins           int64      `json:"coins"`
	PublishAt       *time.Time `json:"publish_at,omitempty"`
	Status          JobStatus  `json:"status"`
	Imported        int        `json:"imported"`
	Failed          int        `json:"failed"`
	Error           *string    `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (j *ImportJob) ToResponse() ImportJobResponse {
	return ImportJobResponse{
		ID:              j.ID,
		NovelID:         j.NovelID,
		FileCount:       len(j.FileIDs),
		StartingChapter: j.StartingChapter,
		Coins:           j.Coins,
		PublishAt:       j.PublishAt,
		Status:          j.Status,
		Imported:        j.Imported,
		Failed:          j.Failed,
		Error:           j.Error,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}
