package repository

import (
	"context"

	"github.com/google/uuid"

	"novelhub-backend/internal/domains/comment/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	UpdateBody(ctx context.Context, id uuid.UUID, body string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List: paragraphID nil = toàn bộ comment của chapter
	List(ctx context.Context, chapterID uuid.UUID, paragraphID *string, limit, offset int) ([]model.Comment, int, error)
	CountsByParagraph(ctx context.Context, chapterID uuid.UUID) ([]model.ParagraphCount, error)
}
