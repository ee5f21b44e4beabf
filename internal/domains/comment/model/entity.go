package model

import (
	"time"

	"github.com/google/uuid"
)

// Comment - bình luận chapter; ParagraphID != nil là comment gắn với một đoạn (popover)
type Comment struct {
	ID          uuid.UUID
	ChapterID   uuid.UUID
	ProfileID   uuid.UUID
	ParagraphID *string
	ParentID    *uuid.UUID
	Body        string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// join profiles
	Username    string
	DisplayName string
	AvatarURL   *string
}

func (c *Comment) IsEdited() bool {
	return c.UpdatedAt.After(c.CreatedAt)
}
