package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const MaxBodyLength = 5000

// paragraph id do renderer gán: "p-1", "p-2", ...
var paragraphIDPattern = regexp.MustCompile(`^p-[0-9]{1,6}$`)

type CreateCommentRequest struct {
	ParagraphID *string    `json:"paragraph_id"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Body        string     `json:"body"`
}

func (r CreateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ParagraphID, validation.NilOrNotEmpty, validation.Match(paragraphIDPattern)),
		validation.Field(&r.Body, validation.Required, validation.RuneLength(1, MaxBodyLength)),
	)
}

type UpdateCommentRequest struct {
	Body string `json:"body"`
}

func (r UpdateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body, validation.Required, validation.RuneLength(1, MaxBodyLength)),
	)
}

type ListRequest struct {
	ParagraphID *string `form:"paragraph_id"`
	Page        int     `form:"page"`
	Limit       int     `form:"limit"`
}

type AuthorRef struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

type CommentResponse struct {
	ID          uuid.UUID  `json:"id"`
	ChapterID   uuid.UUID  `json:"chapter_id"`
	ParagraphID *string    `json:"paragraph_id,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Body        string     `json:"body"`
	Author      AuthorRef  `json:"author"`
	IsEdited    bool       `json:"is_edited"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// ParagraphCount - số comment mỗi đoạn, frontend dùng để vẽ badge
type ParagraphCount struct {
	ParagraphID string `json:"paragraph_id"`
	Count       int    `json:"count"`
}

func (c *Comment) ToResponse() CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		ChapterID:   c.ChapterID,
		ParagraphID: c.ParagraphID,
		ParentID:    c.ParentID,
		Body:        c.Body,
		Author: AuthorRef{
			ID:          c.ProfileID,
			Username:    c.Username,
			DisplayName: c.DisplayName,
			AvatarURL:   c.AvatarURL,
		},
		IsEdited:  c.IsEdited(),
		CreatedAt: c.CreatedAt,
	}
}
