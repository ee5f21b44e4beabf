package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// =====================================================
// REQUESTS
// =====================================================

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Slug, validation.Length(0, 100)),
		validation.Field(&r.Description, validation.Length(0, 500)),
	)
}

type ListThreadsRequest struct {
	Category string `form:"category"`
	NovelID  string `form:"novel_id"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

func (r ListThreadsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Sort, validation.In(SortActivity, SortNew, SortTop)),
		validation.Field(&r.NovelID, validation.When(r.NovelID != "", validation.By(isUUID))),
	)
}

type CreateThreadRequest struct {
	CategoryID uuid.UUID  `json:"category_id"`
	NovelID    *uuid.UUID `json:"novel_id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
}

func (r CreateThreadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CategoryID, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.RuneLength(3, 200)),
		validation.Field(&r.Body, validation.Required, validation.RuneLength(1, 20000)),
	)
}

type UpdateThreadRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (r UpdateThreadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(3, 200)),
		validation.Field(&r.Body, validation.NilOrNotEmpty, validation.RuneLength(1, 20000)),
	)
}

// ModerateRequest - admin pin/lock
type ModerateRequest struct {
	Pinned *bool `json:"pinned"`
	Locked *bool `json:"locked"`
}

type CreateMessageRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
	Body     string     `json:"body"`
}

func (r CreateMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body, validation.Required, validation.RuneLength(1, 10000)),
	)
}

type UpdateMessageRequest struct {
	Body string `json:"body"`
}

func (r UpdateMessageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Body, validation.Required, validation.RuneLength(1, 10000)),
	)
}

type VoteRequest struct {
	TargetType TargetType `json:"target_type"`
	TargetID   uuid.UUID  `json:"target_id"`
	Value      int        `json:"value"`
}

func (r VoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TargetType, validation.Required, validation.In(TargetThread, TargetMessage)),
		validation.Field(&r.TargetID, validation.Required),
		validation.Field(&r.Value, validation.Required, validation.In(1, -1)),
	)
}

func isUUID(v interface{}) error {
	s, _ := v.(string)
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_is_uuid", "must be a valid UUID")
	}
	return nil
}

// =====================================================
// RESPONSES
// =====================================================

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	ThreadCount int       `json:"thread_count"`
}

type AuthorRef struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
}

type ThreadResponse struct {
	ID             uuid.UUID  `json:"id"`
	CategoryID     uuid.UUID  `json:"category_id"`
	CategorySlug   string     `json:"category_slug,omitempty"`
	NovelID        *uuid.UUID `json:"novel_id,omitempty"`
	Author         AuthorRef  `json:"author"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Body           string     `json:"body,omitempty"`
	BodyHTML       string     `json:"body_html,omitempty"`
	Score          int        `json:"score"`
	UserVote       int        `json:"user_vote"`
	MessageCount   int        `json:"message_count"`
	IsPinned       bool       `json:"is_pinned"`
	IsLocked       bool       `json:"is_locked"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ThreadListResponse struct {
	Threads []ThreadResponse `json:"threads"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

type MessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	ThreadID  uuid.UUID  `json:"thread_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Author    AuthorRef  `json:"author"`
	Body      string     `json:"body"`
	BodyHTML  string     `json:"body_html"`
	Score     int        `json:"score"`
	UserVote  int        `json:"user_vote"`
	IsDeleted bool       `json:"is_deleted"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type VoteResponse struct {
	TargetType TargetType `json:"target_type"`
	TargetID   uuid.UUID  `json:"target_id"`
	Score      int        `json:"score"`
	UserVote   int        `json:"user_vote"`
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		ThreadCount: c.ThreadCount,
	}
}

// ToResponse không kèm body; GetThread tự điền body/body_html
func (t *Thread) ToResponse() ThreadResponse {
	return ThreadResponse{
		ID:             t.ID,
		CategoryID:     t.CategoryID,
		CategorySlug:   t.CategorySlug,
		NovelID:        t.NovelID,
		Author:         AuthorRef{ID: t.AuthorID, Username: t.AuthorUsername, DisplayName: t.AuthorName},
		Title:          t.Title,
		Slug:           t.Slug,
		Score:          t.Score,
		MessageCount:   t.MessageCount,
		IsPinned:       t.IsPinned,
		IsLocked:       t.IsLocked,
		LastActivityAt: t.LastActivityAt,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *Message) ToResponse(bodyHTML string) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		ParentID:  m.ParentID,
		Author:    AuthorRef{ID: m.AuthorID, Username: m.AuthorUsername, DisplayName: m.AuthorName},
		Body:      m.Body,
		BodyHTML:  bodyHTML,
		Score:     m.Score,
		IsDeleted: m.IsDeleted,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// AttachmentResponse - URL ảnh đã upload kèm snippet Markdown để chèn vào body
type AttachmentResponse struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}
