package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var statusRule = validation.In(StatusOngoing, StatusCompleted, StatusHiatus, StatusDraft)

// =====================================================
// REQUEST DTOs
// =====================================================

type CreateNovelRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Tags        []string `json:"tags"`
}

func (r CreateNovelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Slug, validation.Length(0, 200)),
		validation.Field(&r.Description, validation.Length(0, 10000)),
		validation.Field(&r.Status, statusRule),
		validation.Field(&r.Tags, validation.Length(0, 20), validation.Each(validation.Required, validation.Length(1, 50))),
	)
}

type UpdateNovelRequest struct {
	Title       *string   `json:"title"`
	Slug        *string   `json:"slug"`
	Description *string   `json:"description"`
	Status      *Status   `json:"status"`
	Tags        *[]string `json:"tags"`
}

func (r UpdateNovelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 10000)),
		validation.Field(&r.Status, statusRule),
		validation.Field(&r.Tags, validation.By(func(v interface{}) error {
			tags, _ := v.(*[]string)
			if tags == nil {
				return nil
			}
			return validation.Validate(*tags, validation.Length(0, 20), validation.Each(validation.Required, validation.Length(1, 50)))
		})),
	)
}

type ListNovelsRequest struct {
	Query    string `form:"q"`
	Tag      string `form:"tag"`
	Status   string `form:"status"`
	AuthorID string `form:"author"`
	Featured bool   `form:"featured"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

func (r ListNovelsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Length(0, 100)),
		validation.Field(&r.Status, validation.In("ongoing", "completed", "hiatus")),
		validation.Field(&r.Sort, validation.In(SortLatest, SortPopular, SortViews, SortTitle)),
	)
}

type SetFeaturedRequest struct {
	Featured bool `json:"featured"`
}

// =====================================================
// RESPONSE DTOs
// =====================================================

type AuthorRef struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
}

type NovelResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	CoverURL      *string    `json:"cover_url,omitempty"`
	Status        Status     `json:"status"`
	Tags          []string   `json:"tags"`
	Author        AuthorRef  `json:"author"`
	ViewCount     int64      `json:"view_count"`
	BookmarkCount int        `json:"bookmark_count"`
	ChapterCount  int        `json:"chapter_count"`
	LastChapterAt *time.Time `json:"last_chapter_at,omitempty"`
	IsFeatured    bool       `json:"is_featured"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ListNovelsResponse struct {
	Novels []NovelResponse `json:"novels"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type CoverResponse struct {
	CoverURL string `json:"cover_url"`
}
