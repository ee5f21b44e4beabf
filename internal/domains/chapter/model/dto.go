package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const maxContentBytes = 500_000

// =====================================================
// REQUESTS
// =====================================================

type CreateChapterRequest struct {
	ChapterNumber int        `json:"chapter_number"`
	PartNumber    *int       `json:"part_number"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Coins         int64      `json:"coins"`
	PublishAt     *time.Time `json:"publish_at"`
}

func (r CreateChapterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ChapterNumber, validation.Min(0)),
		validation.Field(&r.PartNumber, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Content, validation.Required, validation.Length(1, maxContentBytes)),
		validation.Field(&r.Coins, validation.Min(int64(0))),
	)
}

type UpdateChapterRequest struct {
	ChapterNumber *int       `json:"chapter_number"`
	PartNumber    *int       `json:"part_number"`
	Title         *string    `json:"title"`
	Content       *string    `json:"content"`
	Coins         *int64     `json:"coins"`
	PublishAt     *time.Time `json:"publish_at"`
}

func (r UpdateChapterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ChapterNumber, validation.Min(0)),
		validation.Field(&r.PartNumber, validation.Min(1)),
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.Length(1, maxContentBytes)),
		validation.Field(&r.Coins, validation.Min(int64(0))),
	)
}

// =====================================================
// RESPONSES
// =====================================================

// ChapterSummary - item trong danh sách chapter của novel
type ChapterSummary struct {
	ID            uuid.UUID  `json:"id"`
	ChapterNumber int        `json:"chapter_number"`
	PartNumber    *int       `json:"part_number,omitempty"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	WordCount     int        `json:"word_count"`
	Coins         int64      `json:"coins"`
	PublishAt     *time.Time `json:"publish_at,omitempty"`
	IsPublished   bool       `json:"is_published"`
	IsLocked      bool       `json:"is_locked"`
	IsUnlocked    bool       `json:"is_unlocked"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ChapterView - response đọc chapter; Content là HTML đã sanitize, rỗng khi bị khóa
type ChapterView struct {
	ID            uuid.UUID   `json:"id"`
	NovelID       uuid.UUID   `json:"novel_id"`
	NovelSlug     string      `json:"novel_slug"`
	NovelTitle    string      `json:"novel_title"`
	ChapterNumber int         `json:"chapter_number"`
	PartNumber    *int        `json:"part_number,omitempty"`
	Title         string      `json:"title"`
	Content       string      `json:"content,omitempty"`
	WordCount     int         `json:"word_count"`
	Coins         int64       `json:"coins"`
	IsLocked      bool        `json:"is_locked"`
	IsUnlocked    bool        `json:"is_unlocked"`
	PublishAt     *time.Time  `json:"publish_at,omitempty"`
	Prev          *ChapterRef `json:"prev,omitempty"`
	Next          *ChapterRef `json:"next,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// ChapterResponse - dữ liệu gốc (markdown) cho editor của tác giả
type ChapterResponse struct {
	ID            uuid.UUID  `json:"id"`
	NovelID       uuid.UUID  `json:"novel_id"`
	ChapterNumber int        `json:"chapter_number"`
	PartNumber    *int       `json:"part_number,omitempty"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	WordCount     int        `json:"word_count"`
	Coins         int64      `json:"coins"`
	PublishAt     *time.Time `json:"publish_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (c *Chapter) ToResponse() *ChapterResponse {
	return &ChapterResponse{
		ID:            c.ID,
		NovelID:       c.NovelID,
		ChapterNumber: c.ChapterNumber,
		PartNumber:    c.PartNumber,
		Title:         c.Title,
		Slug:          c.Slug,
		Content:       c.Content,
		WordCount:     c.WordCount,
		Coins:         c.Coins,
		PublishAt:     c.PublishAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (c *Chapter) ToSummary(now time.Time) ChapterSummary {
	return ChapterSummary{
		ID:            c.ID,
		ChapterNumber: c.ChapterNumber,
		PartNumber:    c.PartNumber,
		Title:         c.Title,
		Slug:          c.Slug,
		WordCount:     c.WordCount,
		Coins:         c.Coins,
		PublishAt:     c.PublishAt,
		IsPublished:   c.IsPublishedAt(now),
		IsLocked:      !c.IsFree(),
		CreatedAt:     c.CreatedAt,
	}
}
