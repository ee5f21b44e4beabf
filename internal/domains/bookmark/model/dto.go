package model

import (
	"time"

	"github.com/google/uuid"
)

type BookmarkResponse struct {
	NovelID           uuid.UUID  `json:"novel_id"`
	NovelSlug         string     `json:"novel_slug"`
	NovelTitle        string     `json:"novel_title"`
	NovelCoverURL     *string    `json:"novel_cover_url,omitempty"`
	ChapterCount      int        `json:"chapter_count"`
	LastChapterAt     *time.Time `json:"last_chapter_at,omitempty"`
	LastChapterID     *uuid.UUID `json:"last_chapter_id,omitempty"`
	LastChapterNumber *int       `json:"last_chapter_number,omitempty"`
	UnreadChapters    int        `json:"unread_chapters"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type ListResponse struct {
	Bookmarks []BookmarkResponse `json:"bookmarks"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

type StatusResponse struct {
	NovelID      uuid.UUID `json:"novel_id"`
	IsBookmarked bool      `json:"is_bookmarked"`
}

func (b *Bookmark) ToResponse() BookmarkResponse {
	return BookmarkResponse{
		NovelID:           b.NovelID,
		NovelSlug:         b.NovelSlug,
		NovelTitle:        b.NovelTitle,
		NovelCoverURL:     b.NovelCoverURL,
		ChapterCount:      b.NovelChapterCount,
		LastChapterAt:     b.NovelLastChapter,
		LastChapterID:     b.LastChapterID,
		LastChapterNumber: b.LastChapterNumber,
		UnreadChapters:    b.UnreadChapters(),
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}
