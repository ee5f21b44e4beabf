package model

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark - reader theo dõi novel, kèm chapter đọc gần nhất
type Bookmark struct {
	ProfileID         uuid.UUID
	NovelID           uuid.UUID
	LastChapterID     *uuid.UUID
	LastChapterNumber *int
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// join từ novels
	NovelSlug         string
	NovelTitle        string
	NovelCoverURL     *string
	NovelChapterCount int
	NovelLastChapter  *time.Time
}

// UnreadChapters số chapter đã publish mà reader chưa đọc tới
func (b *Bookmark) UnreadChapters() int {
	read := 0
	if b.LastChapterNumber != nil {
		read = *b.LastChapterNumber
	}
	if n := b.NovelChapterCount - read; n > 0 {
		return n
	}
	return 0
}
