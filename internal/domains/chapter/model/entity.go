package model

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type Chapter struct {
	ID            uuid.UUID
	NovelID       uuid.UUID
	ChapterNumber int
	PartNumber    *int
	Title         string
	Slug          string
	Content       string // markdown
	WordCount     int
	Coins         int64
	PublishAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPublishedAt: publish_at nil = publish ngay khi tạo
func (c *Chapter) IsPublishedAt(t time.Time) bool {
	return c.PublishAt == nil || !c.PublishAt.After(t)
}

func (c *Chapter) IsFree() bool {
	return c.Coins <= 0
}

// Ref dùng cho prev/next
func (c *Chapter) Ref() *ChapterRef {
	return &ChapterRef{ID: c.ID, ChapterNumber: c.ChapterNumber, PartNumber: c.PartNumber, Title: c.Title}
}

// Label: "Chapter 12" hoặc "Chapter 12.2"
func (c *Chapter) Label() string {
	return c.Ref().Label()
}

type ChapterRef struct {
	ID            uuid.UUID `json:"id"`
	ChapterNumber int       `json:"chapter_number"`
	PartNumber    *int      `json:"part_number,omitempty"`
	Title         string    `json:"title"`
}

func (r *ChapterRef) Label() string {
	var b strings.Builder
	b.WriteString("Chapter ")
	b.WriteString(strconv.Itoa(r.ChapterNumber))
	if r.PartNumber != nil {
		b.WriteString(".")
		b.WriteString(strconv.Itoa(*r.PartNumber))
	}
	return b.String()
}

// CountWords đếm từ theo khoảng trắng, bỏ ký hiệu markdown đứng riêng
func CountWords(md string) int {
	n := 0
	for _, f := range strings.Fields(md) {
		if strings.IndexFunc(f, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			n++
		}
	}
	return n
}
