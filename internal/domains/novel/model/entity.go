package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusHiatus    Status = "hiatus"
	StatusDraft     Status = "draft"
)

// Sort options cho danh sách novel
const (
	SortLatest  = "latest"
	SortPopular = "popular"
	SortViews   = "views"
	SortTitle   = "title"
)

// ViewCounterPrefix - key Redis đếm view, job analytics:flush_views gom về DB
const ViewCounterPrefix = "novel:views:"

// Novel entity
type Novel struct {
	ID             uuid.UUID
	AuthorID       uuid.UUID
	AuthorUsername string
	AuthorName     string
	Title          string
	Slug           string
	Description    string
	CoverURL       *string
	Status         Status
	Tags           []string
	ViewCount      int64
	BookmarkCount  int
	ChapterCount   int
	LastChapterAt  *time.Time
	IsFeatured     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Tag struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	NovelCount int       `json:"novel_count"`
}

// ListFilter là filter đã normalize cho repository
type ListFilter struct {
	Query         string
	TagSlug       string
	Status        Status
	AuthorID      *uuid.UUID
	IncludeDrafts bool
	FeaturedOnly  bool
	Sort          string
	Limit         int
	Offset        int
}

func (n *Novel) ToResponse() NovelResponse {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NovelResponse{
		ID:            n.ID,
		Title:         n.Title,
		Slug:          n.Slug,
		Description:   n.Description,
		CoverURL:      n.CoverURL,
		Status:        n.Status,
		Tags:          tags,
		Author:        AuthorRef{ID: n.AuthorID, Username: n.AuthorUsername, DisplayName: n.AuthorName},
		ViewCount:     n.ViewCount,
		BookmarkCount: n.BookmarkCount,
		ChapterCount:  n.ChapterCount,
		LastChapterAt: n.LastChapterAt,
		IsFeatured:    n.IsFeatured,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}
