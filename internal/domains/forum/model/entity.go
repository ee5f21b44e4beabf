package model

import (
	"time"

	"github.com/google/uuid"
)

// DeletedBody thay cho nội dung message bị xóa mềm
const DeletedBody = "[deleted]"

type Category struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	SortOrder   int
	ThreadCount int
}

type Thread struct {
	ID             uuid.UUID
	CategoryID     uuid.UUID
	NovelID        *uuid.UUID
	AuthorID       uuid.UUID
	Title          string
	Slug           string
	Body           string
	Score          int
	MessageCount   int
	IsPinned       bool
	IsLocked       bool
	LastActivityAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// join
	CategorySlug   string
	AuthorUsername string
	AuthorName     string
}

type Message struct {
	ID        uuid.UUID
	ThreadID  uuid.UUID
	AuthorID  uuid.UUID
	ParentID  *uuid.UUID
	Body      string
	Score     int
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time

	AuthorUsername string
	AuthorName     string
}

// SoftDelete giữ lại row để reply không mất ngữ cảnh
func (m *Message) SoftDelete(now time.Time) {
	m.Body = DeletedBody
	m.IsDeleted = true
	m.UpdatedAt = now
}

// =====================================================
// VOTES
// =====================================================

type TargetType string

const (
	TargetThread  TargetType = "thread"
	TargetMessage TargetType = "message"
)

func (t TargetType) Valid() bool {
	return t == TargetThread || t == TargetMessage
}

type Vote struct {
	ProfileID  uuid.UUID
	TargetType TargetType
	TargetID   uuid.UUID
	Value      int
}

type VoteAction int

const (
	VoteInsert VoteAction = iota + 1
	VoteDelete
	VoteUpdate
)

// VoteOutcome là kết quả của ResolveVote
type VoteOutcome struct {
	Action VoteAction
	Stored int // giá trị vote sau thao tác, 0 = không còn vote
	Delta  int // thay đổi của score
}

// ResolveVote: existing 0 = chưa vote.
//   - chưa vote: insert, score += v
//   - cùng chiều: bỏ vote, score -= v
//   - ngược chiều: đổi vote, score += 2v
func ResolveVote(existing, requested int) (VoteOutcome, error) {
	if requested != 1 && requested != -1 {
		return VoteOutcome{}, ErrInvalidVote
	}
	switch existing {
	case 0:
		return VoteOutcome{Action: VoteInsert, Stored: requested, Delta: requested}, nil
	case requested:
		return VoteOutcome{Action: VoteDelete, Stored: 0, Delta: -requested}, nil
	case -requested:
		return VoteOutcome{Action: VoteUpdate, Stored: requested, Delta: 2 * requested}, nil
	}
	return VoteOutcome{}, ErrInvalidVote
}

// =====================================================
// LISTING
// =====================================================

const (
	SortActivity = "activity"
	SortNew      = "new"
	SortTop      = "top"
)

type ThreadFilter struct {
	CategoryID *uuid.UUID
	NovelID    *uuid.UUID
	Sort       string
}
