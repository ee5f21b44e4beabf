package model

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNewChapter   Type = "new_chapter"
	TypeDonation     Type = "donation"
	TypeForumReply   Type = "forum_reply"
	TypeSubscription Type = "subscription"
	TypeSystem       Type = "system"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"-"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput là input chung cho mọi producer (donation, forum reply, chapter mới...)
type CreateInput struct {
	ProfileID uuid.UUID
	Type      Type
	Title     string
	Body      string
	Link      string
}
