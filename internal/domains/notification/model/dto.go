package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type ListRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page"`
	Limit      int  `form:"limit"`
}

type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
	Unread        int            `json:"unread"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}

type MarkReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (r MarkReadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Length(1, 100)),
	)
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
