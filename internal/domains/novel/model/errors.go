package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNovelNotFound = "NOV001"
	ErrCodeSlugExists    = "NOV002"
	ErrCodeForbidden     = "NOV003"
	ErrCodeInvalidImage  = "NOV004"
	ErrCodeInvalidSlug   = "NOV005"
)

var (
	ErrNovelNotFound = errors.New("novel not found")
	ErrSlugExists    = errors.New("novel slug already exists")
	ErrForbidden     = errors.New("not allowed to manage this novel")
	ErrInvalidImage  = errors.New("invalid cover image")
	ErrInvalidSlug   = errors.New("slug is empty after normalization")
)

// NovelError custom error type
type NovelError struct {
	Code    string
	Message string
	Err     error
}

func (e *NovelError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NovelError) Unwrap() error {
	return e.Err
}

func NewNovelNotFoundError() *NovelError {
	return &NovelError{Code: ErrCodeNovelNotFound, Message: "Novel not found", Err: ErrNovelNotFound}
}

func NewSlugExistsError(slug string) *NovelError {
	return &NovelError{Code: ErrCodeSlugExists, Message: fmt.Sprintf("Slug %q is already in use", slug), Err: ErrSlugExists}
}

func NewForbiddenError() *NovelError {
	return &NovelError{Code: ErrCodeForbidden, Message: "You are not allowed to manage this novel", Err: ErrForbidden}
}

func NewInvalidImageError(err error) *NovelError {
	return &NovelError{Code: ErrCodeInvalidImage, Message: "Invalid cover image", Err: err}
}

func NewInvalidSlugError() *NovelError {
	return &NovelError{Code: ErrCodeInvalidSlug, Message: "Slug must contain letters or numbers", Err: ErrInvalidSlug}
}
