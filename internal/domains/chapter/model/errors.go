package model

import (
	"errors"
	"fmt"
)

const (
	ErrCodeChapterNotFound = "CHP001"
	ErrCodeNumberExists    = "CHP002"
	ErrCodeForbidden       = "CHP003"
	ErrCodeInvalidCost     = "CHP004"
	ErrCodeNovelNotFound   = "CHP005"
)

var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrNumberExists    = errors.New("chapter number already exists")
	ErrForbidden       = errors.New("not allowed to manage this novel")
	ErrInvalidCost     = errors.New("invalid chapter cost")
	ErrNovelNotFound   = errors.New("novel not found")
)

type ChapterError struct {
	Code    string
	Message string
	Err     error
}

func (e *ChapterError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ChapterError) Unwrap() error {
	return e.Err
}

func NewChapterNotFoundError() *ChapterError {
	return &ChapterError{Code: ErrCodeChapterNotFound, Message: "Chapter not found", Err: ErrChapterNotFound}
}

func NewNumberExistsError(label string) *ChapterError {
	return &ChapterError{
		Code:    ErrCodeNumberExists,
		Message: fmt.Sprintf("%s already exists for this novel", label),
		Err:     ErrNumberExists,
	}
}

func NewForbiddenError() *ChapterError {
	return &ChapterError{Code: ErrCodeForbidden, Message: "You do not have permission to manage this novel", Err: ErrForbidden}
}

func NewInvalidCostError(max int64) *ChapterError {
	return &ChapterError{
		Code:    ErrCodeInvalidCost,
		Message: fmt.Sprintf("Chapter cost must be between 0 and %d coins", max),
		Err:     ErrInvalidCost,
	}
}

func NewNovelNotFoundError() *ChapterError {
	return &ChapterError{Code: ErrCodeNovelNotFound, Message: "Novel not found", Err: ErrNovelNotFound}
}
