package model

import "errors"

const (
	ErrCodeNovelNotFound     = "BMK001"
	ErrCodeAlreadyBookmarked = "BMK002"
	ErrCodeBookmarkNotFound  = "BMK003"
)

var (
	ErrNovelNotFound     = errors.New("novel not found")
	ErrAlreadyBookmarked = errors.New("novel already bookmarked")
	ErrBookmarkNotFound  = errors.New("bookmark not found")
)

type BookmarkError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookmarkError) Error() string {
	return e.Message
}

func (e *BookmarkError) Unwrap() error {
	return e.Err
}

func NewNovelNotFoundError() *BookmarkError {
	return &BookmarkError{Code: ErrCodeNovelNotFound, Message: "Novel not found", Err: ErrNovelNotFound}
}

func NewAlreadyBookmarkedError() *BookmarkError {
	return &BookmarkError{Code: ErrCodeAlreadyBookmarked, Message: "Novel is already bookmarked", Err: ErrAlreadyBookmarked}
}

func NewBookmarkNotFoundError() *BookmarkError {
	return &BookmarkError{Code: ErrCodeBookmarkNotFound, Message: "Bookmark not found", Err: ErrBookmarkNotFound}
}
