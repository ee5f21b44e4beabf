package model

import "errors"

const (
	ErrCodeCategoryNotFound = "FRM001"
	ErrCodeThreadNotFound   = "FRM002"
	ErrCodeMessageNotFound  = "FRM003"
	ErrCodeForbidden        = "FRM004"
	ErrCodeThreadLocked     = "FRM005"
	ErrCodeInvalidVote      = "FRM006"
	ErrCodeCategoryExists   = "FRM007"
	ErrCodeInvalidParent    = "FRM008"
	ErrCodeInvalidUpload    = "FRM009"
)

var (
	ErrCategoryNotFound = errors.New("forum category not found")
	ErrThreadNotFound   = errors.New("forum thread not found")
	ErrMessageNotFound  = errors.New("forum message not found")
	ErrForbidden        = errors.New("forbidden")
	ErrThreadLocked     = errors.New("thread is locked")
	ErrInvalidVote      = errors.New("vote value must be 1 or -1")
	ErrCategoryExists   = errors.New("category slug already exists")
	ErrInvalidParent    = errors.New("parent message not in thread")
	ErrTargetNotFound   = errors.New("vote target not found")
	ErrInvalidUpload    = errors.New("invalid attachment")
)

type ForumError struct {
	Code    string
	Message string
	Err     error
}

func (e *ForumError) Error() string { return e.Message }

func (e *ForumError) Unwrap() error { return e.Err }

func NewCategoryNotFoundError() *ForumError {
	return &ForumError{Code: ErrCodeCategoryNotFound, Message: "Category not found", Err: ErrCategoryNotFound}
}

func NewThreadNotFoundError() *ForumError {
	return &ForumError{Code: ErrCodeThreadNotFound, Message: "Thread not found", Err: ErrThreadNotFound}
}

func NewMessageNotFoundError() *ForumError {
	return &ForumError{Code: ErrCodeMessageNotFound, Message: "Message not found", Err: ErrMessageNotFound}
}

func NewForbiddenError(msg string) *ForumError {
	return &ForumError{Code: ErrCodeForbidden, Message: msg, Err: ErrForbidden}
}

func NewThreadLockedError() *ForumError {
	return &ForumError{Code: ErrCodeThreadLocked, Message: "Thread is locked", Err: ErrThreadLocked}
}

func NewInvalidVoteError() *ForumError {
	return &ForumError{Code: ErrCodeInvalidVote, Message: "Vote value must be 1 or -1", Err: ErrInvalidVote}
}

func NewCategoryExistsError(slug string) *ForumError {
	return &ForumError{Code: ErrCodeCategoryExists, Message: "Category slug '" + slug + "' already exists", Err: ErrCategoryExists}
}

func NewInvalidParentError() *ForumError {
	return &ForumError{Code: ErrCodeInvalidParent, Message: "Parent message not found in this thread", Err: ErrInvalidParent}
}

func NewInvalidUploadError(err error) *ForumError {
	return &ForumError{Code: ErrCodeInvalidUpload, Message: "Invalid attachment: " + err.Error(), Err: ErrInvalidUpload}
}
