package model

import "errors"

const (
	ErrCodeCommentNotFound = "CMT001"
	ErrCodeChapterNotFound = "CMT002"
	ErrCodeForbidden       = "CMT003"
	ErrCodeInvalidParent   = "CMT004"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrForbidden       = errors.New("not the comment owner")
	ErrInvalidParent   = errors.New("parent comment belongs to another chapter")
)

type CommentError struct {
	Code    string
	Message string
	Err     error
}

func (e *CommentError) Error() string { return e.Message }

func (e *CommentError) Unwrap() error { return e.Err }

func NewCommentNotFoundError() *CommentError {
	return &CommentError{Code: ErrCodeCommentNotFound, Message: "Comment not found", Err: ErrCommentNotFound}
}

func NewChapterNotFoundError() *CommentError {
	return &CommentError{Code: ErrCodeChapterNotFound, Message: "Chapter not found", Err: ErrChapterNotFound}
}

func NewForbiddenError() *CommentError {
	return &CommentError{Code: ErrCodeForbidden, Message: "You can only modify your own comments", Err: ErrForbidden}
}

func NewInvalidParentError() *CommentError {
	return &CommentError{Code: ErrCodeInvalidParent, Message: "Parent comment not found in this chapter", Err: ErrInvalidParent}
}
