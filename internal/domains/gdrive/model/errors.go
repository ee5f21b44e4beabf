package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotConnected  = "GDR001"
	ErrCodeInvalidState  = "GDR002"
	ErrCodeJobNotFound   = "GDR003"
	ErrCodeNovelNotFound = "GDR004"
	ErrCodeForbidden     = "GDR005"
	ErrCodeExchange      = "GDR006"
	ErrCodeDrive         = "GDR007"
)

var (
	ErrNotConnected  = errors.New("google drive not connected")
	ErrInvalidState  = errors.New("invalid oauth state")
	ErrJobNotFound   = errors.New("import job not found")
	ErrNovelNotFound = errors.New("novel not found")
	ErrForbidden     = errors.New("not allowed to import into this novel")
	ErrExchange      = errors.New("oauth code exchange failed")
	ErrDrive         = errors.New("google drive request failed")
)

// DriveError custom error type
type DriveError struct {
	Code    string
	Message string
	Err     error
}

func (e *DriveError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DriveError) Unwrap() error {
	return e.Err
}

func NewNotConnectedError() *DriveError {
	return &DriveError{Code: ErrCodeNotConnected, Message: "Google Drive is not connected", Err: ErrNotConnected}
}

func NewInvalidStateError() *DriveError {
	return &DriveError{Code: ErrCodeInvalidState, Message: "Invalid or expired OAuth state", Err: ErrInvalidState}
}

func NewJobNotFoundError() *DriveError {
	return &DriveError{Code: ErrCodeJobNotFound, Message: "Import job not found", Err: ErrJobNotFound}
}

func NewNovelNotFoundError() *DriveError {
	return &DriveError{Code: ErrCodeNovelNotFound, Message: "Novel not found", Err: ErrNovelNotFound}
}

func NewForbiddenError() *DriveError {
	return &DriveError{Code: ErrCodeForbidden, Message: "Only the novel's author can import chapters", Err: ErrForbidden}
}

func NewExchangeError(err error) *DriveError {
	return &DriveError{Code: ErrCodeExchange, Message: "Could not connect Google Drive", Err: fmt.Errorf("%w: %v", ErrExchange, err)}
}

func NewDriveError(err error) *DriveError {
	return &DriveError{Code: ErrCodeDrive, Message: "Google Drive request failed", Err: fmt.Errorf("%w: %v", ErrDrive, err)}
}
