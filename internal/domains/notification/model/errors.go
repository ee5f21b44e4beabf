package model

import (
	"errors"
	"fmt"
)

const (
	ErrCodeNotificationNotFound = "NTF001"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationError custom error type
type NotificationError struct {
	Code    string
	Message string
	Err     error
}

func (e *NotificationError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

func NewNotificationNotFoundError() *NotificationError {
	return &NotificationError{Code: ErrCodeNotificationNotFound, Message: "Notification not found", Err: ErrNotificationNotFound}
}
