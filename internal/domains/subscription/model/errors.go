package model

import (
	"errors"
	"fmt"
)

const (
	ErrCodeSubscriptionNotFound = "SUB001"
	ErrCodeSelfSubscription     = "SUB002"
	ErrCodeNotAccepting         = "SUB003"
	ErrCodeNotAuthor            = "SUB004"
	ErrCodeAuthorNotFound       = "SUB005"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSelfSubscription     = errors.New("cannot subscribe to yourself")
	ErrNotAccepting         = errors.New("author does not accept subscriptions")
	ErrNotAuthor            = errors.New("only authors can configure a subscription tier")
	ErrAuthorNotFound       = errors.New("author not found")
)

type SubscriptionError struct {
	Code    string
	Message string
	Err     error
}

func (e *SubscriptionError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

func NewSubscriptionNotFoundError() *SubscriptionError {
	return &SubscriptionError{Code: ErrCodeSubscriptionNotFound, Message: "Subscription not found", Err: ErrSubscriptionNotFound}
}

func NewSelfSubscriptionError() *SubscriptionError {
	return &SubscriptionError{Code: ErrCodeSelfSubscription, Message: "You cannot subscribe to yourself", Err: ErrSelfSubscription}
}

func NewNotAcceptingError() *SubscriptionError {
	return &SubscriptionError{Code: ErrCodeNotAccepting, Message: "This author does not offer subscriptions", Err: ErrNotAccepting}
}

func NewNotAuthorError() *SubscriptionError {
	return &SubscriptionError{Code: ErrCodeNotAuthor, Message: "Only authors can set a subscription tier", Err: ErrNotAuthor}
}

func NewAuthorNotFoundError() *SubscriptionError {
	return &SubscriptionError{Code: ErrCodeAuthorNotFound, Message: "Author not found", Err: ErrAuthorNotFound}
}
