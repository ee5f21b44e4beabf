package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeUserNotFound       = "USR001"
	ErrCodeEmailExists        = "USR002"
	ErrCodeUsernameExists     = "USR003"
	ErrCodeInvalidCredentials = "USR004"
	ErrCodeUserInactive       = "USR005"
	ErrCodeInvalidToken       = "USR006"
	ErrCodeKofiTaken          = "USR007"
	ErrCodeInvalidRole        = "USR008"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameExists     = errors.New("username already exists")
	ErrKofiUsernameTaken  = errors.New("ko-fi username already linked to another account")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidRole        = errors.New("invalid user role")
)

// UserError custom error type
type UserError struct {
	Code    string
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func NewUserNotFoundError() *UserError {
	return &UserError{Code: ErrCodeUserNotFound, Message: "User not found", Err: ErrUserNotFound}
}

func NewEmailExistsError() *UserError {
	return &UserError{Code: ErrCodeEmailExists, Message: "Email is already registered", Err: ErrEmailExists}
}

func NewUsernameExistsError() *UserError {
	return &UserError{Code: ErrCodeUsernameExists, Message: "Username is already taken", Err: ErrUsernameExists}
}

func NewKofiTakenError() *UserError {
	return &UserError{Code: ErrCodeKofiTaken, Message: "Ko-fi username is already linked to another account", Err: ErrKofiUsernameTaken}
}

func NewInvalidCredentialsError() *UserError {
	return &UserError{Code: ErrCodeInvalidCredentials, Message: "Invalid email or password", Err: ErrInvalidCredentials}
}

func NewUserInactiveError() *UserError {
	return &UserError{Code: ErrCodeUserInactive, Message: "Account is disabled", Err: ErrUserInactive}
}

func NewInvalidTokenError(err error) *UserError {
	return &UserError{Code: ErrCodeInvalidToken, Message: "Invalid or expired token", Err: err}
}

// FromRepoError chuyển sentinel error của repository sang UserError
func FromRepoError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewUserNotFoundError()
	case errors.Is(err, ErrEmailExists):
		return NewEmailExistsError()
	case errors.Is(err, ErrUsernameExists):
		return NewUsernameExistsError()
	case errors.Is(err, ErrKofiUsernameTaken):
		return NewKofiTakenError()
	}
	return err
}
