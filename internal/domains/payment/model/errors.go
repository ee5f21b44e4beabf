package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeOrderNotFound      = "PAY001"
	ErrCodePackageNotFound    = "PAY002"
	ErrCodeAlreadyCaptured    = "PAY003"
	ErrCodeInvalidTransition  = "PAY004"
	ErrCodeNotApproved        = "PAY005"
	ErrCodeInvalidToken       = "PAY006"
	ErrCodeInvalidPayload     = "PAY007"
	ErrCodeGateway            = "PAY008"
	ErrCodeAmountMismatch     = "PAY009"
	ErrCodeProfileNotFound    = "PAY010"
	ErrCodeProviderNotAllowed = "PAY011"
)

var (
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrPackageNotFound    = errors.New("coin package not found")
	ErrAlreadyCaptured    = errors.New("payment order already captured")
	ErrInvalidTransition  = errors.New("invalid payment order transition")
	ErrNotApproved        = errors.New("payment not approved by payer")
	ErrInvalidToken       = errors.New("invalid webhook verification token")
	ErrInvalidPayload     = errors.New("invalid webhook payload")
	ErrGateway            = errors.New("payment gateway error")
	ErrAmountMismatch     = errors.New("captured amount does not match order")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrDuplicateOrder     = errors.New("payment order already recorded")
	ErrProviderNotAllowed = errors.New("operation not supported for provider")
)

// PaymentError custom error type
type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewOrderNotFoundError() *PaymentError {
	return &PaymentError{Code: ErrCodeOrderNotFound, Message: "Payment order not found", Err: ErrOrderNotFound}
}

func NewPackageNotFoundError(id string) *PaymentError {
	return &PaymentError{Code: ErrCodePackageNotFound, Message: fmt.Sprintf("Coin package %q not found", id), Err: ErrPackageNotFound}
}

func NewAlreadyCapturedError() *PaymentError {
	return &PaymentError{Code: ErrCodeAlreadyCaptured, Message: "Payment order already captured", Err: ErrAlreadyCaptured}
}

func NewInvalidTransitionError(status Status, event string) *PaymentError {
	return &PaymentError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("Cannot %s an order in status %s", event, status),
		Err:     ErrInvalidTransition,
	}
}

func NewNotApprovedError() *PaymentError {
	return &PaymentError{Code: ErrCodeNotApproved, Message: "Payment has not been approved yet", Err: ErrNotApproved}
}

func NewInvalidTokenError() *PaymentError {
	return &PaymentError{Code: ErrCodeInvalidToken, Message: "Invalid verification token", Err: ErrInvalidToken}
}

func NewInvalidPayloadError(err error) *PaymentError {
	return &PaymentError{Code: ErrCodeInvalidPayload, Message: "Invalid webhook payload", Err: fmt.Errorf("%w: %v", ErrInvalidPayload, err)}
}

func NewGatewayError(err error) *PaymentError {
	return &PaymentError{Code: ErrCodeGateway, Message: "Payment provider unavailable", Err: fmt.Errorf("%w: %v", ErrGateway, err)}
}

func NewAmountMismatchError() *PaymentError {
	return &PaymentError{Code: ErrCodeAmountMismatch, Message: "Captured amount does not match the order", Err: ErrAmountMismatch}
}

func NewProfileNotFoundError() *PaymentError {
	return &PaymentError{Code: ErrCodeProfileNotFound, Message: "Profile not found", Err: ErrProfileNotFound}
}

func NewProviderNotAllowedError(p Provider) *PaymentError {
	return &PaymentError{
		Code:    ErrCodeProviderNotAllowed,
		Message: fmt.Sprintf("Operation not supported for %s orders", p),
		Err:     ErrProviderNotAllowed,
	}
}
