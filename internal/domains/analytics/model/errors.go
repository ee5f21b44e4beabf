package model

import (
	"errors"
	"fmt"
)

const ErrCodeInvalidRange = "ANL001"

var ErrInvalidRange = errors.New("invalid date range")

type AnalyticsError struct {
	Code    string
	Message string
	Err     error
}

func (e *AnalyticsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AnalyticsError) Unwrap() error {
	return e.Err
}

func NewInvalidRangeError() *AnalyticsError {
	return &AnalyticsError{
		Code:    ErrCodeInvalidRange,
		Message: fmt.Sprintf("Invalid date range (max %d days)", MaxExportRangeDays),
		Err:     ErrInvalidRange,
	}
}

