package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeProfileNotFound   = "COIN001"
	ErrCodeInsufficientCoins = "COIN002"
	ErrCodeAlreadyPurchased  = "COIN003"
	ErrCodeFreeChapter       = "COIN004"
	ErrCodeSelfDonation      = "COIN005"
	ErrCodeInvalidAmount     = "COIN006"
	ErrCodeChapterNotFound   = "COIN007"
	ErrCodeOwnChapter        = "COIN008"
)

var (
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrBalanceOverflow   = errors.New("coin balance overflow")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrAlreadyPurchased  = errors.New("chapter already purchased")
	ErrFreeChapter       = errors.New("chapter is free")
	ErrSelfDonation      = errors.New("cannot donate to yourself")
	ErrInvalidAmount     = errors.New("invalid coin amount")
	ErrChapterNotFound   = errors.New("chapter not found")
	ErrOwnChapter        = errors.New("authors already have access to their chapters")
)

// CoinError custom error type
type CoinError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoinError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CoinError) Unwrap() error {
	return e.Err
}

func NewInsufficientCoinsError(balance, required int64) *CoinError {
	return &CoinError{
		Code:    ErrCodeInsufficientCoins,
		Message: fmt.Sprintf("Insufficient coins: balance %d, required %d", balance, required),
		Err:     ErrInsufficientCoins,
	}
}

func NewProfileNotFoundError() *CoinError {
	return &CoinError{Code: ErrCodeProfileNotFound, Message: "Profile not found", Err: ErrProfileNotFound}
}

func NewAlreadyPurchasedError() *CoinError {
	return &CoinError{Code: ErrCodeAlreadyPurchased, Message: "Chapter already unlocked", Err: ErrAlreadyPurchased}
}

func NewFreeChapterError() *CoinError {
	return &CoinError{Code: ErrCodeFreeChapter, Message: "Chapter is free to read", Err: ErrFreeChapter}
}

func NewSelfDonationError() *CoinError {
	return &CoinError{Code: ErrCodeSelfDonation, Message: "You cannot donate to yourself", Err: ErrSelfDonation}
}

func NewInvalidAmountError(msg string) *CoinError {
	return &CoinError{Code: ErrCodeInvalidAmount, Message: msg, Err: ErrInvalidAmount}
}

func NewChapterNotFoundError() *CoinError {
	return &CoinError{Code: ErrCodeChapterNotFound, Message: "Chapter not found", Err: ErrChapterNotFound}
}

func NewOwnChapterError() *CoinError {
	return &CoinError{Code: ErrCodeOwnChapter, Message: "You already have access to your own chapter", Err: ErrOwnChapter}
}
