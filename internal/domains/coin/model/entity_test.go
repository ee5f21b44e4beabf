package model

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestApplyDelta_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("result is never negative", prop.ForAll(
		func(balance, delta int64) bool {
			next, err := ApplyDelta(balance, delta)
			if err != nil {
				return next == balance
			}
			return next >= 0
		},
		gen.Int64Range(0, 1_000_000_000),
		gen.Int64Range(-2_000_000_000, 2_000_000_000),
	))

	properties.Property("debit larger than balance fails with ErrInsufficientCoins", prop.ForAll(
		func(balance, extra int64) bool {
			_, err := ApplyDelta(balance, -(balance + extra))
			return errors.Is(err, ErrInsufficientCoins)
		},
		gen.Int64Range(0, 1_000_000_000),
		gen.Int64Range(1, 1_000_000),
	))

	properties.Property("credit then debit of same amount restores balance", prop.ForAll(
		func(balance, amount int64) bool {
			up, err := ApplyDelta(balance, amount)
			if err != nil {
				return false
			}
			down, err := ApplyDelta(up, -amount)
			return err == nil && down == balance
		},
		gen.Int64Range(0, 1_000_000_000),
		gen.Int64Range(1, 1_000_000_000),
	))

	properties.TestingRun(t)
}

func TestApplyDelta_Overflow(t *testing.T) {
	_, err := ApplyDelta(math.MaxInt64-1, 5)
	assert.ErrorIs(t, err, ErrBalanceOverflow)

	next, err := ApplyDelta(10, -10)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), next)
}

func TestAuthorShare(t *testing.T) {
	assert.Equal(t, int64(10), AuthorShare(10, 100))
	assert.Equal(t, int64(7), AuthorShare(10, 70))
	assert.Equal(t, int64(3), AuthorShare(5, 70)) // làm tròn xuống
	assert.Equal(t, int64(0), AuthorShare(10, 0))

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)
	properties.Property("share never exceeds price", prop.ForAll(
		func(coins int64, percent int) bool {
			s := AuthorShare(coins, percent)
			return s >= 0 && s <= coins
		},
		gen.Int64Range(0, 1_000_000),
		gen.IntRange(-10, 150),
	))
	properties.TestingRun(t)
}
