// Package money handles the ledger's unit amounts. Amounts are whole,
// non-negative base units that must fit a postgres bigint.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxUnits is the largest amount the store can persist.
const MaxUnits uint64 = math.MaxInt64

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount must be a whole number of units")
	ErrOverflow        = errors.New("amount overflow")
)

var (
	hundred  = decimal.NewFromInt(100)
	maxUnits = decimal.NewFromUint64(MaxUnits)
)

// ParseUnits parses a decimal string of base units. Empty input is zero.
func ParseUnits(input string) (uint64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, nil
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if value.IsNegative() {
		return 0, ErrInvalidAmount
	}
	if !value.Equal(value.Truncate(0)) {
		return 0, ErrTooManyDecimals
	}
	if value.GreaterThan(maxUnits) {
		return 0, ErrOverflow
	}
	return value.BigInt().Uint64(), nil
}

func FormatUnits(value uint64) string {
	return strconv.FormatUint(value, 10)
}

// Add returns a+b or ErrOverflow when the sum exceeds MaxUnits.
func Add(a, b uint64) (uint64, error) {
	if a > MaxUnits || b > MaxUnits-a {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Interest is floor(amount * rate / 100), saturating at MaxUnits.
func Interest(amount uint64, rate uint8) uint64 {
	interest := decimal.NewFromUint64(amount).
		Mul(decimal.NewFromInt(int64(rate))).
		Div(hundred).
		Truncate(0)
	if interest.GreaterThan(maxUnits) {
		return MaxUnits
	}
	return interest.BigInt().Uint64()
}

// RepaymentDue is the flat single-period amount a borrower owes.
func RepaymentDue(amount uint64, rate uint8) (uint64, error) {
	return Add(amount, Interest(amount, rate))
}
