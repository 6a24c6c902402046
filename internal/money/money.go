// Package money converts between decimal amounts and int64 minor units.
// Amounts are kept in cents everywhere else so that sums never pass through
// floating point.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FractionDigits is the number of minor-unit digits for every supported currency.
const FractionDigits = 2

// MaxCents bounds a single price so that price times any allowed line
// quantity stays well inside int64.
const MaxCents int64 = 100_000_000_000

var (
	ErrNegative = errors.New("amount must not be negative")
	ErrTooLarge = errors.New("amount too large")
)

var maxAmount = decimal.NewFromInt(MaxCents)

// Parse reads a decimal string such as "19.99" into cents. Extra fraction
// digits are rounded half away from zero.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return fromDecimal(d)
}

// Format renders cents with two fraction digits, e.g. 5997 -> "59.97".
func Format(cents int64) string {
	return decimal.New(cents, -FractionDigits).StringFixed(FractionDigits)
}

func fromDecimal(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, ErrNegative
	}
	cents := d.Shift(FractionDigits).Round(0)
	if cents.GreaterThan(maxAmount) {
		return 0, ErrTooLarge
	}
	return cents.IntPart(), nil
}
