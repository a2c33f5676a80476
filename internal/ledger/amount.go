package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Token amounts are whole base units (yocto-style, up to u128). decimal keeps them
// exact, serializes them as JSON strings and maps onto NUMERIC columns.

var zero = decimal.Zero

// ParseAmount converts a human amount ("1.5") into base units for a token with
// the given number of decimals.
func ParseAmount(s string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return zero, fmt.Errorf("parse amount %q: %w", s, err)
	}

	d = d.Shift(decimals)
	if !d.IsInteger() || d.IsNegative() {
		return zero, ErrInvalidAmount.withDetail("got %s", s)
	}

	return d, nil
}

// validAmount reports whether d is a positive whole number of base units.
func validAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.IsInteger()
}

// fraction returns floor(d * num / den) for non-negative d.
func fraction(d decimal.Decimal, num, den int64) decimal.Decimal {
	q, _ := d.Mul(decimal.NewFromInt(num)).QuoRem(decimal.NewFromInt(den), 0)

	return q
}
