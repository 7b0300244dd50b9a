package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value expressed in the caller's currency unit.
type Amount = decimal.Decimal

var (
	// ErrInvalidAmount is returned when an amount is negative, zero where a positive value is required, or otherwise out of domain.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPercentage is returned when a percentage falls outside [0, 100].
	ErrInvalidPercentage = errors.New("invalid percentage")
)

var (
	// Zero is the zero amount.
	Zero = decimal.Zero
	// Hundred is the percentage denominator.
	Hundred = decimal.NewFromInt(100)
)

// Round2 rounds half-up to two decimal places. Engine values are
// non-negative, where decimal's half-away-from-zero equals half-up.
func Round2(v Amount) Amount {
	return v.Round(2)
}

// Percent returns round2(base * pct / 100).
func Percent(base Amount, pct decimal.Decimal) Amount {
	return Round2(base.Mul(pct).Div(Hundred))
}

// ValidatePercent reports ErrInvalidPercentage when pct is outside [0, 100].
func ValidatePercent(name string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(Hundred) {
		return fmt.Errorf("%s %s outside [0,100]: %w", name, pct.String(), ErrInvalidPercentage)
	}
	return nil
}

// ValidateNonNegative reports ErrInvalidAmount when v < 0.
func ValidateNonNegative(name string, v Amount) error {
	if v.IsNegative() {
		return fmt.Errorf("%s must not be negative: %w", name, ErrInvalidAmount)
	}
	return nil
}

// ValidatePositive reports ErrInvalidAmount when v <= 0.
func ValidatePositive(name string, v Amount) error {
	if !v.IsPositive() {
		return fmt.Errorf("%s must be greater than 0: %w", name, ErrInvalidAmount)
	}
	return nil
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smallest of the provided amounts.
func Min(first Amount, rest ...Amount) Amount {
	out := first
	for _, v := range rest {
		if v.LessThan(out) {
			out = v
		}
	}
	return out
}
