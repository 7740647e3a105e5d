/*
Package money provides fixed-point currency arithmetic.

PURPOSE:
  All monetary values in the system flow through this package. Amounts are
  decimal values with a fixed number of fractional digits (2, matching
  currency minor units). Native binary floats produce 0.1+0.2 != 0.3 class
  errors, which corrupt the paid-vs-partially comparison in the payment
  status policy - that comparison is an exact equality test.

ROUNDING:
  Half-up to Scale digits, applied to the result of every operation.
  This is specified once here and applied everywhere; no operation
  silently truncates. Equal compares rounded values, never raw floats.

USAGE:
  total := money.MustParse("100.00")
  credit := money.MustParse("40")
  remaining := total.Sub(credit)        // 60.00
  remaining.Equal(money.New(60))        // true

SEE ALSO:
  - ledger/totals.go: folds line items with Add/Mul
  - ledger/status.go: exact-equality status derivation
*/
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept by every operation.
// 2 matches currency minor units (cents).
const Scale int32 = 2

// =============================================================================
// AMOUNT - Decimal monetary value, always rounded to Scale
// =============================================================================

type Amount struct {
	Value decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{Value: decimal.Zero}

// New creates an amount from whole currency units.
func New(units int64) Amount {
	return Amount{Value: decimal.NewFromInt(units)}
}

// FromFloat creates an amount from a float, rounded half-up to Scale.
// Prefer FromString for values originating outside the process.
func FromFloat(v float64) Amount {
	return Amount{Value: decimal.NewFromFloat(v).Round(Scale)}
}

// FromString parses a decimal string ("99.95"). The result is rounded
// half-up to Scale.
func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Amount{Value: d.Round(Scale)}, nil
}

// MustParse is FromString for literals in tests and fixtures. Panics on
// malformed input.
func MustParse(s string) Amount {
	a, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// =============================================================================
// ARITHMETIC - every result rounded half-up to Scale
// =============================================================================

func (a Amount) Add(b Amount) Amount { return Amount{Value: a.Value.Add(b.Value).Round(Scale)} }
func (a Amount) Sub(b Amount) Amount { return Amount{Value: a.Value.Sub(b.Value).Round(Scale)} }
func (a Amount) Mul(b Amount) Amount { return Amount{Value: a.Value.Mul(b.Value).Round(Scale)} }
func (a Amount) Neg() Amount         { return Amount{Value: a.Value.Neg()} }

// Div divides by a plain decimal factor (tax rate / 100 etc).
func (a Amount) Div(d decimal.Decimal) Amount {
	return Amount{Value: a.Value.DivRound(d, Scale)}
}

// =============================================================================
// COMPARISON - on rounded values
// =============================================================================

func (a Amount) Equal(b Amount) bool       { return a.Value.Round(Scale).Equal(b.Value.Round(Scale)) }
func (a Amount) Cmp(b Amount) int          { return a.Value.Round(Scale).Cmp(b.Value.Round(Scale)) }
func (a Amount) GreaterThan(b Amount) bool { return a.Cmp(b) > 0 }
func (a Amount) LessThan(b Amount) bool    { return a.Cmp(b) < 0 }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }

// String renders with exactly Scale fractional digits ("40.00").
func (a Amount) String() string {
	return a.Value.StringFixed(Scale)
}
