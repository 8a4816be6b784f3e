// Package pricescalar provides an exact, checked fixed-point decimal type
// for prices, quantities, rates, and margins throughout the matching and
// derivatives core.
package pricescalar

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrDivideByZero is returned by Div when the divisor is zero. Division by
// zero is a hard failure, never NaN or infinity.
var ErrDivideByZero = errors.New("pricescalar: division by zero")

// PriceScalar is an exact decimal value, backed by shopspring/decimal's
// arbitrary-precision representation. All arithmetic is exact for decimal
// fractions; Div is the only operation that can fail.
type PriceScalar struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = PriceScalar{d: decimal.Zero}

// One is the multiplicative identity.
var One = PriceScalar{d: decimal.NewFromInt(1)}

// FromInt builds an exact PriceScalar from an integer.
func FromInt(v int64) PriceScalar {
	return PriceScalar{d: decimal.NewFromInt(v)}
}

// FromFloat builds a PriceScalar from a float64. Use sparingly — prefer
// FromString or FromInt at trust boundaries where exactness matters.
func FromFloat(v float64) PriceScalar {
	return PriceScalar{d: decimal.NewFromFloat(v)}
}

// FromString parses an exact decimal literal such as "100.50".
func FromString(s string) (PriceScalar, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("pricescalar: parse %q: %w", s, err)
	}
	return PriceScalar{d: d}, nil
}

// Add returns a+b. Arbitrary-precision decimal arithmetic cannot overflow
// in this representation, so Add never fails; it returns an error to keep
// parity with the checked-arithmetic contract callers rely on elsewhere.
func (a PriceScalar) Add(b PriceScalar) (PriceScalar, error) {
	return PriceScalar{d: a.d.Add(b.d)}, nil
}

// Sub returns a-b.
func (a PriceScalar) Sub(b PriceScalar) (PriceScalar, error) {
	return PriceScalar{d: a.d.Sub(b.d)}, nil
}

// Mul returns a*b.
func (a PriceScalar) Mul(b PriceScalar) (PriceScalar, error) {
	return PriceScalar{d: a.d.Mul(b.d)}, nil
}

// Div returns a/b, failing with ErrDivideByZero when b is zero rather than
// producing NaN or infinity.
func (a PriceScalar) Div(b PriceScalar) (PriceScalar, error) {
	if b.IsZero() {
		return Zero, ErrDivideByZero
	}
	return PriceScalar{d: a.d.Div(b.d)}, nil
}

// MustAdd/MustSub/MustMul return the result of Add/Sub/Mul without the
// error value. Those operations never fail, so these never panic. There is
// no MustDiv; division always goes through the checked Div.
func (a PriceScalar) MustAdd(b PriceScalar) PriceScalar { return PriceScalar{d: a.d.Add(b.d)} }
func (a PriceScalar) MustSub(b PriceScalar) PriceScalar { return PriceScalar{d: a.d.Sub(b.d)} }
func (a PriceScalar) MustMul(b PriceScalar) PriceScalar { return PriceScalar{d: a.d.Mul(b.d)} }

// Neg returns -a.
func (a PriceScalar) Neg() PriceScalar { return PriceScalar{d: a.d.Neg()} }

// Abs returns |a|.
func (a PriceScalar) Abs() PriceScalar { return PriceScalar{d: a.d.Abs()} }

// Min returns the smaller of a and b.
func (a PriceScalar) Min(b PriceScalar) PriceScalar {
	if a.d.LessThan(b.d) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func (a PriceScalar) Max(b PriceScalar) PriceScalar {
	if a.d.GreaterThan(b.d) {
		return a
	}
	return b
}

// Clamp restricts a to [lo, hi].
func (a PriceScalar) Clamp(lo, hi PriceScalar) PriceScalar {
	return a.Max(lo).Min(hi)
}

// RoundTo rounds to n fractional digits using banker's rounding
// (half-to-even), applied consistently across the core wherever a rounded
// requirement is computed (e.g. PositionManager's margin check).
func (a PriceScalar) RoundTo(n int32) PriceScalar {
	return PriceScalar{d: a.d.RoundBank(n)}
}

// Cmp returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func (a PriceScalar) Cmp(b PriceScalar) int { return a.d.Cmp(b.d) }

func (a PriceScalar) LessThan(b PriceScalar) bool           { return a.d.LessThan(b.d) }
func (a PriceScalar) LessThanOrEqual(b PriceScalar) bool    { return a.d.LessThanOrEqual(b.d) }
func (a PriceScalar) GreaterThan(b PriceScalar) bool        { return a.d.GreaterThan(b.d) }
func (a PriceScalar) GreaterThanOrEqual(b PriceScalar) bool { return a.d.GreaterThanOrEqual(b.d) }
func (a PriceScalar) Equal(b PriceScalar) bool              { return a.d.Equal(b.d) }

// IsZero, IsPositive, and IsNegative classify a relative to Zero.
func (a PriceScalar) IsZero() bool     { return a.d.IsZero() }
func (a PriceScalar) IsPositive() bool { return a.d.IsPositive() }
func (a PriceScalar) IsNegative() bool { return a.d.IsNegative() }

// String renders the exact decimal value.
func (a PriceScalar) String() string { return a.d.String() }

// Float64 converts to a float64 for display/telemetry only — never use the
// result for further exact arithmetic.
func (a PriceScalar) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// Uint64 truncates toward zero for wire/report encoding of already-rounded
// quantities; it does not round.
func (a PriceScalar) Uint64() uint64 {
	return uint64(a.d.IntPart())
}
