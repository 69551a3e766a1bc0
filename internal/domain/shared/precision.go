package shared

import "github.com/shopspring/decimal"

// DefaultRounding is the unit rounding used when a unit of measure carries none
var DefaultRounding = decimal.NewFromFloat(0.01)

// RoundTo rounds v half away from zero to the nearest multiple of rounding.
// A non-positive rounding leaves v untouched.
func RoundTo(v, rounding decimal.Decimal) decimal.Decimal {
	if !rounding.IsPositive() {
		return v
	}
	return v.Div(rounding).Round(0).Mul(rounding)
}

// IsZeroRounded reports whether v is zero once rounded to the given precision
func IsZeroRounded(v, rounding decimal.Decimal) bool {
	return RoundTo(v, rounding).IsZero()
}

// CompareRounded compares a and b after rounding both to the given precision.
// It returns -1, 0 or 1.
func CompareRounded(a, b, rounding decimal.Decimal) int {
	delta := RoundTo(a, rounding).Sub(RoundTo(b, rounding))
	if IsZeroRounded(delta, rounding) {
		return 0
	}
	return delta.Sign()
}
