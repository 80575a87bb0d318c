// Package numfmt renders numbers for derivation steps and warnings.
//
// Magnitudes in [1e-3, 1e4) print fixed-point, anything else in exponent
// form, and an exact zero prints as "0".
package numfmt

import (
	"math"
	"strconv"
)

const DefaultDigits = 3

// Num formats v with three decimals.
func Num(v float64) string {
	return Digits(v, DefaultDigits)
}

// Digits formats v with the given number of decimals.
func Digits(v float64, digits int) string {
	if v == 0 {
		return "0"
	}
	if digits < 0 {
		digits = 0
	}
	a := math.Abs(v)
	if a < 1e-3 || a >= 1e4 {
		return strconv.FormatFloat(v, 'e', digits, 64)
	}
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// Opt formats an optional value, rendering a missing one as "-".
func Opt(v *float64) string {
	if v == nil {
		return "-"
	}
	return Num(*v)
}
