package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1.000"},
		{10.45, "10.450"},
		{0.001, "0.001"},
		{0.000999, "9.990e-04"},
		{9999.9, "9999.900"},
		{10000, "1.000e+04"},
		{-2.5, "-2.500"},
		{-123456, "-1.235e+05"},
		{9.62e-4, "9.620e-04"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Num(tt.in), "Num(%v)", tt.in)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "4180", Digits(4180, 0))
	assert.Equal(t, "1.5", Digits(1.5, 1))
	assert.Equal(t, "0", Digits(0, 5))
}

func TestOpt(t *testing.T) {
	v := 3.0
	assert.Equal(t, "-", Opt(nil))
	assert.Equal(t, "3.000", Opt(&v))
}
