// Package numparse converts hand-entered readings into floats.
//
// Parse never fails: blank or unrecognised text becomes 0. ParseStrict exposes
// the same conversion but reports whether the text was understood, so callers
// can warn about entries that were silently zeroed.
package numparse

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	barePowerRe   = regexp.MustCompile(`^10\^?([+-]?\d+)$`)
	scaledPowerRe = regexp.MustCompile(`^([+-]?\d*\.?\d+)(?:x|\*)10\^?([+-]?\d+)$`)

	notation = strings.NewReplacer(
		"**", "^",
		"×", "x",
		"·", "*",
		"−", "-",
		"–", "-",
	)
)

// Parse returns the float value of v, or 0 when v is nil, blank or unparsable.
func Parse(v any) float64 {
	f, _ := ParseStrict(v)
	return f
}

// ParseStrict returns the float value of v and false when v held text that
// could not be interpreted. Nil and blank input are 0 and ok.
func ParseStrict(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		return ParseString(t.String())
	case string:
		return ParseString(t)
	default:
		return 0, false
	}
}

// ParseString parses decimal, exponent and "C x 10^N" shorthand text.
func ParseString(s string) (float64, bool) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, true
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return finite(f)
	}

	compact := strings.Join(strings.Fields(strings.ToLower(text)), "")
	compact = notation.Replace(compact)

	if m := barePowerRe.FindStringSubmatch(compact); m != nil {
		exp, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return finite(math.Pow10(exp))
	}
	if m := scaledPowerRe.FindStringSubmatch(compact); m != nil {
		coef, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		exp, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, false
		}
		return finite(coef * math.Pow10(exp))
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
