package utils

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// DefaultUnit is used whenever a producer gave no usable unit.
const DefaultUnit = "serving"

// AbsenceMarker is the literal some upstream producers emit instead of a
// real unit. It must never survive into a normalized unit string.
const AbsenceMarker = "unknown"

var leadingNumber = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*(.*)$`)

var unitPlaceholders = map[string]bool{
	"":      true,
	"n/a":   true,
	"na":    true,
	"none":  true,
	"null":  true,
	"unit":  true,
	"units": true,
}

// NormalizeQuantity turns any quantity representation a producer may emit
// (number, numeric string, "1.5 cups", empty or placeholder text) into a
// positive amount and a usable unit. It never fails: anything unparsable
// becomes quantity 1 of the default unit.
func NormalizeQuantity(v interface{}) (float64, string) {
	switch q := v.(type) {
	case nil:
		return 1, DefaultUnit
	case float64:
		return positiveOrDefault(q), DefaultUnit
	case float32:
		return positiveOrDefault(float64(q)), DefaultUnit
	case int:
		return positiveOrDefault(float64(q)), DefaultUnit
	case int64:
		return positiveOrDefault(float64(q)), DefaultUnit
	case json.Number:
		f, err := q.Float64()
		if err != nil {
			return 1, DefaultUnit
		}
		return positiveOrDefault(f), DefaultUnit
	case string:
		return parseQuantityString(q)
	default:
		return 1, DefaultUnit
	}
}

func positiveOrDefault(f float64) float64 {
	if f > 0 {
		return f
	}
	return 1
}

func parseQuantityString(s string) (float64, string) {
	s = strings.TrimSpace(s)
	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		// No numeric token at all; the whole string may still be a unit.
		return 1, NormalizeUnit(s)
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 1, NormalizeUnit(s)
	}
	return positiveOrDefault(qty), NormalizeUnit(m[2])
}

// NormalizeUnit cleans a unit string: the absence marker is stripped even
// when embedded, and placeholders collapse to the default unit.
func NormalizeUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	if strings.Contains(u, AbsenceMarker) {
		u = strings.TrimSpace(strings.ReplaceAll(u, AbsenceMarker, ""))
	}
	u = strings.Trim(u, " -_")
	if unitPlaceholders[u] {
		return DefaultUnit
	}
	return u
}
