// Package coerce converts loosely typed storage values (optional numerics kept
// as text) into strongly typed optionals at the persistence boundary, so the
// availability engine only ever sees *float64 / int fields.
package coerce

import (
	"math"
	"strconv"
	"strings"
)

// Float parses an optional numeric stored as text. Empty, unparsable and
// non-finite values are all treated as "unset" and yield nil.
func Float(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Minutes parses an optional whole-minute count stored as text; fractional
// values are truncated. Returns nil for unset/invalid input.
func Minutes(raw string) *int {
	f := Float(raw)
	if f == nil {
		return nil
	}
	m := int(*f)
	return &m
}

// FirstFloat returns the first non-nil value in the precedence chain
// (driver profile, then school setting), or nil meaning unlimited/unset.
func FirstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// FirstMinutes is FirstFloat for minute counts with a final integer fallback.
func FirstMinutes(fallback int, values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return fallback
}
