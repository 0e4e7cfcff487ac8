package journey

import "strings"

// NonEmpty reports whether s has non-whitespace content.
func NonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// AnyNonEmpty reports whether at least one of values is non-empty.
func AnyNonEmpty(values ...string) bool {
	for _, v := range values {
		if NonEmpty(v) {
			return true
		}
	}
	return false
}

// AllNonEmpty reports whether every value is non-empty.
func AllNonEmpty(values ...string) bool {
	for _, v := range values {
		if !NonEmpty(v) {
			return false
		}
	}
	return len(values) > 0
}

// MinItems reports whether items holds at least n entries.
func MinItems[T any](items []T, n int) bool {
	return len(items) >= n
}

// CountNonEmpty counts the non-blank strings in items.
func CountNonEmpty(items []string) int {
	n := 0
	for _, item := range items {
		if NonEmpty(item) {
			n++
		}
	}
	return n
}

// FieldFraction returns the share of satisfied checks as a 0..100 percentage.
func FieldFraction(checks ...bool) float64 {
	if len(checks) == 0 {
		return 0
	}
	n := 0
	for _, ok := range checks {
		if ok {
			n++
		}
	}
	return 100 * float64(n) / float64(len(checks))
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
