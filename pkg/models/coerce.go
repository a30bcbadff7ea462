package models

import "strconv"

// NumericValue reports the float64 value of a decoded BSON scalar. Anything
// that is not a number (strings, bools, nil) is rejected rather than guessed.
func NumericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// CoerceNumber converts free-form input from the UI edge to a number,
// defaulting to 0 for anything malformed. Mirrors the `parseFloat(v) || 0`
// convention the delivery screens rely on.
func CoerceNumber(v interface{}) float64 {
	if n, ok := NumericValue(v); ok {
		return n
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
	}
	return 0
}
