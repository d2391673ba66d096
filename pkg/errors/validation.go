package errors

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseThreshold parses a slider value such as "60" or "72.5".
//
// Thresholds are compared against access percentages, so any finite number
// is accepted; values outside [0, 100] simply pass or fail every region.
// NaN and infinities are rejected because they would make the filter
// meaningless.
func ParseThreshold(name, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, New(ErrCodeInvalidThreshold, "%s cannot be empty", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, New(ErrCodeInvalidThreshold, "%s must be numeric, got %q", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, New(ErrCodeInvalidThreshold, "%s must be finite, got %q", name, raw)
	}
	return v, nil
}

// ValidatePath validates a local file path given on the command line or in
// a config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > 1024 {
		return New(ErrCodeInvalidPath, "path too long (max 1024 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	return nil
}
