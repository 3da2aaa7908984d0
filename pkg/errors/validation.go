package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateCount checks that a point or bead count is non-negative.
func ValidateCount(name string, n int) error {
	if n < 0 {
		return New(ErrCodeInvalidParameter, "%s must be non-negative, got %d", name, n)
	}
	return nil
}

// ValidateIntRange checks a half-open integer range [lo, hi).
// lo == hi is accepted and means "always lo".
func ValidateIntRange(name string, lo, hi int) error {
	if lo > hi {
		return New(ErrCodeInvalidParameter, "%s range is inverted: [%d, %d)", name, lo, hi)
	}
	return nil
}

// ValidatePositive checks that v is a finite number strictly greater than zero.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidParameter, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateNonNegative checks that v is a finite number greater than or equal to zero.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidParameter, "%s must be non-negative, got %g", name, v)
	}
	return nil
}

// ValidateProbability checks that p lies in [0, 1].
func ValidateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return New(ErrCodeInvalidParameter, "%s must be in [0, 1], got %g", name, p)
	}
	return nil
}

// ValidateDimensions checks that a canvas has a positive width and height.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidParameter, "canvas dimensions must be positive, got %dx%d", width, height)
	}
	return nil
}

// ValidatePercentiles checks a low/high percentile pair.
// Both must lie in [0, 100] and low must not exceed high.
func ValidatePercentiles(low, high float64) error {
	if math.IsNaN(low) || math.IsNaN(high) || low < 0 || high > 100 || low > 100 || high < 0 {
		return New(ErrCodeInvalidParameter, "percentiles must be in [0, 100], got (%g, %g)", low, high)
	}
	if low > high {
		return New(ErrCodeInvalidParameter, "low percentile %g exceeds high percentile %g", low, high)
	}
	return nil
}

// ValidateKernelSize checks that a kernel patch has an odd, positive side length.
func ValidateKernelSize(size int) error {
	if size <= 0 {
		return New(ErrCodeDegenerateKernel, "kernel size must be positive, got %d", size)
	}
	if size%2 == 0 {
		return New(ErrCodeDegenerateKernel, "kernel size must be odd, got %d", size)
	}
	return nil
}

// ValidateOutputPath validates a user-supplied output base path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
