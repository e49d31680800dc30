// Package validation provides field checks for world definition records.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits for definition records
const (
	MaxTagLen  = 64
	MaxNameLen = 64
)

// Tags are debug identifiers: no spaces, no punctuation beyond - _ . :
var validTagChars = regexp.MustCompile(`^[a-zA-Z0-9_\-.:]+$`)

// ValidateTag checks a unique entity tag.
func ValidateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	if len(tag) > MaxTagLen {
		return fmt.Errorf("tag too long: %d characters (max %d)", len(tag), MaxTagLen)
	}
	if !validTagChars.MatchString(tag) {
		return fmt.Errorf("tag %q contains invalid characters (only alphanumeric, hyphens, underscores, dots and colons allowed)", tag)
	}
	return nil
}

// ValidateName validates and trims a display name
func ValidateName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLen {
		return "", fmt.Errorf("name too long: %d characters (max %d)", len(name), MaxNameLen)
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("name cannot be only whitespace")
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("name contains control characters")
		}
	}
	return trimmed, nil
}

// ValidateCoordinates checks a 2D coordinate pair as found in definition
// records.
func ValidateCoordinates(coords []float64) error {
	if len(coords) != 2 {
		return fmt.Errorf("coordinates must have exactly 2 components, got %d", len(coords))
	}
	for i, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coordinate %d is not finite", i)
		}
	}
	return nil
}

// ValidatePositive checks that a numeric limit is finite and > 0.
func ValidatePositive(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return fmt.Errorf("%s must be a positive number, got %v", field, value)
	}
	return nil
}

// ValidateNonNegative checks that a numeric value is finite and >= 0.
func ValidateNonNegative(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%s must not be negative, got %v", field, value)
	}
	return nil
}
