package errors

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest participant name accepted, in runes.
const MaxNameLength = 64

// ValidateParticipantName validates one participant name.
//
// The rules are:
//   - No empty or whitespace-only names
//   - No control characters (they break label measurement and SVG output)
//   - Maximum length of MaxNameLength runes
func ValidateParticipantName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "participant name cannot be empty")
	}

	if !utf8.ValidString(name) {
		return New(ErrCodeInvalidInput, "participant name is not valid UTF-8")
	}

	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return New(ErrCodeInvalidInput, "participant name too long (%d runes, max %d)", n, MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "participant name contains invalid control characters")
		}
	}

	return nil
}

// ValidateParticipants validates the participant list of one layout request.
// The count must lie in [minCount, maxCount]; an empty list is accepted when
// minCount is 0.
func ValidateParticipants(names []string, minCount, maxCount int) error {
	if len(names) < minCount || len(names) > maxCount {
		return New(ErrCodeInvalidInput, "need between %d and %d participants, got %d", minCount, maxCount, len(names))
	}
	for i, name := range names {
		if err := ValidateParticipantName(name); err != nil {
			return Wrap(ErrCodeInvalidInput, err, "participant %d", i+1)
		}
	}
	return nil
}

// ValidateViewport validates viewport dimensions in pixels.
func ValidateViewport(width, height, margin float64) error {
	for _, v := range []float64{width, height, margin} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidViewport, "viewport values must be finite")
		}
	}

	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidViewport, "viewport must have a positive size, got %gx%g", width, height)
	}

	if margin < 0 {
		return New(ErrCodeInvalidViewport, "margin cannot be negative")
	}

	if margin >= min(width, height)/2 {
		return New(ErrCodeInvalidViewport, "margin %g leaves no room for the seat circle in %gx%g", margin, width, height)
	}

	return nil
}

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string, supported []string) error {
	if !slices.Contains(supported, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (supported: %s)", format, strings.Join(supported, ", "))
	}
	return nil
}
