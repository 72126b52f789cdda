package domain

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotNumeric is returned when nothing numeric is left after cleanup.
var ErrNotNumeric = errors.New("value is not numeric")

// CoerceNumeric converts a raw property to a float. JSON numbers pass through
// unchanged; strings lose whitespace, letters, curly quotes and "?", and a
// decimal comma becomes a dot. A number literal outside the float64 range
// fails rather than going through the text cleanup.
func CoerceNumeric(v RawValue) (float64, error) {
	if v.IsNumber() {
		f, ok := v.Number()
		if !ok {
			return 0, fmt.Errorf("%s: %w", bytes.TrimSpace(v), ErrNotNumeric)
		}
		return f, nil
	}
	return CoerceNumericString(v.Text())
}

// CoerceNumericString is CoerceNumeric for values that are already text.
func CoerceNumericString(s string) (float64, error) {
	cleaned := whitespaceRe.ReplaceAllString(s, "")
	cleaned = letterRe.ReplaceAllString(cleaned, "")
	cleaned = extraQuotesRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return 0, fmt.Errorf("%q: %w", s, ErrNotNumeric)
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrNotNumeric)
	}
	return f, nil
}

// numericOrNil applies CoerceNumeric and maps a failure to nil.
func numericOrNil(v RawValue) *float64 {
	f, err := CoerceNumeric(v)
	if err != nil {
		return nil
	}
	return &f
}

// Homoglyph translation runs before boolean parsing, so the literals are
// compared in their translated form as well.
var (
	trueLiteral  = TranslateHomoglyphs("true")
	falseLiteral = TranslateHomoglyphs("false")
)

// ParseBoolean recognizes "true" and "false" in any case. ok is false for
// anything else, including empty input.
func ParseBoolean(s string) (value, ok bool) {
	v := TranslateHomoglyphs(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case trueLiteral:
		return true, true
	case falseLiteral:
		return false, true
	default:
		return false, false
	}
}

// CoerceBoolean is ParseBoolean with unrecognized values read as false.
func CoerceBoolean(s string) bool {
	v, _ := ParseBoolean(s)
	return v
}
