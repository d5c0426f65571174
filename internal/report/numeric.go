// Package report reads and writes the canonical table files: baseline,
// constraint, and performance CSVs, allocation outputs, and JSON summaries.
// It also provides the value coercion used for user-edited spreadsheet cells.
package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// nonNumericTokens are cell values treated as "absent" rather than zero.
var nonNumericTokens = map[string]bool{
	"":        true,
	"nan":     true,
	"none":    true,
	"#div/0!": true,
	"-":       true,
	"n/a":     true,
}

var numericCleanup = regexp.MustCompile(`[^0-9.\-]`)

// ParseFloat coerces a spreadsheet cell into a float. It tolerates currency
// symbols, thousands separators, percent signs, and accounting-style
// parenthesized negatives. Blank and not-a-number tokens report ok = false.
// Percent values with magnitude above 1 are scaled to fractions.
func ParseFloat(value string) (float64, bool) {
	text := strings.TrimSpace(value)
	if nonNumericTokens[strings.ToLower(text)] {
		return 0, false
	}

	negative := strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")")
	hadPercent := strings.Contains(text, "%")

	cleaned := numericCleanup.ReplaceAllString(text, "")
	switch cleaned {
	case "", "-", ".", "-.":
		return 0, false
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		parsed = -parsed
	}
	if hadPercent && math.Abs(parsed) > 1 {
		parsed /= 100
	}

	return parsed, true
}

// ParseOptionalFloat is ParseFloat returning a pointer, nil when absent.
func ParseOptionalFloat(value string) *float64 {
	if v, ok := ParseFloat(value); ok {
		return &v
	}
	return nil
}

// ParseBool coerces a spreadsheet cell into a boolean. Recognized truthy
// tokens: 1, true, t, yes, y (case-insensitive). Everything else is false.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}

// FormatFloat renders a float for CSV output without trailing zero noise.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOptionalFloat renders an optional float, empty when absent.
func FormatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}
