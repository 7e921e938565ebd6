// Package locale holds the number formatting used at the text edge of the
// application: German-style decimal notation with a dot as thousands
// separator and a comma as decimal separator.
package locale

import (
	"errors"
	"strconv"
	"strings"
)

var ErrUnparseableNumber = errors.New("locale: unparseable number")

// FormatNumber renders a value in German notation, e.g.
// FormatNumber(1234.5, 1) == "1.234,5".
func FormatNumber(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	raw := strconv.FormatFloat(value, 'f', decimals, 64)

	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	integer, fraction, hasFraction := strings.Cut(raw, ".")
	grouped := groupThousands(integer)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(grouped)
	if hasFraction {
		b.WriteByte(',')
		b.WriteString(fraction)
	}
	return b.String()
}

// ParseGermanNumber normalizes locale-formatted input like "1.234,56" to a
// machine float. When no comma is present, dots are treated as grouping
// separators only if every group after the first has exactly three digits;
// otherwise the dot is read as a decimal point ("1.5" stays 1.5).
func ParseGermanNumber(input string) (float64, error) {
	trimmed := strings.TrimSpace(input)
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	if trimmed == "" {
		return 0, ErrUnparseableNumber
	}

	normalized := trimmed
	switch {
	case strings.Contains(trimmed, ","):
		normalized = strings.ReplaceAll(trimmed, ".", "")
		normalized = strings.Replace(normalized, ",", ".", 1)
	case strings.Contains(trimmed, "."):
		if looksGrouped(trimmed) {
			normalized = strings.ReplaceAll(trimmed, ".", "")
		}
	}

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, ErrUnparseableNumber
	}
	return value, nil
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func looksGrouped(input string) bool {
	body := strings.TrimPrefix(input, "-")
	groups := strings.Split(body, ".")
	if len(groups) < 2 || groups[0] == "" || len(groups[0]) > 3 {
		return false
	}
	for _, group := range groups[1:] {
		if len(group) != 3 {
			return false
		}
		for _, r := range group {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
