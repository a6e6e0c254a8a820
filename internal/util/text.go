package util

import (
	"strings"
	"unicode/utf8"
)

var keyStripper = strings.NewReplacer("\r", "", "\n", "")

// NormalizeCell trims surrounding whitespace, including the non-breaking
// spaces spreadsheets like to leave behind.
func NormalizeCell(input string) string {
	return strings.TrimSpace(strings.ReplaceAll(input, "\u00A0", " "))
}

// NormalizeKey is NormalizeCell plus removal of embedded line breaks, so
// "AB\n12" and "AB12" index to the same identifier.
func NormalizeKey(input string) string {
	return NormalizeCell(keyStripper.Replace(input))
}

// IsBlank reports whether a normalized cell carries no value. Sheets that went
// through other tooling spell missing values as "nan".
func IsBlank(input string) bool {
	s := NormalizeCell(input)
	return s == "" || strings.EqualFold(s, "nan")
}

func Truncate(input string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxRunes {
		return input
	}
	r := []rune(input)
	return string(r[:maxRunes])
}
