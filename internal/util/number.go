package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reThousandsDot   = regexp.MustCompile(`^[-+]?\d{1,3}(?:\.\d{3})+$`)
	reThousandsComma = regexp.MustCompile(`^[-+]?\d{1,3}(?:,\d{3})+$`)
)

// ParseNumber accepts only plain numeric literals, the way raw xlsx cell values
// are stored. "1,000" is text here.
func ParseNumber(input string) (float64, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseLooseNumber also accepts thousands separators and decimal commas, for
// sources (HTML exports) where every cell arrives as formatted text.
func ParseLooseNumber(input string) (float64, bool) {
	if v, ok := ParseNumber(input); ok {
		return v, true
	}
	norm := normalizeNumericToken(input)
	if norm == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(norm, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(strings.ReplaceAll(token, "\u00A0", ""), " ", "")
	if reThousandsDot.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if reThousandsComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Count(compact, ",") == 1 && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}

// FormatNumber renders a float the way it would be stored in a cell.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
