package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// currencyNoiseRe matches currency symbols, ISO codes and grouping
// whitespace that may surround an extracted amount.
var currencyNoiseRe = regexp.MustCompile(`(?i)^[\s$€£¥₺₹]*(?:[A-Z]{3})?[\s]*|[\s$€£¥₺₹]*(?:[A-Z]{3})?[\s]*$`)

// Amount parses a loosely formatted monetary string into a decimal value.
// It strips currency symbols, ISO currency codes, thousands separators and
// whitespace, and accepts both 1,234.56 and 1.234,56 grouping conventions.
// ok=false signals an unparseable amount; callers must skip the field
// rather than applying a silently coerced zero.
func Amount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = currencyNoiseRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "'", "")
	if s == "" {
		return 0, false
	}

	s = resolveSeparators(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// AmountString normalizes an amount to a plain decimal string with two
// fractional digits, suitable for form fields that carry amounts as text.
func AmountString(raw string) (string, bool) {
	v, ok := Amount(raw)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', 2, 64), true
}

// resolveSeparators rewrites mixed comma/dot grouping into a canonical
// dot-decimal form. The last separator that appears wins as the decimal
// point when both are present; a lone comma is a decimal point only when
// followed by one or two digits.
func resolveSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.234,56 — dots group, comma is decimal.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56 — commas group.
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		frac := len(s) - lastComma - 1
		if frac == 1 || frac == 2 {
			s = strings.ReplaceAll(s[:lastComma], ",", "") + "." + s[lastComma+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		// Multiple dots can only be grouping (1.234.567).
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}
