package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericDateRe matches d/m/y or m/d/y style dates with /, . or - separators.
var numericDateRe = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})$`)

// textualLayouts are tried in order for free-form locale strings.
var textualLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"02 Jan 2006",
	time.RFC3339,
}

// Date converts loosely formatted date text to canonical yyyy-mm-dd.
// Accepted inputs: ISO dates, dd/mm/yyyy, mm/dd/yyyy (also with . or -
// separators), two-digit years (mapped to 20xx), and common month-name
// forms. Ambiguous numeric dates resolve month-first unless the first
// component exceeds 12, in which case the input is treated as day-first.
// Unparseable input yields "" and callers must skip the field.
func Date(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if y < 100 {
			y += 2000
		}
		mo, d := a, b
		if a > 12 {
			mo, d = b, a
		}
		if !validYMD(y, mo, d) {
			return ""
		}
		return fmt.Sprintf("%04d-%02d-%02d", y, mo, d)
	}

	for _, layout := range textualLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func validYMD(y, m, d int) bool {
	if y < 1000 || m < 1 || m > 12 || d < 1 || d > 31 {
		return false
	}
	// Round-trip through time to reject impossible days like Feb 30.
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

// DateValue adapts Date to the model.Normalizer signature.
func DateValue(raw string) (string, bool) {
	v := Date(raw)
	return v, v != ""
}
