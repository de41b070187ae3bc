package normalize

import (
	"regexp"
	"strings"
)

// entitySuffixRe strips common legal entity suffixes during vendor name
// normalization so that "Acme Corp." and "Acme Corporation" compare equal.
var entitySuffixRe = regexp.MustCompile(
	`(?i)\s*,?\s*(LLC|L\.?L\.?C\.?|INC\.?|INCORPORATED|CORP\.?|CORPORATION|` +
		`CO\.?|COMPANY|LTD\.?|LIMITED|L\.?P\.?|LLP|L\.?L\.?P\.?|` +
		`PLLC|P\.?L\.?L\.?C\.?|P\.?C\.?|GMBH|S\.?A\.?|B\.?V\.?|DBA|D/B/A)\s*\.?\s*$`)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

var namePunctReplacer = strings.NewReplacer(
	",", "",
	".", "",
	"'", "",
	"\"", "",
	"&", "AND",
	"-", " ",
)

// EntityName standardizes a vendor/contact name for matching: trim,
// uppercase, strip one trailing legal suffix, remove punctuation, collapse
// whitespace.
func EntityName(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	n = entitySuffixRe.ReplaceAllString(n, "")
	n = namePunctReplacer.Replace(n)
	n = multiSpaceRe.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}
