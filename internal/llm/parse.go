package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ledgerline/ingest-cli/internal/model"
)

// moneyFields are coerced to strings when the model emits numbers.
var moneyFields = []string{"subtotal", "tax_total", "total"}

// synonyms maps field names the model tends to invent onto our vocabulary.
// Ordered: when several synonyms of one target are present, the first listed
// wins, every run.
var synonyms = []struct {
	from, to string
}{
	{"vendor", "vendor_name"},
	{"supplier", "vendor_name"},
	{"supplier_name", "vendor_name"},
	{"invoice_no", "invoice_number"},
	{"invoice_date", "date"},
	{"issue_date", "date"},
	{"amount_due", "total"},
	{"grand_total", "total"},
	{"tax", "tax_total"},
	{"payment_type", "payment_method"},
	{"memo", "notes"},
	{"items", "line_items"},
}

// ParseExtraction decodes a model reply into an ExtractionResult. Models
// occasionally wrap JSON in code fences or lead with prose, so the first
// balanced JSON object in the reply is taken. Unknown keys are dropped,
// known synonyms renamed, and numeric money values coerced to strings; each
// adjustment is reported as a warning.
func ParseExtraction(raw []byte) (*model.ExtractionResult, []string, error) {
	body := extractJSONObject(string(raw))
	if body == "" {
		return nil, nil, eris.New("llm: no JSON object in reply")
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, nil, eris.Wrap(err, "llm: decode reply")
	}

	var warnings []string

	for _, s := range synonyms {
		if v, ok := m[s.from]; ok {
			if _, exists := m[s.to]; !exists {
				m[s.to] = v
			}
			delete(m, s.from)
			warnings = append(warnings, "renamed "+s.from+" to "+s.to)
		}
	}

	for _, k := range moneyFields {
		switch t := m[k].(type) {
		case float64:
			m[k] = fmt.Sprintf("%.2f", t)
			warnings = append(warnings, "coerced "+k+" to string")
		case string:
			if strings.TrimSpace(t) == "" || strings.EqualFold(t, "null") {
				delete(m, k)
				warnings = append(warnings, "dropped blank "+k)
			}
		case nil:
			if _, ok := m[k]; ok {
				delete(m, k)
				warnings = append(warnings, "dropped null "+k)
			}
		}
	}

	// Drop null scalars so they don't decode as empty-but-present.
	for k, v := range m {
		if v == nil {
			delete(m, k)
		}
	}

	cleaned, err := json.Marshal(m)
	if err != nil {
		return nil, nil, eris.Wrap(err, "llm: re-encode reply")
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(cleaned, &result); err != nil {
		return nil, nil, eris.Wrap(err, "llm: decode extraction")
	}
	return &result, warnings, nil
}

// extractJSONObject returns the first balanced {...} block in s, honoring
// strings and escapes, or "" when none exists.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
