package model

import "strings"

// Normalizer converts a raw extracted value into its canonical form for a
// target field. ok=false means the value is unusable and the field must be
// skipped at apply time, never written as an empty string.
type Normalizer func(raw string) (value string, ok bool)

// Identity trims whitespace and rejects blank values.
func Identity(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	return v, v != ""
}

// FieldRule maps one extraction field to one target-form field.
//
// Key is the toggle key shown to the user; it is distinct from both names
// because two rules may write the same target field (e.g. vendor and notes
// both append to the bill notes field).
type FieldRule struct {
	Key       string // toggle key, e.g. "notes_vendor"
	Source    string // ExtractionResult field name
	Target    string // target-form field name
	Label     string // display label for previews
	Normalize Normalizer
	Append    bool   // append to the target instead of overwriting
	Prefix    string // prepended to appended values, e.g. "Vendor: "
}

// FieldMapping is the ordered per-consumer translation table from extraction
// vocabulary to target-form fields, with indexed lookups.
type FieldMapping struct {
	Profile string // apply-profile key, e.g. "bills"
	Rules   []FieldRule
	byKey   map[string]*FieldRule
}

// NewFieldMapping indexes rules by toggle key. Rules without a Normalize
// func get Identity.
func NewFieldMapping(profile string, rules []FieldRule) *FieldMapping {
	m := &FieldMapping{
		Profile: profile,
		Rules:   rules,
		byKey:   make(map[string]*FieldRule, len(rules)),
	}
	for i := range m.Rules {
		r := &m.Rules[i]
		if r.Normalize == nil {
			r.Normalize = Identity
		}
		m.byKey[r.Key] = r
	}
	return m
}

// ByKey returns the rule for the given toggle key, or nil.
func (m *FieldMapping) ByKey(key string) *FieldRule {
	return m.byKey[key]
}

// Keys returns the toggle keys in rule order.
func (m *FieldMapping) Keys() []string {
	keys := make([]string, len(m.Rules))
	for i := range m.Rules {
		keys[i] = m.Rules[i].Key
	}
	return keys
}

// RequiredFields returns the distinct source field names of the core rules,
// in rule order. Append rules enrich an existing field (vendor and free-text
// notes) and don't count toward completeness.
func (m *FieldMapping) RequiredFields() []string {
	seen := make(map[string]bool, len(m.Rules))
	var fields []string
	for i := range m.Rules {
		if m.Rules[i].Append {
			continue
		}
		src := m.Rules[i].Source
		if !seen[src] {
			seen[src] = true
			fields = append(fields, src)
		}
	}
	return fields
}
