package ingest

import "encoding/json"

// Form is the mutable target the pipeline applies extracted values into.
// It is a thin string-keyed field set: each consuming form (bill, expense)
// decides which keys exist.
type Form struct {
	values map[string]string
}

// NewForm creates a form, optionally pre-populated.
func NewForm(initial map[string]string) *Form {
	f := &Form{values: make(map[string]string, len(initial))}
	for k, v := range initial {
		f.values[k] = v
	}
	return f
}

// Get returns the value for key, or "".
func (f *Form) Get(key string) string {
	return f.values[key]
}

// Set writes one field.
func (f *Form) Set(key, value string) {
	f.values[key] = value
}

// Snapshot returns a copy of all field values.
func (f *Form) Snapshot() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Restore replaces all field values with the given snapshot.
func (f *Form) Restore(snapshot map[string]string) {
	f.values = make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		f.values[k] = v
	}
}

// MarshalJSON encodes the form as a flat object.
func (f *Form) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.values)
}

// UnmarshalJSON decodes a flat object into the form.
func (f *Form) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &f.values)
}
