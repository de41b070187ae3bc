package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormSnapshotRestore(t *testing.T) {
	t.Parallel()

	form := NewForm(map[string]string{"amount": "10.00", "notes": "hello"})
	snap := form.Snapshot()

	form.Set("amount", "20.00")
	form.Set("vendor", "Acme")
	form.Restore(snap)

	assert.Equal(t, "10.00", form.Get("amount"))
	assert.Equal(t, "hello", form.Get("notes"))
	assert.Equal(t, "", form.Get("vendor"))
}

func TestFormJSONRoundTrip(t *testing.T) {
	t.Parallel()

	form := NewForm(map[string]string{"amount": "10.00"})
	raw, err := json.Marshal(form)
	require.NoError(t, err)

	var decoded Form
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "10.00", decoded.Get("amount"))
}

func TestMappingForProfile(t *testing.T) {
	t.Parallel()

	require.NotNil(t, MappingForProfile("bills"))
	require.NotNil(t, MappingForProfile("invoices"))
	require.NotNil(t, MappingForProfile("expenses"))
	assert.Nil(t, MappingForProfile("payroll"))

	invoices := MappingForProfile("invoices")
	assert.Equal(t, []string{"invoice_number", "invoice_date", "due_date", "total", "notes_vendor", "notes_text"}, invoices.Keys())
	assert.Equal(t, []string{"invoice_number", "date", "due_date", "total"}, invoices.RequiredFields())

	bills := MappingForProfile("bills")
	assert.Equal(t, []string{"supplier_reference", "bill_date", "due_date", "amount", "notes_vendor", "notes_text"}, bills.Keys())
	// Completeness counts the core fields only, not the two append rules.
	assert.Equal(t, []string{"invoice_number", "date", "due_date", "total"}, bills.RequiredFields())
}
