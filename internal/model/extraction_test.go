package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionField(t *testing.T) {
	t.Parallel()

	ex := &ExtractionResult{
		VendorName:    "Acme Corp",
		InvoiceNumber: "INV-001",
		Total:         "4950.00",
	}

	assert.Equal(t, "Acme Corp", ex.Field("vendor_name"))
	assert.Equal(t, "INV-001", ex.Field("invoice_number"))
	assert.Equal(t, "4950.00", ex.Field("total"))
	assert.Equal(t, "", ex.Field("due_date"))
	assert.Equal(t, "", ex.Field("no_such_field"))

	var nilEx *ExtractionResult
	assert.Equal(t, "", nilEx.Field("total"))
}

func TestExtractionHas(t *testing.T) {
	t.Parallel()

	ex := &ExtractionResult{VendorName: "Acme", Notes: "   "}
	assert.True(t, ex.Has("vendor_name"))
	assert.False(t, ex.Has("notes"), "whitespace-only is absent")
	assert.False(t, ex.Has("total"))
}

func TestIdentityNormalizer(t *testing.T) {
	t.Parallel()

	v, ok := Identity("  hello  ")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	_, ok = Identity("   ")
	assert.False(t, ok)
}

func TestFieldMappingIndex(t *testing.T) {
	t.Parallel()

	m := NewFieldMapping("bills", []FieldRule{
		{Key: "a", Source: "x", Target: "t1"},
		{Key: "b", Source: "y", Target: "t2"},
		{Key: "c", Source: "x", Target: "t3"},
		{Key: "d", Source: "z", Target: "t2", Append: true},
	})

	assert.NotNil(t, m.ByKey("a"))
	assert.Nil(t, m.ByKey("missing"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, m.Keys())
	// Append rules are excluded from the completeness set.
	assert.Equal(t, []string{"x", "y"}, m.RequiredFields())

	// Rules without an explicit normalizer fall back to Identity.
	v, ok := m.ByKey("a").Normalize(" raw ")
	assert.True(t, ok)
	assert.Equal(t, "raw", v)
}
