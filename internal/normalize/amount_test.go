package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{"plain decimal", "1234.56", 1234.56, true},
		{"us grouping", "1,234.56", 1234.56, true},
		{"eu grouping", "1.234,56", 1234.56, true},
		{"dollar sign", "$4,950.00", 4950, true},
		{"euro sign", "€1.234,56", 1234.56, true},
		{"iso code prefix", "USD 1,234.56", 1234.56, true},
		{"iso code suffix", "1234.56 EUR", 1234.56, true},
		{"negative sign", "-42.50", -42.50, true},
		{"parens negative", "(42.50)", -42.50, true},
		{"lone comma decimal", "42,5", 42.5, true},
		{"comma grouping no decimal", "4,950", 4950, true},
		{"multiple dot grouping", "1.234.567", 1234567, true},
		{"integer", "500", 500, true},
		{"apostrophe grouping", "1'234.56", 1234.56, true},
		{"empty", "", 0, false},
		{"free text", "about fifty", 0, false},
		{"symbol only", "$", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Amount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}

func TestAmountString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"$4,950.00", "4950.00", true},
		{"1.234,5", "1234.50", true},
		{"500", "500.00", true},
		{"(42.50)", "-42.50", true},
		{"n/a", "", false},
	}

	for _, tt := range tests {
		got, ok := AmountString(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
