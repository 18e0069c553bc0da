package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in       string
		ok       bool
		amount   string
		currency string
	}{
		{"£150", true, "150", "£"},
		{"£1,250.50", true, "1250.50", "£"},
		{"$99.99", true, "99.99", "$"},
		{"€ 80", true, "80", "€"},
		{"249", true, "249", ""},
		{"POA", false, "", ""},
		{"", false, "", ""},
		{"£", false, "", ""},
		{"call us", false, "", ""},
	}

	for _, tt := range tests {
		p, ok := ParsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if !tt.ok {
			continue
		}
		want, err := decimal.NewFromString(tt.amount)
		require.NoError(t, err)
		assert.True(t, p.Amount.Equal(want), "input %q: got %s", tt.in, p.Amount)
		assert.Equal(t, tt.currency, p.Currency, "input %q", tt.in)
		assert.Equal(t, tt.in, p.Raw)
	}
}

func TestRecordSet_FieldFamilies(t *testing.T) {
	var rec Record
	rec.Set("Model", "MG HS")
	rec.Set("Engine", "1.5T")
	rec.Set("Interim Service", "£150")
	rec.Set("12 Months", "£199")
	rec.Set("24,000 Miles", "£299")
	rec.Set("Notes", "includes brake check")

	assert.Equal(t, "MG HS", rec.Model)
	assert.Equal(t, "1.5T", rec.Engine)
	assert.Contains(t, rec.Services, "Interim Service")
	assert.Contains(t, rec.Intervals, "12 Months")
	assert.Contains(t, rec.Intervals, "24,000 Miles")
	assert.Equal(t, "includes brake check", rec.Extra["Notes"])
}

func TestRecordFields_RoundTrip(t *testing.T) {
	var rec Record
	rec.Set("Model", "MG HS")
	rec.Set("Engine", "1.5T")
	rec.Set("Interim Service", "£150")
	rec.Set("Notes", "petrol only")

	fields := rec.Fields()
	assert.Equal(t, map[string]string{
		"Model":           "MG HS",
		"Engine":          "1.5T",
		"Interim Service": "£150",
		"Notes":           "petrol only",
	}, fields)
}

func TestSearchBlob_IncludesHeadersAndValues(t *testing.T) {
	var rec Record
	rec.Set("Model", "MG HS")
	rec.Set("Engine", "1.5T")
	rec.Set("Interim Service", "£150")

	blob := rec.SearchBlob()
	assert.Contains(t, blob, "mg hs")
	assert.Contains(t, blob, "interim")
	assert.Contains(t, blob, "service")
	assert.Contains(t, blob, "£150")
	assert.NotContains(t, blob, "MG") // lower-cased
}
