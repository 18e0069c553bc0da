package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehq/servicebot/internal/pricing"
	"github.com/garagehq/servicebot/internal/recall"
)

func record(fields map[string]string) pricing.Record {
	var r pricing.Record
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

func TestTokenize_DropsShortTokens(t *testing.T) {
	tokens := Tokenize("MG HS 3 interim service a")
	// "MG" and "HS" are two characters and must not influence scoring;
	// neither may "3" or "a".
	assert.Equal(t, []string{"interim", "service"}, tokens)
}

func TestTokenize_Folds(t *testing.T) {
	assert.Equal(t, []string{"interim", "service"}, Tokenize("  INTERIM   Service "))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("a b c"))
}

func TestPricing_ConcreteScenario(t *testing.T) {
	records := []pricing.Record{record(map[string]string{
		"Model":           "MG4 EV",
		"Engine":          "electric",
		"Interim Service": "£150",
	})}

	// tokens {mg4, interim, service} all appear in the blob → score 3 ≥ 2.
	got := Pricing(records, "MG4 interim service", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "MG4 EV", got[0].Model)
}

func TestPricing_MinScoreGate(t *testing.T) {
	records := []pricing.Record{record(map[string]string{
		"Model":           "MG4 EV",
		"Interim Service": "£150",
	})}

	// Only "service" hits → score 1 < 2 → rejected.
	assert.Empty(t, Pricing(records, "citroen brake service", Options{}))
}

func TestPricing_TopKAndStability(t *testing.T) {
	var records []pricing.Record
	for i := range 8 {
		records = append(records, record(map[string]string{
			"Model":           fmt.Sprintf("MG4 Trophy %d", i),
			"Interim Service": "£150",
		}))
	}
	// One record matches an extra token and must rank first.
	records = append(records, record(map[string]string{
		"Model":           "MG4 XPower",
		"Engine":          "electric",
		"Interim Service": "£180",
	}))

	got := Pricing(records, "mg4 electric interim service", Options{})
	require.Len(t, got, DefaultTopK)
	assert.Equal(t, "MG4 XPower", got[0].Model)
	// Equal-score records keep their cache order.
	assert.Equal(t, "MG4 Trophy 0", got[1].Model)
	assert.Equal(t, "MG4 Trophy 1", got[2].Model)
	assert.Equal(t, "MG4 Trophy 2", got[3].Model)
	assert.Equal(t, "MG4 Trophy 3", got[4].Model)
}

func TestPricing_CustomOptions(t *testing.T) {
	var records []pricing.Record
	for i := range 4 {
		records = append(records, record(map[string]string{
			"Model":           fmt.Sprintf("MG4 %d", i),
			"Interim Service": "£150",
		}))
	}

	got := Pricing(records, "mg4 interim service", Options{TopK: 2})
	assert.Len(t, got, 2)
}

func TestPricing_NoQualifyingTokens(t *testing.T) {
	records := []pricing.Record{record(map[string]string{"Model": "MG HS"})}
	assert.Empty(t, Pricing(records, "a b 12", Options{}))
}

func TestRecalls_ORSemantics(t *testing.T) {
	notices := []recall.Descriptor{
		{Name: "MG4 Recall 2023.pdf"},
		{Name: "Citroen Brake Recall.pdf"},
		{Name: "Service Bulletin.pdf"},
	}

	got := Recalls(notices, "recall MG4")
	// "recall" matches the first two, "mg4" the first. OR semantics, no
	// double-counting.
	require.Len(t, got, 2)
	assert.Equal(t, "MG4 Recall 2023.pdf", got[0].Name)
	assert.Equal(t, "Citroen Brake Recall.pdf", got[1].Name)
}

func TestRecalls_NoMatch(t *testing.T) {
	notices := []recall.Descriptor{{Name: "MG4 Recall 2023.pdf"}}
	assert.Empty(t, Recalls(notices, "vauxhall corsa"))
	assert.Empty(t, Recalls(nil, "recall"))
}
