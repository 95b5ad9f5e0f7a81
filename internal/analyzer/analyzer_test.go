package analyzer

import (
	"testing"

	"estatecore/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_PropertySearch(t *testing.T) {
	a := New()

	result := a.Analyze("2-bedroom apartment in Dubai Marina under 3 million AED")

	assert.Equal(t, model.IntentPropertySearch, result.Intent)
	require.NotNil(t, result.Params.Bedrooms)
	assert.Equal(t, 2, *result.Params.Bedrooms)
	require.NotNil(t, result.Params.Location)
	assert.Equal(t, "Dubai Marina", *result.Params.Location)
	require.NotNil(t, result.Params.PriceMax)
	assert.Equal(t, 3_000_000.0, *result.Params.PriceMax)
	assert.Greater(t, result.Confidence, 0.7)
}

func TestAnalyze_RegulatoryQuestion(t *testing.T) {
	a := New()

	result := a.Analyze("What are RERA off-plan regulations?")

	assert.Equal(t, model.IntentRegulatory, result.Intent)
	assert.Equal(t, 0, result.Params.Count())
}

func TestAnalyze_IntentClassification(t *testing.T) {
	a := New()

	tests := []struct {
		name  string
		query string
		want  model.Intent
	}{
		{"investment", "What ROI can I expect on rental yield in JVC?", model.IntentInvestment},
		{"developer", "Is Emaar a reliable developer for handover dates?", model.IntentDeveloper},
		{"neighborhood", "What is the community like for families, any good schools?", model.IntentNeighborhood},
		{"market", "What is the market forecast and average price trend?", model.IntentMarketInfo},
		{"general", "hello there", model.IntentGeneral},
		{"empty", "", model.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Analyze(tt.query)
			assert.Equal(t, tt.want, result.Intent)
		})
	}
}

func TestAnalyze_ConfidenceAlwaysInRange(t *testing.T) {
	a := New()

	queries := []string{
		"",
		"???",
		"buy rent sale apartment villa townhouse penthouse studio bedroom",
		"2 bedroom 3 bathroom villa in Palm Jumeirah between 2 million and 5 million AED",
		"\x00\xff garbage \t\n input",
		"1234567890",
	}

	for _, q := range queries {
		result := a.Analyze(q)
		assert.GreaterOrEqual(t, result.Confidence, 0.0, "query %q", q)
		assert.LessOrEqual(t, result.Confidence, 1.0, "query %q", q)
		assert.NotNil(t, result.Params)
	}
}

func TestAnalyze_PriceExtraction(t *testing.T) {
	a := New()

	tests := []struct {
		name     string
		query    string
		priceMin *float64
		priceMax *float64
	}{
		{"under millions", "villa under 2.5 million", nil, f(2_500_000)},
		{"below k suffix", "apartment below 900k", nil, f(900_000)},
		{"above", "penthouse above 10 million", f(10_000_000), nil},
		{"between", "townhouse between 1.2m and 3m", f(1_200_000), f(3_000_000)},
		{"between reversed", "between 4 million and 2 million", f(2_000_000), f(4_000_000)},
		{"plain comma number", "budget of 1,500,000 AED", nil, f(1_500_000)},
		{"no price", "nice villa please", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Analyze(tt.query)
			assertFloatPtr(t, tt.priceMin, result.Params.PriceMin)
			assertFloatPtr(t, tt.priceMax, result.Params.PriceMax)
		})
	}
}

func TestAnalyze_RoomExtraction(t *testing.T) {
	a := New()

	result := a.Analyze("3 bedroom 2 bathroom villa")
	require.NotNil(t, result.Params.Bedrooms)
	assert.Equal(t, 3, *result.Params.Bedrooms)
	require.NotNil(t, result.Params.Bathrooms)
	assert.Equal(t, 2, *result.Params.Bathrooms)

	result = a.Analyze("studio in Business Bay")
	require.NotNil(t, result.Params.Bedrooms)
	assert.Equal(t, 0, *result.Params.Bedrooms)
	require.NotNil(t, result.Params.PropertyType)
	assert.Equal(t, "studio", *result.Params.PropertyType)
}

func TestAnalyze_LocationGazetteer(t *testing.T) {
	a := New()

	tests := []struct {
		query string
		want  string
	}{
		{"apartment in JBR", "Jumeirah Beach Residence"},
		{"villa on palm jumeirah", "Palm Jumeirah"},
		{"flat in jumeirah", "Jumeirah"},
		{"office in difc", "DIFC"},
		{"townhouse in Dubai Hills", "Dubai Hills Estate"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			result := a.Analyze(tt.query)
			require.NotNil(t, result.Params.Location)
			assert.Equal(t, tt.want, *result.Params.Location)
		})
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := New()
	query := "2 bedroom apartment for sale with good yield in the marina under 2m"

	first := a.Analyze(query)
	for i := 0; i < 20; i++ {
		next := a.Analyze(query)
		assert.Equal(t, first.Intent, next.Intent)
		assert.Equal(t, first.Confidence, next.Confidence)
		assert.Equal(t, first.Params.Map(), next.Params.Map())
	}
}

func f(v float64) *float64 { return &v }

func assertFloatPtr(t *testing.T, want, got *float64) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.Equal(t, *want, *got)
}
