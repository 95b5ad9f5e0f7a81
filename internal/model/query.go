package model

// Intent classifies the purpose of a user message.
type Intent string

const (
	IntentPropertySearch Intent = "property_search"
	IntentRegulatory     Intent = "regulatory_question"
	IntentInvestment     Intent = "investment_question"
	IntentDeveloper      Intent = "developer_question"
	IntentNeighborhood   Intent = "neighborhood_question"
	IntentMarketInfo     Intent = "market_info"
	IntentGeneral        Intent = "general"
)

// IntentPriority is the fixed tie-break order across intents. Lower index wins
// when keyword scores are equal, so classification is deterministic.
var IntentPriority = []Intent{
	IntentPropertySearch,
	IntentRegulatory,
	IntentInvestment,
	IntentDeveloper,
	IntentNeighborhood,
	IntentMarketInfo,
	IntentGeneral,
}

// QueryParams holds structured constraints extracted from a message.
// Nil fields were not present in the text.
type QueryParams struct {
	Location     *string  `json:"location,omitempty"`
	PriceMin     *float64 `json:"price_min,omitempty"`
	PriceMax     *float64 `json:"price_max,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
}

// Count returns how many constraints were extracted.
func (p *QueryParams) Count() int {
	if p == nil {
		return 0
	}
	n := 0
	if p.Location != nil {
		n++
	}
	if p.PriceMin != nil {
		n++
	}
	if p.PriceMax != nil {
		n++
	}
	if p.Bedrooms != nil {
		n++
	}
	if p.Bathrooms != nil {
		n++
	}
	if p.PropertyType != nil {
		n++
	}
	return n
}

// Map renders the extracted constraints as a flat map for responses and logs.
func (p *QueryParams) Map() map[string]any {
	m := map[string]any{}
	if p == nil {
		return m
	}
	if p.Location != nil {
		m["location"] = *p.Location
	}
	if p.PriceMin != nil {
		m["price_min"] = *p.PriceMin
	}
	if p.PriceMax != nil {
		m["price_max"] = *p.PriceMax
	}
	if p.Bedrooms != nil {
		m["bedrooms"] = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		m["bathrooms"] = *p.Bathrooms
	}
	if p.PropertyType != nil {
		m["property_type"] = *p.PropertyType
	}
	return m
}

// AnalyzedQuery is the result of analyzing one user message. Immutable after
// creation and owned by the request that produced it.
type AnalyzedQuery struct {
	RawText    string       `json:"raw_text"`
	Intent     Intent       `json:"intent"`
	Confidence float64      `json:"confidence"`
	Params     *QueryParams `json:"parameters"`
}
