package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"estatecore/internal/model"
)

// confidenceFloor is returned for ambiguous or empty input so that malformed
// text never blocks the pipeline.
const confidenceFloor = 0.3

// intentKeywords holds the canonical keyword set per intent. Classification
// picks the intent with the most hits; ties resolve by model.IntentPriority.
var intentKeywords = map[model.Intent][]string{
	model.IntentPropertySearch: {
		"buy", "rent", "sale", "apartment", "flat", "villa", "townhouse",
		"penthouse", "studio", "bedroom", "bed room", "property", "listing",
		"looking for", "find me", "available",
	},
	model.IntentRegulatory: {
		"rera", "regulation", "law", "legal", "escrow", "title deed", "dld",
		"visa", "ejari", "permit", "fine", "compliance",
	},
	model.IntentInvestment: {
		"roi", "yield", "investment", "invest", "return", "rental income",
		"capital appreciation", "cash flow", "payback",
	},
	model.IntentDeveloper: {
		"developer", "emaar", "damac", "nakheel", "sobha", "meraas", "azizi",
		"handover", "track record", "master developer",
	},
	model.IntentNeighborhood: {
		"neighborhood", "neighbourhood", "community", "living in", "school",
		"family friendly", "family-friendly", "safe area", "commute", "lifestyle",
	},
	model.IntentMarketInfo: {
		"market", "trend", "price index", "average price", "forecast",
		"transaction volume", "supply", "demand", "outlook",
	},
}

// propertyTypes normalizes the type words we recognize in free text.
var propertyTypes = map[string]string{
	"apartment": "apartment",
	"flat":      "apartment",
	"villa":     "villa",
	"townhouse": "townhouse",
	"penthouse": "penthouse",
	"studio":    "studio",
	"duplex":    "duplex",
	"office":    "office",
	"plot":      "plot",
	"land":      "plot",
}

const amountPattern = `(?:aed\s*)?([0-9][0-9,]*(?:\.[0-9]+)?)(?:\s*(million|thousand|mil|mn|m|k))?\b(?:\s*(?:aed|dirhams?))?`

var (
	bedroomsRe  = regexp.MustCompile(`(?i)\b([0-9]+)\s*-?\s*(?:bed\s?rooms?|beds?|br)\b`)
	bathroomsRe = regexp.MustCompile(`(?i)\b([0-9]+)\s*-?\s*(?:bath\s?rooms?|baths?|ba)\b`)
	priceMaxRe  = regexp.MustCompile(`(?i)(?:under|below|less\s+than|up\s+to|max(?:imum)?(?:\s+of)?|within|budget(?:\s+(?:of|is))?)\s+` + amountPattern)
	priceMinRe  = regexp.MustCompile(`(?i)(?:over|above|more\s+than|at\s+least|starting\s+(?:at|from)|from)\s+` + amountPattern)
	betweenRe   = regexp.MustCompile(`(?i)between\s+` + amountPattern + `\s+and\s+` + amountPattern)
)

// Analyzer turns raw user text into an AnalyzedQuery. It is a pure function
// of the text: no I/O, no shared state, safe for concurrent use.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

// Analyze never fails: unclassifiable input resolves to a low-confidence
// general intent rather than an error.
func (a *Analyzer) Analyze(text string) *model.AnalyzedQuery {
	raw := text
	text = strings.TrimSpace(text)
	if text == "" {
		return &model.AnalyzedQuery{
			RawText:    raw,
			Intent:     model.IntentGeneral,
			Confidence: confidenceFloor,
			Params:     &model.QueryParams{},
		}
	}

	lower := strings.ToLower(text)

	intent, hits := classify(lower)
	params := extractParams(text, lower)

	// +0.3 scaled by keyword match strength, +0.2 per extracted parameter,
	// floored and capped so confidence stays in [floor, 1].
	strength := float64(hits) / 2
	if strength > 1 {
		strength = 1
	}
	confidence := 0.3*strength + 0.2*float64(params.Count())
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}
	if confidence > 1 {
		confidence = 1
	}

	return &model.AnalyzedQuery{
		RawText:    raw,
		Intent:     intent,
		Confidence: confidence,
		Params:     params,
	}
}

// classify counts keyword hits per intent and returns the winner. The fixed
// priority order makes ties deterministic.
func classify(lower string) (model.Intent, int) {
	best := model.IntentGeneral
	bestHits := 0
	for _, intent := range model.IntentPriority {
		keywords, ok := intentKeywords[intent]
		if !ok {
			continue
		}
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = intent
			bestHits = hits
		}
	}
	return best, bestHits
}

func extractParams(text, lower string) *model.QueryParams {
	params := &model.QueryParams{}

	if m := bedroomsRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			params.Bedrooms = &n
		}
	} else if strings.Contains(lower, "studio") {
		zero := 0
		params.Bedrooms = &zero
	}

	if m := bathroomsRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			params.Bathrooms = &n
		}
	}

	if m := betweenRe.FindStringSubmatch(text); m != nil {
		lo := parseAmount(m[1], m[2])
		hi := parseAmount(m[3], m[4])
		if lo > 0 && hi > 0 {
			if lo > hi {
				lo, hi = hi, lo
			}
			params.PriceMin = &lo
			params.PriceMax = &hi
		}
	} else {
		if m := priceMaxRe.FindStringSubmatch(text); m != nil {
			if v := parseAmount(m[1], m[2]); v > 0 {
				params.PriceMax = &v
			}
		}
		if m := priceMinRe.FindStringSubmatch(text); m != nil {
			if v := parseAmount(m[1], m[2]); v > 0 {
				params.PriceMin = &v
			}
		}
	}

	// map iteration order is random; make the pick deterministic by
	// preferring the earliest match position in the text
	bestPos := len(lower) + 1
	for word, canonical := range propertyTypes {
		if pos := strings.Index(lower, word); pos >= 0 && pos < bestPos {
			bestPos = pos
			c := canonical
			params.PropertyType = &c
		}
	}

	if loc, ok := matchLocation(text); ok {
		params.Location = &loc
	}

	return params
}

// parseAmount converts a matched number plus magnitude word into AED.
func parseAmount(num, unit string) float64 {
	num = strings.ReplaceAll(num, ",", "")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(unit) {
	case "million", "mil", "mn", "m":
		v *= 1_000_000
	case "thousand", "k":
		v *= 1_000
	}
	return v
}
