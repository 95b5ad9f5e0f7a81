package adapter

import (
	"context"
	"fmt"
	"strings"

	"estatecore/internal/model"
)

// SourceAdapter translates an analyzed query into a source-specific fetch
// and back into uniform context items. Implementations never return errors:
// timeouts, disabled sources and malformed responses all collapse to an
// empty item set plus a status flag, logged at the adapter boundary.
type SourceAdapter interface {
	Source() model.Source
	Fetch(ctx context.Context, query *model.AnalyzedQuery, limit int) ([]model.ContextItem, model.SourceStatus)
}

// rankScore assigns a descending native score to already-ordered results
// when the source has no score of its own: the first of n items gets 1.0,
// the last gets 1/n.
func rankScore(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n-i) / float64(n)
}

// formatProperty renders one property row into a compact single line of
// prompt-ready text.
func formatProperty(p model.Property) string {
	var b strings.Builder
	if p.Bedrooms != nil {
		if *p.Bedrooms == 0 {
			b.WriteString("Studio")
		} else {
			fmt.Fprintf(&b, "%dBR", *p.Bedrooms)
		}
	} else {
		b.WriteString("Property")
	}
	if p.PropertyType != nil {
		fmt.Fprintf(&b, " %s", *p.PropertyType)
	}
	if p.Location != nil {
		fmt.Fprintf(&b, " in %s", *p.Location)
	}
	if p.Price != nil {
		fmt.Fprintf(&b, " — AED %.0f", *p.Price)
	}
	if p.Bathrooms != nil {
		fmt.Fprintf(&b, ", %d bath", *p.Bathrooms)
	}
	if p.AreaSqft != nil {
		fmt.Fprintf(&b, ", %.0f sqft", *p.AreaSqft)
	}
	if p.Developer != nil {
		fmt.Fprintf(&b, ", by %s", *p.Developer)
	}
	if p.Title != nil && *p.Title != "" {
		fmt.Fprintf(&b, ". %s", *p.Title)
	}
	return b.String()
}
