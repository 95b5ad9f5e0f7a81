package fusion

import (
	"strings"

	"estatecore/internal/model"
)

// NoContextMarker is emitted when fusion produced nothing, so downstream
// prompt assembly can tell starvation apart from an accidental empty string.
const NoContextMarker = "(no supporting context retrieved)"

// sectionLabels names the serialized section per source.
var sectionLabels = map[model.Source]string{
	model.SourceRelational: "PROPERTY DATABASE RECORDS",
	model.SourceListings:   "LIVE EXTERNAL LISTINGS",
	model.SourceDocuments:  "KNOWLEDGE DOCUMENTS",
}

// Serializer renders a fused context into a single bounded text block.
// Output is byte-deterministic for identical input.
type Serializer struct {
	hardCeiling int
}

// NewSerializer creates a serializer with a last-resort character ceiling.
// The ceiling should rarely trigger given the fusion engine's own budget.
func NewSerializer(hardCeiling int) *Serializer {
	return &Serializer{hardCeiling: hardCeiling}
}

// Serialize groups items by source under labeled sections, in source
// priority order, preserving fused ordering within each section. Truncation
// happens only at item boundaries.
func (s *Serializer) Serialize(fc model.FusedContext) string {
	if len(fc.Items) == 0 {
		return NoContextMarker
	}

	grouped := map[model.Source][]model.ContextItem{}
	for _, it := range fc.Items {
		grouped[it.Source] = append(grouped[it.Source], it)
	}

	var b strings.Builder
	for _, source := range model.SourcePriority {
		items := grouped[source]
		if len(items) == 0 {
			continue
		}
		section := renderSection(source, items)
		if b.Len()+len(section) > s.hardCeiling {
			// try to fit a shortened section before giving up on it
			section = s.renderBounded(source, items, s.hardCeiling-b.Len())
			if section == "" {
				break
			}
		}
		b.WriteString(section)
	}

	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return NoContextMarker
	}
	return out
}

func renderSection(source model.Source, items []model.ContextItem) string {
	var b strings.Builder
	b.WriteString("== " + sectionLabels[source] + " ==\n")
	for _, it := range items {
		b.WriteString("- " + it.Content + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderBounded renders as many whole items as fit into room characters,
// returning "" when not even the header plus one item fits.
func (s *Serializer) renderBounded(source model.Source, items []model.ContextItem, room int) string {
	header := "== " + sectionLabels[source] + " ==\n"
	var b strings.Builder
	b.WriteString(header)
	wrote := false
	for _, it := range items {
		line := "- " + it.Content + "\n"
		if b.Len()+len(line)+1 > room {
			break
		}
		b.WriteString(line)
		wrote = true
	}
	if !wrote {
		return ""
	}
	b.WriteString("\n")
	return b.String()
}
