package model

// Source identifies which adapter produced a context item.
type Source string

const (
	SourceRelational Source = "relational"
	SourceListings   Source = "listings"
	SourceDocuments  Source = "documents"
)

// SourcePriority is the fixed precedence across sources, used as the final
// tie-break when fusing and as section order when serializing.
var SourcePriority = []Source{SourceRelational, SourceListings, SourceDocuments}

// SourceStatus reports how an adapter fetch ended. Adapters never return
// errors to the orchestrator; failures collapse to an empty item set plus
// one of these flags.
type SourceStatus string

const (
	StatusOK       SourceStatus = "ok"
	StatusEmpty    SourceStatus = "empty"
	StatusDisabled SourceStatus = "disabled"
	StatusTimeout  SourceStatus = "timeout"
	StatusError    SourceStatus = "error"
)

// ContextItem is one retrieved unit of information: a property row, a
// document snippet, or an external listing, tagged with its origin.
type ContextItem struct {
	Source         Source         `json:"source"`
	Content        string         `json:"content"`
	RelevanceScore float64        `json:"relevance_score"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// FusedContext is the deduplicated, ranked, budget-bounded merge of all
// adapter outputs, ordered by descending weighted score.
type FusedContext struct {
	Items []ContextItem `json:"items"`
}

// TotalChars returns the combined content length of all items.
func (f FusedContext) TotalChars() int {
	n := 0
	for _, it := range f.Items {
		n += len(it.Content)
	}
	return n
}

// SourcesUsed returns the metadata of every fused item, in fused order.
// An empty slice signals total context starvation to the caller.
func (f FusedContext) SourcesUsed() []map[string]any {
	used := make([]map[string]any, 0, len(f.Items))
	for _, it := range f.Items {
		meta := map[string]any{"source": string(it.Source)}
		for k, v := range it.Metadata {
			meta[k] = v
		}
		used = append(used, meta)
	}
	return used
}
