package fusion

import (
	"hash/fnv"
	"sort"
	"strings"

	"estatecore/internal/model"
)

// BudgetUnit selects how the fusion budget is measured.
const (
	BudgetChars = "chars"
	BudgetItems = "items"
)

// Engine merges heterogeneous adapter outputs into one deduplicated, ranked,
// budget-bounded context. Structured transactional rows generally carry more
// actionable signal than narrative text for property queries, which the
// default source weights encode (relational 1.0, listings 0.9, documents 0.8).
type Engine struct {
	weights    map[model.Source]float64
	budgetUnit string
}

// NewEngine creates a fusion engine with per-source priority weights.
func NewEngine(weightRelational, weightListings, weightDocuments float64, budgetUnit string) *Engine {
	return &Engine{
		weights: map[model.Source]float64{
			model.SourceRelational: weightRelational,
			model.SourceListings:   weightListings,
			model.SourceDocuments:  weightDocuments,
		},
		budgetUnit: budgetUnit,
	}
}

type scoredItem struct {
	item     model.ContextItem
	rawScore float64
	weighted float64
	order    int // arrival position, keeps dedup first-occurrence semantics
}

// Fuse concatenates, deduplicates, normalizes, weights, sorts and truncates.
// Identical inputs always produce identical output ordering. An all-empty
// input yields an empty FusedContext; the engine never fabricates content.
func (e *Engine) Fuse(query *model.AnalyzedQuery, itemSets [][]model.ContextItem, budget int) model.FusedContext {
	_ = query // reserved for intent-aware weighting

	// concatenate and dedupe on (source, normalized content hash); the first
	// occurrence keeps its position, the highest raw score survives
	seen := map[uint64]int{}
	var merged []scoredItem
	order := 0
	for _, set := range itemSets {
		for _, it := range set {
			key := dedupKey(it.Source, it.Content)
			if idx, dup := seen[key]; dup {
				if it.RelevanceScore > merged[idx].rawScore {
					merged[idx].rawScore = it.RelevanceScore
				}
				continue
			}
			seen[key] = len(merged)
			merged = append(merged, scoredItem{item: it, rawScore: it.RelevanceScore, order: order})
			order++
		}
	}
	if len(merged) == 0 {
		return model.FusedContext{Items: []model.ContextItem{}}
	}

	e.normalizeAndWeight(merged)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.weighted != b.weighted {
			return a.weighted > b.weighted
		}
		// prefer denser items
		if len(a.item.Content) != len(b.item.Content) {
			return len(a.item.Content) < len(b.item.Content)
		}
		if pa, pb := sourceRank(a.item.Source), sourceRank(b.item.Source); pa != pb {
			return pa < pb
		}
		return a.order < b.order
	})

	return model.FusedContext{Items: e.applyBudget(merged, budget)}
}

// normalizeAndWeight min-max normalizes raw scores within each source batch
// to a common 0-1 scale, then multiplies in the source priority weight.
// A source contributing a single item normalizes to 1.0.
func (e *Engine) normalizeAndWeight(items []scoredItem) {
	min := map[model.Source]float64{}
	max := map[model.Source]float64{}
	for _, si := range items {
		s := si.item.Source
		lo, ok := min[s]
		if !ok || si.rawScore < lo {
			min[s] = si.rawScore
		}
		hi, ok := max[s]
		if !ok || si.rawScore > hi {
			max[s] = si.rawScore
		}
	}
	for i := range items {
		s := items[i].item.Source
		span := max[s] - min[s]
		norm := 1.0
		if span > 0 {
			norm = (items[i].rawScore - min[s]) / span
		}
		items[i].weighted = norm * e.weights[s]
		items[i].item.RelevanceScore = items[i].weighted
	}
}

// applyBudget greedily accepts sorted items until the next one would exceed
// the budget. Items are accepted whole or not at all.
func (e *Engine) applyBudget(items []scoredItem, budget int) []model.ContextItem {
	out := make([]model.ContextItem, 0, len(items))
	used := 0
	for _, si := range items {
		cost := 1
		if e.budgetUnit == BudgetChars {
			cost = len(si.item.Content)
		}
		if used+cost > budget {
			break
		}
		used += cost
		out = append(out, si.item)
	}
	return out
}

func dedupKey(source model.Source, content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(normalizeContent(content)))
	return h.Sum64()
}

// normalizeContent lowercases and collapses whitespace so cosmetic
// differences do not defeat deduplication.
func normalizeContent(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sourceRank(s model.Source) int {
	for i, p := range model.SourcePriority {
		if p == s {
			return i
		}
	}
	return len(model.SourcePriority)
}
