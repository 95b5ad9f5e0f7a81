package fusion

import (
	"testing"

	"estatecore/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEngine(unit string) *Engine {
	return NewEngine(1.0, 0.9, 0.8, unit)
}

func item(source model.Source, content string, score float64) model.ContextItem {
	return model.ContextItem{Source: source, Content: content, RelevanceScore: score}
}

func query() *model.AnalyzedQuery {
	return &model.AnalyzedQuery{RawText: "test", Intent: model.IntentGeneral, Params: &model.QueryParams{}}
}

func TestFuse_AllEmpty(t *testing.T) {
	e := defaultEngine(BudgetItems)

	fused := e.Fuse(query(), [][]model.ContextItem{{}, {}, {}}, 10)

	assert.Empty(t, fused.Items)
	assert.Empty(t, fused.SourcesUsed())
}

func TestFuse_Deduplication(t *testing.T) {
	e := defaultEngine(BudgetItems)

	sets := [][]model.ContextItem{
		{item(model.SourceRelational, "2BR apartment in Dubai Marina", 0.4)},
		{item(model.SourceRelational, "2br  Apartment in dubai marina", 0.9)}, // same after normalization
	}

	fused := e.Fuse(query(), sets, 10)

	require.Len(t, fused.Items, 1)
	// the first occurrence keeps its position and content, the higher raw
	// score survives
	assert.Equal(t, "2BR apartment in Dubai Marina", fused.Items[0].Content)
}

func TestFuse_DuplicateKeepsHigherScore(t *testing.T) {
	e := defaultEngine(BudgetItems)

	sets := [][]model.ContextItem{
		{
			item(model.SourceDocuments, "market report", 0.2),
			item(model.SourceDocuments, "policy text", 0.5),
		},
		{item(model.SourceDocuments, "market report", 0.9)},
	}

	fused := e.Fuse(query(), sets, 10)

	require.Len(t, fused.Items, 2)
	// 0.9 raw beats 0.5, so "market report" must normalize to the top of
	// the documents batch and sort first
	assert.Equal(t, "market report", fused.Items[0].Content)
}

func TestFuse_SameSourceContentDifferentSourcesKept(t *testing.T) {
	e := defaultEngine(BudgetItems)

	sets := [][]model.ContextItem{
		{item(model.SourceRelational, "2BR in JVC", 1.0)},
		{item(model.SourceListings, "2BR in JVC", 1.0)},
	}

	fused := e.Fuse(query(), sets, 10)

	assert.Len(t, fused.Items, 2)
}

func TestFuse_SourceWeightOrdering(t *testing.T) {
	e := defaultEngine(BudgetItems)

	// single item per source normalizes to 1.0, so ordering is purely the
	// source weight: relational > listings > documents
	sets := [][]model.ContextItem{
		{item(model.SourceDocuments, "doc", 0.99)},
		{item(model.SourceListings, "ext", 0.01)},
		{item(model.SourceRelational, "rel", 0.5)},
	}

	fused := e.Fuse(query(), sets, 10)

	require.Len(t, fused.Items, 3)
	assert.Equal(t, model.SourceRelational, fused.Items[0].Source)
	assert.Equal(t, model.SourceListings, fused.Items[1].Source)
	assert.Equal(t, model.SourceDocuments, fused.Items[2].Source)
}

func TestFuse_MinMaxNormalizationPerSource(t *testing.T) {
	e := NewEngine(1.0, 1.0, 1.0, BudgetItems)

	sets := [][]model.ContextItem{
		{
			item(model.SourceDocuments, "best doc", 0.08),
			item(model.SourceDocuments, "worst doc", 0.02),
		},
	}

	fused := e.Fuse(query(), sets, 10)

	require.Len(t, fused.Items, 2)
	assert.Equal(t, "best doc", fused.Items[0].Content)
	assert.InDelta(t, 1.0, fused.Items[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.0, fused.Items[1].RelevanceScore, 1e-9)
}

func TestFuse_TieBreakPrefersShorterContent(t *testing.T) {
	e := defaultEngine(BudgetItems)

	sets := [][]model.ContextItem{
		{
			item(model.SourceRelational, "a much longer content string here", 0.5),
			item(model.SourceRelational, "short", 0.5),
		},
	}

	fused := e.Fuse(query(), sets, 10)

	require.Len(t, fused.Items, 2)
	assert.Equal(t, "short", fused.Items[0].Content)
}

func TestFuse_ItemBudget(t *testing.T) {
	e := defaultEngine(BudgetItems)

	sets := [][]model.ContextItem{{
		item(model.SourceRelational, "one", 0.9),
		item(model.SourceRelational, "two", 0.8),
		item(model.SourceRelational, "three", 0.7),
	}}

	fused := e.Fuse(query(), sets, 2)

	assert.Len(t, fused.Items, 2)
}

func TestFuse_CharBudgetDropsWholeItems(t *testing.T) {
	e := defaultEngine(BudgetChars)

	sets := [][]model.ContextItem{{
		item(model.SourceRelational, "aaaaaaaaaa", 0.9), // 10 chars
		item(model.SourceRelational, "bbbbbbbbbb", 0.8), // 10 chars
		item(model.SourceRelational, "cccccccccc", 0.7), // 10 chars
	}}

	fused := e.Fuse(query(), sets, 25)

	// third item would exceed 25 chars and is dropped, never truncated
	require.Len(t, fused.Items, 2)
	assert.LessOrEqual(t, fused.TotalChars(), 25)
}

func TestFuse_Deterministic(t *testing.T) {
	e := defaultEngine(BudgetItems)

	sets := [][]model.ContextItem{
		{
			item(model.SourceRelational, "rel one", 0.7),
			item(model.SourceRelational, "rel two", 0.3),
		},
		{
			item(model.SourceListings, "ext one", 0.5),
			item(model.SourceListings, "ext two", 0.5),
		},
		{item(model.SourceDocuments, "doc one", 0.6)},
	}

	first := e.Fuse(query(), sets, 10)
	for i := 0; i < 50; i++ {
		next := e.Fuse(query(), sets, 10)
		require.Equal(t, first.Items, next.Items, "iteration %d", i)
	}
}
