package adapter

import (
	"context"
	"errors"
	"time"

	"estatecore/internal/model"

	"go.uber.org/zap"
)

// PropertyStore is the slice of the repository the relational adapter needs.
type PropertyStore interface {
	SearchProperties(ctx context.Context, params *model.QueryParams, limit int) ([]model.Property, error)
}

// RelationalAdapter fetches context from the live property tables using the
// extracted structured constraints. With zero constraints it returns empty
// instead of scanning the table.
type RelationalAdapter struct {
	store   PropertyStore
	logger  *zap.Logger
	enabled bool
	timeout time.Duration
}

func NewRelationalAdapter(store PropertyStore, logger *zap.Logger, enabled bool, timeout time.Duration) *RelationalAdapter {
	return &RelationalAdapter{
		store:   store,
		logger:  logger,
		enabled: enabled,
		timeout: timeout,
	}
}

func (a *RelationalAdapter) Source() model.Source {
	return model.SourceRelational
}

func (a *RelationalAdapter) Fetch(ctx context.Context, query *model.AnalyzedQuery, limit int) ([]model.ContextItem, model.SourceStatus) {
	if !a.enabled {
		return nil, model.StatusDisabled
	}
	if query.Params.Count() == 0 {
		// no constraints means an unbounded scan; refuse rather than guess
		return nil, model.StatusEmpty
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	properties, err := a.store.SearchProperties(ctx, query.Params, limit)
	if err != nil {
		status := model.StatusError
		if errors.Is(err, context.DeadlineExceeded) {
			status = model.StatusTimeout
		}
		a.logger.Warn("relational fetch failed",
			zap.String("source", string(a.Source())),
			zap.Error(err))
		return nil, status
	}
	if len(properties) == 0 {
		return nil, model.StatusEmpty
	}

	items := make([]model.ContextItem, 0, len(properties))
	for i, p := range properties {
		meta := map[string]any{"property_id": p.ID}
		if p.Price != nil {
			meta["price"] = *p.Price
		}
		if p.Location != nil {
			meta["location"] = *p.Location
		}
		items = append(items, model.ContextItem{
			Source:         model.SourceRelational,
			Content:        formatProperty(p),
			RelevanceScore: rankScore(i, len(properties)),
			Metadata:       meta,
		})
	}
	return items, model.StatusOK
}
