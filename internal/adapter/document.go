package adapter

import (
	"context"
	"errors"
	"time"

	"estatecore/internal/model"

	"go.uber.org/zap"
)

// DocumentStore is the slice of the repository the document adapter needs.
type DocumentStore interface {
	SimilaritySearchDocuments(ctx context.Context, embedding []float32, topK int) ([]model.Document, error)
	FullTextSearchDocuments(ctx context.Context, text string, topK int) ([]model.Document, error)
}

// Embedder turns query text into an embedding vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	IsEnabled() bool
}

// DocumentAdapter performs semantic similarity search over ingested
// documents (market reports, policies, neighborhood profiles) using the raw
// message text. When no embedder is configured it degrades to full-text
// ranking instead of going dark.
type DocumentAdapter struct {
	store    DocumentStore
	embedder Embedder
	logger   *zap.Logger
	enabled  bool
	timeout  time.Duration
}

func NewDocumentAdapter(store DocumentStore, embedder Embedder, logger *zap.Logger, enabled bool, timeout time.Duration) *DocumentAdapter {
	return &DocumentAdapter{
		store:    store,
		embedder: embedder,
		logger:   logger,
		enabled:  enabled,
		timeout:  timeout,
	}
}

func (a *DocumentAdapter) Source() model.Source {
	return model.SourceDocuments
}

func (a *DocumentAdapter) Fetch(ctx context.Context, query *model.AnalyzedQuery, limit int) ([]model.ContextItem, model.SourceStatus) {
	if !a.enabled {
		return nil, model.StatusDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	docs, err := a.search(ctx, query.RawText, limit)
	if err != nil {
		status := model.StatusError
		if errors.Is(err, context.DeadlineExceeded) {
			status = model.StatusTimeout
		}
		a.logger.Warn("document fetch failed",
			zap.String("source", string(a.Source())),
			zap.Error(err))
		return nil, status
	}
	if len(docs) == 0 {
		return nil, model.StatusEmpty
	}

	items := make([]model.ContextItem, 0, len(docs))
	for i, d := range docs {
		score := rankScore(i, len(docs))
		if d.Similarity != nil {
			score = *d.Similarity
		} else if d.TextRank != nil {
			score = *d.TextRank
		}
		meta := map[string]any{"document_id": d.ID}
		if d.DocType != nil {
			meta["doc_type"] = *d.DocType
		}
		if d.Priority != nil {
			meta["priority"] = *d.Priority
		}
		items = append(items, model.ContextItem{
			Source:         model.SourceDocuments,
			Content:        d.Content,
			RelevanceScore: score,
			Metadata:       meta,
		})
	}
	return items, model.StatusOK
}

// search picks the semantic path when an embedder is available and falls
// back to full-text otherwise.
func (a *DocumentAdapter) search(ctx context.Context, text string, limit int) ([]model.Document, error) {
	if a.embedder != nil && a.embedder.IsEnabled() {
		embedding, err := a.embedder.EmbedQuery(ctx, text)
		if err == nil {
			return a.store.SimilaritySearchDocuments(ctx, embedding, limit)
		}
		a.logger.Warn("query embedding failed, falling back to full-text search", zap.Error(err))
	}
	return a.store.FullTextSearchDocuments(ctx, text, limit)
}
