package service

import (
	"context"
	"fmt"

	"estatecore/internal/model"

	"go.uber.org/zap"
)

// DocumentIndex is the slice of the repository the indexer needs.
type DocumentIndex interface {
	ListDocumentsMissingEmbedding(ctx context.Context, limit int) ([]model.Document, error)
	UpdateDocumentEmbedding(ctx context.Context, docID int64, embedding []float32) error
}

// QueryEmbedder turns text into an embedding vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	IsEnabled() bool
}

// DocumentIndexer backfills embeddings for documents that were ingested
// without one, so similarity search can cover them.
type DocumentIndexer struct {
	store    DocumentIndex
	embedder QueryEmbedder
	logger   *zap.Logger
}

func NewDocumentIndexer(store DocumentIndex, embedder QueryEmbedder, logger *zap.Logger) *DocumentIndexer {
	return &DocumentIndexer{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Enabled reports whether an embedder is available to index with.
func (x *DocumentIndexer) Enabled() bool {
	return x.embedder != nil && x.embedder.IsEnabled()
}

// ReindexMissing embeds up to batchSize unembedded documents. Per-document
// failures are collected and do not stop the batch; the returned error is
// reserved for the listing query itself.
func (x *DocumentIndexer) ReindexMissing(ctx context.Context, batchSize int) (int, []string, error) {
	docs, err := x.store.ListDocumentsMissingEmbedding(ctx, batchSize)
	if err != nil {
		return 0, nil, err
	}

	success := 0
	var failures []string
	for _, doc := range docs {
		embedding, err := x.embedder.EmbedQuery(ctx, doc.Content)
		if err != nil {
			failures = append(failures, fmt.Sprintf("document %d: embed: %v", doc.ID, err))
			continue
		}
		if err := x.store.UpdateDocumentEmbedding(ctx, doc.ID, embedding); err != nil {
			failures = append(failures, fmt.Sprintf("document %d: update: %v", doc.ID, err))
			continue
		}
		success++
	}

	x.logger.Info("document reindex completed",
		zap.Int("success", success),
		zap.Int("failed", len(failures)))
	return success, failures, nil
}
