// ABOUTME: Retriever embeds a query and searches the vector index
// ABOUTME: Pure orchestration with no caching and no deduplication of overlapping chunks
package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/harper/guia/internal/models"
)

// Retriever finds the chunks most similar to a query
type Retriever struct {
	embedder Embedder
	index    VectorIndex
	logger   *zap.Logger
}

// NewRetriever creates a Retriever
func NewRetriever(embedder Embedder, index VectorIndex, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, index: index, logger: logger}
}

// Retrieve returns up to k chunks ordered by descending similarity
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (*models.RetrievalResult, error) {
	if k < 1 {
		return nil, models.NewConfigError("top_k", "must be >= 1, got %d", k)
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &models.EmbeddingError{Err: err}
	}

	hits, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("retrieved chunks",
		zap.Int("k", k),
		zap.Int("hits", len(hits)))

	return &models.RetrievalResult{Query: query, Chunks: hits}, nil
}
