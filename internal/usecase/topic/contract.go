package topic

import (
	"context"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// Embedder vectorizes the retrieval query built for the topic.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever finds the chunks closest to a query vector, optionally
// scoped to specific papers.
type Retriever interface {
	Query(ctx context.Context, vector []float32, k int, paperIDs []string) ([]domain.Context, error)
}

// StanceAnalyzer classifies the corpus's position toward a topic from
// retrieved contexts.
type StanceAnalyzer interface {
	Stance(ctx context.Context, topic string, contexts []domain.Context) domain.StanceReport
}
