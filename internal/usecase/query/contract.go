package query

import (
	"context"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// Embedder vectorizes the question text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever finds the chunks closest to a query vector, optionally
// scoped to specific papers.
type Retriever interface {
	Query(ctx context.Context, vector []float32, k int, paperIDs []string) ([]domain.Context, error)
}

// Answerer turns a question plus retrieved contexts into an answer.
type Answerer interface {
	Answer(ctx context.Context, query string, contexts []domain.Context) domain.Answer
}
