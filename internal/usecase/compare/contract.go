package compare

import (
	"context"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// ChunkReader loads a paper's stored chunks in section order.
type ChunkReader interface {
	GetByPaper(ctx context.Context, paperID string) ([]domain.Chunk, error)
}

// Comparer synthesizes the comparison text over paper summaries.
type Comparer interface {
	Compare(ctx context.Context, papers []domain.PaperSummary, aspects []string) domain.Comparison
}
