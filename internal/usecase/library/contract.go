package library

import (
	"context"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// Catalog enumerates and deletes stored papers.
type Catalog interface {
	ListPapers(ctx context.Context) ([]domain.PaperInfo, error)
	DeleteByPaper(ctx context.Context, paperID string) (int, error)
	CountPapers(ctx context.Context) (int, error)
	CountChunks(ctx context.Context) (int, error)
}
