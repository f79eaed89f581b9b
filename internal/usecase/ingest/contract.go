package ingest

import (
	"context"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// ChunkWriter stores embedded chunks.
type ChunkWriter interface {
	Add(ctx context.Context, chunks []domain.Chunk) error
}

// Embedder vectorizes chunk texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Splitter produces text windows from section text.
type Splitter interface {
	Split(text, sectionLabel string) []string
}
