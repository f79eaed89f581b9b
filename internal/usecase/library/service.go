// Package library manages the stored paper corpus: listing, deletion,
// and corpus-level statistics.
package library

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// ModelInfo names the models stats reports alongside corpus counts.
type ModelInfo struct {
	EmbeddingModel     string
	EmbeddingDimension int
	LLMModel           string
}

// Service exposes corpus management operations.
type Service struct {
	catalog Catalog
	models  ModelInfo
	logger  *zap.Logger
}

// New creates a library service.
func New(catalog Catalog, models ModelInfo, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, models: models, logger: logger}
}

// ListPapers returns one summary per stored paper.
func (s *Service) ListPapers(ctx context.Context) ([]domain.PaperInfo, error) {
	papers, err := s.catalog.ListPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	return papers, nil
}

// DeletePaper removes all chunks of a paper and returns how many were
// deleted. A paper with nothing stored is domain.ErrPaperNotFound.
func (s *Service) DeletePaper(ctx context.Context, paperID string) (int, error) {
	if paperID == "" {
		return 0, domain.ErrMissingPaperID
	}

	deleted, err := s.catalog.DeleteByPaper(ctx, paperID)
	if err != nil {
		return 0, fmt.Errorf("delete paper: %w", err)
	}
	if deleted == 0 {
		return 0, domain.ErrPaperNotFound
	}

	s.logger.Info("paper deleted",
		zap.String("paper_id", paperID),
		zap.Int("chunks_deleted", deleted))

	return deleted, nil
}

// Stats reports corpus counts plus the configured model identities.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	papers, err := s.catalog.CountPapers(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count papers: %w", err)
	}
	chunks, err := s.catalog.CountChunks(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("count chunks: %w", err)
	}

	return domain.Stats{
		TotalPapers:        papers,
		TotalChunks:        chunks,
		EmbeddingModel:     s.models.EmbeddingModel,
		EmbeddingDimension: s.models.EmbeddingDimension,
		LLMModel:           s.models.LLMModel,
	}, nil
}
