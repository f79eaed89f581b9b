// Package compare builds per-paper summaries from stored chunks and
// synthesizes a multi-paper comparison.
package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// Service orchestrates multi-paper comparison.
type Service struct {
	chunks  ChunkReader
	compare Comparer
	logger  *zap.Logger
}

// New creates a comparison service.
func New(chunks ChunkReader, compare Comparer, logger *zap.Logger) *Service {
	return &Service{chunks: chunks, compare: compare, logger: logger}
}

// Compare summarizes each requested paper from its stored chunks and
// synthesizes a comparison across aspects (defaults applied downstream).
// Papers with no stored chunks are skipped; fewer than two surviving
// papers is domain.ErrInsufficientPapers, raised before any language
// model call.
func (s *Service) Compare(ctx context.Context, paperIDs, aspects []string) (domain.Comparison, error) {
	if len(paperIDs) < 2 {
		return domain.Comparison{}, domain.ErrInsufficientPapers
	}

	var summaries []domain.PaperSummary
	for _, paperID := range paperIDs {
		chunks, err := s.chunks.GetByPaper(ctx, paperID)
		if errors.Is(err, domain.ErrPaperNotFound) {
			s.logger.Warn("comparison skipping unknown paper", zap.String("paper_id", paperID))
			continue
		}
		if err != nil {
			return domain.Comparison{}, fmt.Errorf("load paper %s: %w", paperID, err)
		}
		summaries = append(summaries, summarize(paperID, chunks))
	}

	if len(summaries) < 2 {
		return domain.Comparison{}, domain.ErrInsufficientPapers
	}

	result := s.compare.Compare(ctx, summaries, aspects)

	s.logger.Info("papers compared",
		zap.Int("requested", len(paperIDs)),
		zap.Int("compared", len(summaries)),
		zap.Bool("degraded", result.GenerationError != ""))

	return result, nil
}

// summarize derives a paper's representative record: bibliographic
// fields from the first chunk, abstract from the first chunk stored
// under an "abstract" section.
func summarize(paperID string, chunks []domain.Chunk) domain.PaperSummary {
	summary := domain.PaperSummary{PaperID: paperID}
	if len(chunks) == 0 {
		return summary
	}

	first := chunks[0].Metadata
	summary.Title = first.Title
	summary.Authors = first.Authors
	summary.Year = first.Year

	sections := make(map[string]struct{})
	for _, c := range chunks {
		sections[c.Metadata.Section] = struct{}{}
		if summary.Abstract == "" && strings.EqualFold(c.Metadata.Section, "abstract") {
			summary.Abstract = c.Text
		}
	}
	summary.Sections = len(sections)

	return summary
}
