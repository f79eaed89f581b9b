// Package topic analyzes the corpus's stance toward a topic: build a
// retrieval query, collect evidence, classify the overall sentiment.
package topic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
	"github.com/scholarlabs/paperdex/internal/synthesis"
)

// Config bounds evidence retrieval depth.
type Config struct {
	TopK    int
	MaxTopK int
}

// Service orchestrates topic-stance analysis.
type Service struct {
	embed    Embedder
	retrieve Retriever
	analyze  StanceAnalyzer
	cfg      Config
	logger   *zap.Logger
}

// New creates a topic analysis service.
func New(embed Embedder, retrieve Retriever, analyze StanceAnalyzer, cfg Config, logger *zap.Logger) *Service {
	return &Service{embed: embed, retrieve: retrieve, analyze: analyze, cfg: cfg, logger: logger}
}

// Analyze reports the corpus's stance toward topic, optionally scoped to
// paperIDs. Empty retrieval short-circuits to a no-information report
// without touching the language model.
func (s *Service) Analyze(ctx context.Context, topic string, topK int, paperIDs []string) (domain.StanceReport, error) {
	topK = s.clampTopK(topK)

	query := synthesis.StanceQuery(topic)

	embedded, err := s.embed.Embed(ctx, query)
	if err != nil {
		return domain.StanceReport{}, fmt.Errorf("embed topic query: %w", err)
	}

	contexts, err := s.retrieve.Query(ctx, embedded.Embedding, topK, paperIDs)
	if err != nil {
		return domain.StanceReport{}, fmt.Errorf("retrieve evidence: %w", err)
	}

	if len(contexts) == 0 {
		s.logger.Info("topic analysis found no evidence", zap.String("topic", topic))
		return domain.StanceReport{
			Stance:  "No information found",
			Summary: fmt.Sprintf("No relevant information found about %q in the uploaded papers.", topic),
		}, nil
	}

	report := s.analyze.Stance(ctx, topic, contexts)

	s.logger.Info("topic analyzed",
		zap.String("topic", topic),
		zap.String("stance", report.Stance),
		zap.Int("evidence", len(report.Evidence)),
		zap.Bool("degraded", report.GenerationError != ""))

	return report, nil
}

func (s *Service) clampTopK(topK int) int {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if s.cfg.MaxTopK > 0 && topK > s.cfg.MaxTopK {
		topK = s.cfg.MaxTopK
	}
	if topK <= 0 {
		topK = 5
	}
	return topK
}
