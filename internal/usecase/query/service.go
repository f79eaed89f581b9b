// Package query answers questions over the stored corpus: embed the
// question, retrieve the closest chunks, synthesize an answer.
package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// Config bounds retrieval depth.
type Config struct {
	TopK    int // default when the request names none
	MaxTopK int // hard ceiling
}

// Service orchestrates the question-answering pipeline.
type Service struct {
	embed    Embedder
	retrieve Retriever
	answer   Answerer
	cfg      Config
	logger   *zap.Logger
}

// New creates a query service.
func New(embed Embedder, retrieve Retriever, answer Answerer, cfg Config, logger *zap.Logger) *Service {
	return &Service{embed: embed, retrieve: retrieve, answer: answer, cfg: cfg, logger: logger}
}

// Ask answers the question from the top-k retrieved chunks, optionally
// scoped to paperIDs. Retrieval yielding nothing short-circuits to a
// canned answer without touching the language model.
func (s *Service) Ask(ctx context.Context, question string, topK int, paperIDs []string) (domain.Answer, error) {
	topK = s.clampTopK(topK)

	embedded, err := s.embed.Embed(ctx, question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed question: %w", err)
	}

	contexts, err := s.retrieve.Query(ctx, embedded.Embedding, topK, paperIDs)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve contexts: %w", err)
	}

	if len(contexts) == 0 {
		s.logger.Info("query retrieved no contexts", zap.String("question", question))
		return domain.Answer{Text: domain.NoResultsAnswer}, nil
	}

	result := s.answer.Answer(ctx, question, contexts)

	s.logger.Info("query answered",
		zap.Int("contexts", len(contexts)),
		zap.Int("citations", len(result.Citations)),
		zap.Bool("degraded", result.GenerationError != ""))

	return result, nil
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
