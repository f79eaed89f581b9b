package synthesis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// comparisonMaxTokens bounds multi-paper comparisons, which run longer
// than single answers.
const comparisonMaxTokens = 2048

// evidenceExcerptLen caps stance evidence excerpts (in runes).
const evidenceExcerptLen = 200

// Config holds sampling parameters for answer generation.
type Config struct {
	Temperature float32
	MaxTokens   int
}

// Synthesizer turns retrieved contexts into citation-grounded answers,
// comparisons, and stance reports. Generation failures come back as
// degraded results with GenerationError set, never as error returns:
// retrieval already succeeded and its evidence is still worth returning.
type Synthesizer struct {
	gen    domain.Generator
	cfg    Config
	logger *zap.Logger
}

// New creates a synthesizer over the given generator.
func New(gen domain.Generator, cfg Config, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{gen: gen, cfg: cfg, logger: logger}
}

// Answer generates a cited answer from the query and its contexts.
func (s *Synthesizer) Answer(ctx context.Context, query string, contexts []domain.Context) domain.Answer {
	answer := domain.Answer{
		Contexts:     contexts,
		ContextsUsed: len(contexts),
		Model:        s.gen.Model(),
	}

	prompt := BuildAnswerPrompt(query, contexts)
	text, err := s.gen.Generate(ctx, prompt, domain.GenerateOptions{
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("Answer generation failed", zap.Error(err))
		answer.Text = fmt.Sprintf("Error generating answer: %v", err)
		answer.GenerationError = err.Error()
		return answer
	}

	answer.Text = text
	answer.Citations = ExtractCitations(text, contexts)
	return answer
}

// Compare generates a structured comparison of the given papers.
func (s *Synthesizer) Compare(
	ctx context.Context, papers []domain.PaperSummary, aspects []string,
) domain.Comparison {
	if len(aspects) == 0 {
		aspects = domain.DefaultComparisonAspects
	}

	comparison := domain.Comparison{
		Papers:         papers,
		PapersCompared: len(papers),
		Aspects:        aspects,
		Model:          s.gen.Model(),
	}

	prompt := BuildComparisonPrompt(papers, aspects)
	text, err := s.gen.Generate(ctx, prompt, domain.GenerateOptions{
		Temperature: s.cfg.Temperature,
		MaxTokens:   comparisonMaxTokens,
	})
	if err != nil {
		s.logger.Error("Comparison generation failed", zap.Error(err))
		comparison.Text = fmt.Sprintf("Error generating comparison: %v", err)
		comparison.GenerationError = err.Error()
		return comparison
	}

	comparison.Text = text
	return comparison
}

// Stance analyzes the corpus position toward a topic from its evidence
// contexts.
func (s *Synthesizer) Stance(ctx context.Context, topic string, contexts []domain.Context) domain.StanceReport {
	report := domain.StanceReport{
		Evidence: buildEvidence(contexts),
		Model:    s.gen.Model(),
	}

	prompt := BuildStancePrompt(topic, contexts)
	text, err := s.gen.Generate(ctx, prompt, domain.GenerateOptions{
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("Stance generation failed", zap.Error(err))
		report.Stance = "Neutral"
		report.Summary = fmt.Sprintf("Error analyzing stance: %v", err)
		report.GenerationError = err.Error()
		return report
	}

	report.Stance = ParseStance(text)
	report.Summary = text
	return report
}

func buildEvidence(contexts []domain.Context) []domain.StanceEvidence {
	evidence := make([]domain.StanceEvidence, len(contexts))
	for i, ctx := range contexts {
		evidence[i] = domain.StanceEvidence{
			Text:      excerpt(ctx.Text, evidenceExcerptLen),
			Section:   ctx.Metadata.Section,
			Page:      ctx.Metadata.Page,
			Relevance: ctx.RelevanceScore,
		}
	}
	return evidence
}

func excerpt(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
