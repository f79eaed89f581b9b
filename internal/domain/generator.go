package domain

import "context"

// GenerateOptions are per-call sampling parameters for the language model.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// Generator is the language model contract used for answer synthesis.
// Implementations return errors; converting a failure into a degraded
// answer is the synthesizer's job, not the transport's.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Model() string
}
