package paperdex

import "github.com/scholarlabs/paperdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMissingPaperID         = domain.ErrMissingPaperID
	ErrNoChunks               = domain.ErrNoChunks
	ErrInsufficientPapers     = domain.ErrInsufficientPapers
	ErrPaperNotFound          = domain.ErrPaperNotFound
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrGenerationFailed       = domain.ErrGenerationFailed
	ErrExtractionFailed       = domain.ErrExtractionFailed
)
