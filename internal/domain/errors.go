package domain

import "errors"

var (
	// ErrMissingPaperID signals an ingestion request without a paper identity.
	ErrMissingPaperID = errors.New("paper_id is required")
	// ErrNoChunks signals that chunking produced nothing to embed or store.
	ErrNoChunks = errors.New("no valid text chunks extracted from paper")
	// ErrInsufficientPapers signals a comparison with fewer than two retrievable papers.
	ErrInsufficientPapers = errors.New("need at least 2 papers with stored chunks")
	// ErrPaperNotFound signals that no chunks exist for the requested paper.
	ErrPaperNotFound = errors.New("paper not found")
	// ErrVectorDimMismatch signals an embedding dimension configuration error.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a language model failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrExtractionFailed signals a document extraction service failure.
	ErrExtractionFailed = errors.New("document extraction failed")
)
