package domain

// ChunkMetadata is the fixed metadata bundle stored alongside every chunk.
// The field set is closed: storage maps each field to a flat hash field,
// so adding one here requires a matching index/dto change.
type ChunkMetadata struct {
	PaperID    string
	Title      string
	Authors    string
	Year       string
	Section    string
	Page       string
	ChunkIndex int
	UploadDate string // RFC3339
}

// Chunk is a bounded text window derived from one section of a paper,
// carrying its own embedding and metadata.
type Chunk struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata ChunkMetadata
}

// Context is a retrieved chunk presented to the language model as
// grounding evidence for an answer.
type Context struct {
	Text           string
	Metadata       ChunkMetadata
	RelevanceScore float64
}
