package domain

// NoResultsAnswer is returned when retrieval produces no contexts.
const NoResultsAnswer = "No relevant information found in the uploaded papers."

// NoAbstractPlaceholder substitutes a missing abstract in comparison prompts.
const NoAbstractPlaceholder = "No abstract available"

// DefaultComparisonAspects are used when a comparison request names none.
var DefaultComparisonAspects = []string{"methodology", "results", "conclusions", "limitations"}

// Citation points an answer's [n] marker back at a context ordinal.
type Citation struct {
	Number     int    `json:"citation_number"`
	PaperTitle string `json:"paper_title"`
	Section    string `json:"section"`
	Page       string `json:"page"`
	PaperID    string `json:"paper_id"`
}

// Answer is the synthesized result of one query session. A generation
// failure produces a degraded Answer (error description as text,
// GenerationError set) rather than an error return.
type Answer struct {
	Text            string
	Citations       []Citation
	Contexts        []Context
	ContextsUsed    int
	Model           string
	GenerationError string
}

// PaperSummary is the representative record a comparison derives per paper:
// bibliographic fields from an arbitrary chunk's metadata, abstract from
// the first chunk whose section is "abstract" (case-insensitive).
type PaperSummary struct {
	PaperID  string
	Title    string
	Authors  string
	Year     string
	Abstract string
	Sections int
}

// Comparison is the synthesized multi-paper comparison.
type Comparison struct {
	Text            string
	Papers          []PaperSummary
	PapersCompared  int
	Aspects         []string
	Model           string
	GenerationError string
}

// StanceEvidence is a retrieved excerpt supporting a stance report.
type StanceEvidence struct {
	Text      string
	Section   string
	Page      string
	Relevance float64
}

// StanceReport classifies a corpus's position toward a topic.
type StanceReport struct {
	Stance          string // Positive, Negative, Neutral, Mixed
	Summary         string
	Evidence        []StanceEvidence
	Model           string
	GenerationError string
}

// Stats describes the current state of the paper corpus.
type Stats struct {
	TotalPapers        int    `json:"total_papers"`
	TotalChunks        int    `json:"total_chunks"`
	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	LLMModel           string `json:"llm_model"`
}
