package paperdex

import (
	"time"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// UploadResult describes an ingested paper.
type UploadResult struct {
	PaperID           string
	Title             string
	ChunksProcessed   int
	SectionsProcessed int
	Filename          string
	UploadDate        time.Time
}

// PaperInfo is the per-paper summary of the stored corpus.
type PaperInfo struct {
	PaperID    string
	Title      string
	Authors    string
	Year       string
	UploadDate string
}

// QueryOptions scope a question or topic analysis.
// Zero TopK uses the configured default; empty PaperIDs searches all papers.
type QueryOptions struct {
	TopK     int
	PaperIDs []string
}

// Citation points an answer's [n] marker back at a source context.
type Citation struct {
	Number     int
	PaperTitle string
	Section    string
	Page       string
	PaperID    string
}

// Context is a retrieved text excerpt grounding an answer.
type Context struct {
	Text      string
	PaperID   string
	Title     string
	Section   string
	Page      string
	Relevance float64
}

// Answer is a synthesized, citation-grounded response. A generation
// failure yields a degraded Answer with GenerationError set; the
// retrieved contexts are still returned.
type Answer struct {
	Text            string
	Citations       []Citation
	Contexts        []Context
	ContextsUsed    int
	Model           string
	GenerationError string
}

// PaperSummary is the representative record of one compared paper.
type PaperSummary struct {
	PaperID  string
	Title    string
	Authors  string
	Year     string
	Abstract string
	Sections int
}

// Comparison is a synthesized multi-paper comparison.
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

// StanceReport classifies the corpus's position toward a topic.
type StanceReport struct {
	Stance          string // Positive, Negative, Neutral, Mixed
	Summary         string
	Evidence        []StanceEvidence
	Model           string
	GenerationError string
}

// Stats describes the current state of the paper corpus.
type Stats struct {
	TotalPapers        int
	TotalChunks        int
	EmbeddingModel     string
	EmbeddingDimension int
	LLMModel           string
}

func fromDomainAnswer(a domain.Answer) Answer {
	citations := make([]Citation, len(a.Citations))
	for i, c := range a.Citations {
		citations[i] = Citation{
			Number:     c.Number,
			PaperTitle: c.PaperTitle,
			Section:    c.Section,
			Page:       c.Page,
			PaperID:    c.PaperID,
		}
	}
	contexts := make([]Context, len(a.Contexts))
	for i, c := range a.Contexts {
		contexts[i] = Context{
			Text:      c.Text,
			PaperID:   c.Metadata.PaperID,
			Title:     c.Metadata.Title,
			Section:   c.Metadata.Section,
			Page:      c.Metadata.Page,
			Relevance: c.RelevanceScore,
		}
	}
	return Answer{
		Text:            a.Text,
		Citations:       citations,
		Contexts:        contexts,
		ContextsUsed:    a.ContextsUsed,
		Model:           a.Model,
		GenerationError: a.GenerationError,
	}
}

func fromDomainComparison(c domain.Comparison) Comparison {
	papers := make([]PaperSummary, len(c.Papers))
	for i, p := range c.Papers {
		papers[i] = PaperSummary{
			PaperID:  p.PaperID,
			Title:    p.Title,
			Authors:  p.Authors,
			Year:     p.Year,
			Abstract: p.Abstract,
			Sections: p.Sections,
		}
	}
	return Comparison{
		Text:            c.Text,
		Papers:          papers,
		PapersCompared:  c.PapersCompared,
		Aspects:         c.Aspects,
		Model:           c.Model,
		GenerationError: c.GenerationError,
	}
}

func fromDomainStance(r domain.StanceReport) StanceReport {
	evidence := make([]StanceEvidence, len(r.Evidence))
	for i, e := range r.Evidence {
		evidence[i] = StanceEvidence{
			Text:      e.Text,
			Section:   e.Section,
			Page:      e.Page,
			Relevance: e.Relevance,
		}
	}
	return StanceReport{
		Stance:          r.Stance,
		Summary:         r.Summary,
		Evidence:        evidence,
		Model:           r.Model,
		GenerationError: r.GenerationError,
	}
}
