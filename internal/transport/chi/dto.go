package chi

import (
	"github.com/scholarlabs/paperdex/internal/domain"
	"github.com/scholarlabs/paperdex/internal/usecase/health"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type queryRequest struct {
	Query    string   `json:"query"`
	TopK     int      `json:"top_k"`
	PaperIDs []string `json:"paper_ids"`
}

type compareRequest struct {
	PaperIDs []string `json:"paper_ids"`
	Aspects  []string `json:"aspects"`
}

type topicRequest struct {
	Topic    string   `json:"topic"`
	TopK     int      `json:"top_k"`
	PaperIDs []string `json:"paper_ids"`
}

type uploadResponse struct {
	PaperID           string `json:"paper_id"`
	Title             string `json:"title"`
	ChunksProcessed   int    `json:"chunks_processed"`
	SectionsProcessed int    `json:"sections_processed"`
	Filename          string `json:"filename"`
	UploadDate        string `json:"upload_date"`
}

type papersResponse struct {
	Papers []domain.PaperInfo `json:"papers"`
	Total  int                `json:"total"`
}

type deleteResponse struct {
	PaperID       string `json:"paper_id"`
	ChunksDeleted int    `json:"chunks_deleted"`
}

type healthResponse struct {
	Status string                        `json:"status"`
	Checks map[string]health.CheckResult `json:"checks"`
}

type contextResponse struct {
	Text           string  `json:"text"`
	PaperID        string  `json:"paper_id"`
	Title          string  `json:"title"`
	Section        string  `json:"section"`
	Page           string  `json:"page"`
	RelevanceScore float64 `json:"relevance_score"`
}

type answerResponse struct {
	Answer       string            `json:"answer"`
	Citations    []domain.Citation `json:"citations"`
	Contexts     []contextResponse `json:"contexts"`
	ContextsUsed int               `json:"contexts_used"`
	Model        string            `json:"model,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type paperSummaryResponse struct {
	PaperID  string `json:"paper_id"`
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Year     string `json:"year"`
	Abstract string `json:"abstract"`
	Sections int    `json:"sections"`
}

type comparisonResponse struct {
	Comparison     string                 `json:"comparison"`
	Papers         []paperSummaryResponse `json:"papers"`
	PapersCompared int                    `json:"papers_compared"`
	Aspects        []string               `json:"aspects"`
	Model          string                 `json:"model,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

type evidenceResponse struct {
	Text      string  `json:"text"`
	Section   string  `json:"section"`
	Page      string  `json:"page"`
	Relevance float64 `json:"relevance"`
}

type stanceResponse struct {
	Stance   string             `json:"stance"`
	Summary  string             `json:"summary"`
	Evidence []evidenceResponse `json:"evidence"`
	Model    string             `json:"model,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func answerToResponse(a domain.Answer) answerResponse {
	contexts := make([]contextResponse, len(a.Contexts))
	for i, c := range a.Contexts {
		contexts[i] = contextResponse{
			Text:           c.Text,
			PaperID:        c.Metadata.PaperID,
			Title:          c.Metadata.Title,
			Section:        c.Metadata.Section,
			Page:           c.Metadata.Page,
			RelevanceScore: c.RelevanceScore,
		}
	}

	citations := a.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}

	return answerResponse{
		Answer:       a.Text,
		Citations:    citations,
		Contexts:     contexts,
		ContextsUsed: a.ContextsUsed,
		Model:        a.Model,
		Error:        a.GenerationError,
	}
}

func comparisonToResponse(c domain.Comparison) comparisonResponse {
	papers := make([]paperSummaryResponse, len(c.Papers))
	for i, p := range c.Papers {
		papers[i] = paperSummaryResponse{
			PaperID:  p.PaperID,
			Title:    p.Title,
			Authors:  p.Authors,
			Year:     p.Year,
			Abstract: p.Abstract,
			Sections: p.Sections,
		}
	}

	return comparisonResponse{
		Comparison:     c.Text,
		Papers:         papers,
		PapersCompared: c.PapersCompared,
		Aspects:        c.Aspects,
		Model:          c.Model,
		Error:          c.GenerationError,
	}
}

func stanceToResponse(r domain.StanceReport) stanceResponse {
	evidence := make([]evidenceResponse, len(r.Evidence))
	for i, e := range r.Evidence {
		evidence[i] = evidenceResponse{
			Text:      e.Text,
			Section:   e.Section,
			Page:      e.Page,
			Relevance: e.Relevance,
		}
	}

	return stanceResponse{
		Stance:   r.Stance,
		Summary:  r.Summary,
		Evidence: evidence,
		Model:    r.Model,
		Error:    r.GenerationError,
	}
}
