package paperdex

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// UploadPDF extracts, chunks, embeds, and stores a PDF document.
// The paper identity is derived from the filename and upload time, so
// uploading the same file twice produces two distinct papers.
func (c *Client) UploadPDF(ctx context.Context, pdf io.Reader, filename string) (_ UploadResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upload_pdf", start, err) }()

	filename = filepath.Base(filename)

	extraction, err := c.extractSvc.ProcessFulltext(ctx, pdf, filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload pdf: %w", err)
	}

	uploadedAt := c.now().UTC()
	paper := domain.Paper{
		ID:         domain.PaperID(filename, uploadedAt),
		Filename:   filename,
		Title:      extraction.Title,
		Authors:    extraction.Authors,
		Year:       extraction.Year,
		Abstract:   extraction.Abstract,
		Sections:   extraction.Sections,
		References: extraction.References,
		UploadedAt: uploadedAt,
	}

	result, err := c.ingestSvc.Ingest(ctx, paper)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload pdf: %w", err)
	}

	return UploadResult{
		PaperID:           result.PaperID,
		Title:             result.Title,
		ChunksProcessed:   result.ChunksProcessed,
		SectionsProcessed: result.SectionsProcessed,
		Filename:          filename,
		UploadDate:        uploadedAt,
	}, nil
}

// Papers lists all stored papers.
func (c *Client) Papers(ctx context.Context) (_ []PaperInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("papers", start, err) }()

	papers, err := c.librarySvc.ListPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}

	out := make([]PaperInfo, len(papers))
	for i, p := range papers {
		out[i] = PaperInfo{
			PaperID:    p.PaperID,
			Title:      p.Title,
			Authors:    p.Authors,
			Year:       p.Year,
			UploadDate: p.UploadDate,
		}
	}
	return out, nil
}

// DeletePaper removes a paper and all its chunks, returning the number
// of chunks deleted.
func (c *Client) DeletePaper(ctx context.Context, paperID string) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_paper", start, err) }()

	deleted, err := c.librarySvc.DeletePaper(ctx, paperID)
	if err != nil {
		return 0, fmt.Errorf("delete paper: %w", err)
	}
	return deleted, nil
}

// Stats reports corpus size and model configuration.
func (c *Client) Stats(ctx context.Context) (_ Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	stats, err := c.librarySvc.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return Stats{
		TotalPapers:        stats.TotalPapers,
		TotalChunks:        stats.TotalChunks,
		EmbeddingModel:     stats.EmbeddingModel,
		EmbeddingDimension: stats.EmbeddingDimension,
		LLMModel:           stats.LLMModel,
	}, nil
}
