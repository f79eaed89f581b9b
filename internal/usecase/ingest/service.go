// Package ingest turns an extracted paper into embedded, stored chunks.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
	"github.com/scholarlabs/paperdex/internal/metrics"
)

// AbstractSection is the synthetic section name the abstract is stored
// under. Comparison looks it up case-insensitively.
const AbstractSection = "abstract"

// Result reports what one ingestion stored.
type Result struct {
	PaperID           string `json:"paper_id"`
	Title             string `json:"title"`
	ChunksProcessed   int    `json:"chunks_processed"`
	SectionsProcessed int    `json:"sections_processed"`
}

// Service runs the ingestion pipeline: section assembly, chunking,
// batch embedding, storage.
type Service struct {
	chunks   ChunkWriter
	embed    Embedder
	splitter Splitter
	logger   *zap.Logger
}

// New creates an ingestion service.
func New(chunks ChunkWriter, embed Embedder, splitter Splitter, logger *zap.Logger) *Service {
	return &Service{chunks: chunks, embed: embed, splitter: splitter, logger: logger}
}

// Ingest chunks and embeds every section of the paper and stores the
// result. The abstract is prepended as its own section so retrieval and
// comparison can reach it. Returns domain.ErrNoChunks when chunking
// yields nothing to store.
func (s *Service) Ingest(ctx context.Context, paper domain.Paper) (Result, error) {
	if paper.ID == "" {
		return Result{}, domain.ErrMissingPaperID
	}

	sections := assembleSections(paper)
	uploadDate := paper.UploadedAt.Format(time.RFC3339)

	var chunks []domain.Chunk
	for _, section := range sections {
		if strings.TrimSpace(section.Text) == "" {
			continue
		}

		for i, text := range s.splitter.Split(section.Text, section.Name) {
			chunks = append(chunks, domain.Chunk{
				ID:   domain.ChunkID(paper.ID, section.Name, i),
				Text: text,
				Metadata: domain.ChunkMetadata{
					PaperID:    paper.ID,
					Title:      titleOrUnknown(paper.Title),
					Authors:    paper.Authors,
					Year:       paper.Year,
					Section:    section.Name,
					Page:       section.Page,
					ChunkIndex: i,
					UploadDate: uploadDate,
				},
			})
		}
	}

	if len(chunks) == 0 {
		return Result{PaperID: paper.ID, Title: paper.Title}, domain.ErrNoChunks
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embedded, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return Result{PaperID: paper.ID}, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embedded.Embeddings) != len(chunks) {
		return Result{PaperID: paper.ID}, fmt.Errorf("embedded %d of %d chunks: %w",
			len(embedded.Embeddings), len(chunks), domain.ErrEmbeddingProviderError)
	}
	for i := range chunks {
		chunks[i].Vector = embedded.Embeddings[i]
	}

	if err := s.chunks.Add(ctx, chunks); err != nil {
		return Result{PaperID: paper.ID}, fmt.Errorf("store chunks: %w", err)
	}

	metrics.PapersIngestedTotal.Inc()
	metrics.ChunksIngestedTotal.Add(float64(len(chunks)))

	s.logger.Info("paper ingested",
		zap.String("paper_id", paper.ID),
		zap.String("title", paper.Title),
		zap.Int("chunks", len(chunks)),
		zap.Int("sections", len(sections)),
		zap.Int("embedding_tokens", embedded.TotalTokens))

	return Result{
		PaperID:           paper.ID,
		Title:             paper.Title,
		ChunksProcessed:   len(chunks),
		SectionsProcessed: len(sections),
	}, nil
}

// assembleSections prepends the abstract as a section of its own, then
// the extracted body sections. Repeated section names (extraction names
// every unheaded division "Body") are disambiguated so per-section chunk
// IDs never collide across sections.
func assembleSections(paper domain.Paper) []domain.Section {
	var sections []domain.Section
	if strings.TrimSpace(paper.Abstract) != "" {
		sections = append(sections, domain.Section{
			Name: AbstractSection,
			Text: paper.Abstract,
			Page: "N/A",
		})
	}
	sections = append(sections, paper.Sections...)

	counts := make(map[string]int)
	for i := range sections {
		name := sections[i].Name
		counts[name]++
		if counts[name] == 1 {
			continue
		}
		renamed := fmt.Sprintf("%s %d", name, counts[name])
		for counts[renamed] > 0 {
			counts[name]++
			renamed = fmt.Sprintf("%s %d", name, counts[name])
		}
		counts[renamed] = 1
		sections[i].Name = renamed
	}
	return sections
}

func titleOrUnknown(title string) string {
	if title == "" {
		return "Unknown"
	}
	return title
}
