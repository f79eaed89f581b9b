package paperdex

import (
	"context"
	"io"
	"time"

	"github.com/scholarlabs/paperdex/internal/domain"
	healthuc "github.com/scholarlabs/paperdex/internal/usecase/health"
	ingestuc "github.com/scholarlabs/paperdex/internal/usecase/ingest"
)

// --- extractorUseCase mock ---

type mockExtractorUC struct {
	fn func(ctx context.Context, pdf io.Reader, filename string) (domain.Extraction, error)
}

func (m *mockExtractorUC) ProcessFulltext(ctx context.Context, pdf io.Reader, filename string) (domain.Extraction, error) {
	return m.fn(ctx, pdf, filename)
}

// --- ingestUseCase mock ---

type mockIngestUC struct {
	fn func(ctx context.Context, paper domain.Paper) (ingestuc.Result, error)
}

func (m *mockIngestUC) Ingest(ctx context.Context, paper domain.Paper) (ingestuc.Result, error) {
	return m.fn(ctx, paper)
}

// --- queryUseCase mock ---

type mockQueryUC struct {
	fn func(ctx context.Context, question string, topK int, paperIDs []string) (domain.Answer, error)
}

func (m *mockQueryUC) Ask(ctx context.Context, question string, topK int, paperIDs []string) (domain.Answer, error) {
	return m.fn(ctx, question, topK, paperIDs)
}

// --- compareUseCase mock ---

type mockCompareUC struct {
	fn func(ctx context.Context, paperIDs, aspects []string) (domain.Comparison, error)
}

func (m *mockCompareUC) Compare(ctx context.Context, paperIDs, aspects []string) (domain.Comparison, error) {
	return m.fn(ctx, paperIDs, aspects)
}

// --- libraryUseCase mock ---

type mockLibraryUC struct {
	listFn   func(ctx context.Context) ([]domain.PaperInfo, error)
	deleteFn func(ctx context.Context, paperID string) (int, error)
	statsFn  func(ctx context.Context) (domain.Stats, error)
}

func (m *mockLibraryUC) ListPapers(ctx context.Context) ([]domain.PaperInfo, error) {
	return m.listFn(ctx)
}

func (m *mockLibraryUC) DeletePaper(ctx context.Context, paperID string) (int, error) {
	return m.deleteFn(ctx, paperID)
}

func (m *mockLibraryUC) Stats(ctx context.Context) (domain.Stats, error) {
	return m.statsFn(ctx)
}

// --- topicUseCase mock ---

type mockTopicUC struct {
	fn func(ctx context.Context, topic string, topK int, paperIDs []string) (domain.StanceReport, error)
}

func (m *mockTopicUC) Analyze(ctx context.Context, topic string, topK int, paperIDs []string) (domain.StanceReport, error) {
	return m.fn(ctx, topic, topK, paperIDs)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	fn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.fn(ctx)
}

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// --- helpers ---

func fixedTime() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}
