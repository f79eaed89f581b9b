package compare

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// --- Mocks ---

type mockChunkReader struct {
	byPaper map[string][]domain.Chunk
	err     error
}

func (m *mockChunkReader) GetByPaper(_ context.Context, paperID string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	chunks, ok := m.byPaper[paperID]
	if !ok {
		return nil, domain.ErrPaperNotFound
	}
	return chunks, nil
}

type mockComparer struct {
	result      domain.Comparison
	called      bool
	lastPapers  []domain.PaperSummary
	lastAspects []string
}

func (m *mockComparer) Compare(_ context.Context, papers []domain.PaperSummary, aspects []string) domain.Comparison {
	m.called = true
	m.lastPapers = papers
	m.lastAspects = aspects
	return m.result
}

func paperChunks(title, year string) []domain.Chunk {
	return []domain.Chunk{
		{Text: "[Section: abstract]\nWe propose a model.", Metadata: domain.ChunkMetadata{
			Title: title, Authors: "A. Author", Year: year, Section: "abstract", ChunkIndex: 0}},
		{Text: "Introduction text.", Metadata: domain.ChunkMetadata{
			Title: title, Authors: "A. Author", Year: year, Section: "Introduction", ChunkIndex: 0}},
		{Text: "More introduction.", Metadata: domain.ChunkMetadata{
			Title: title, Authors: "A. Author", Year: year, Section: "Introduction", ChunkIndex: 1}},
	}
}

func newTestService(reader *mockChunkReader, comparer *mockComparer) *Service {
	return New(reader, comparer, zap.NewNop())
}

// --- Tests ---

func TestCompare(t *testing.T) {
	reader := &mockChunkReader{byPaper: map[string][]domain.Chunk{
		"p1": paperChunks("Transformer", "2017"),
		"p2": paperChunks("BERT", "2018"),
	}}
	comparer := &mockComparer{result: domain.Comparison{Text: "Both use attention.", PapersCompared: 2}}
	svc := newTestService(reader, comparer)

	result, err := svc.Compare(context.Background(), []string{"p1", "p2"}, []string{"methodology"})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.Text != "Both use attention." {
		t.Errorf("comparison text = %q", result.Text)
	}
	if len(comparer.lastPapers) != 2 {
		t.Fatalf("comparer got %d papers, expected 2", len(comparer.lastPapers))
	}
	if comparer.lastAspects[0] != "methodology" {
		t.Errorf("aspects not forwarded: %v", comparer.lastAspects)
	}
}

func TestCompare_Summaries(t *testing.T) {
	reader := &mockChunkReader{byPaper: map[string][]domain.Chunk{
		"p1": paperChunks("Transformer", "2017"),
		"p2": paperChunks("BERT", "2018"),
	}}
	comparer := &mockComparer{}
	svc := newTestService(reader, comparer)

	if _, err := svc.Compare(context.Background(), []string{"p1", "p2"}, nil); err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	p1 := comparer.lastPapers[0]
	if p1.PaperID != "p1" || p1.Title != "Transformer" || p1.Year != "2017" {
		t.Errorf("unexpected summary: %+v", p1)
	}
	if p1.Abstract != "[Section: abstract]\nWe propose a model." {
		t.Errorf("abstract not taken from the abstract chunk: %q", p1.Abstract)
	}
	// abstract + Introduction
	if p1.Sections != 2 {
		t.Errorf("Sections = %d, expected 2 distinct sections", p1.Sections)
	}
}

func TestCompare_MissingAbstract(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "Body.", Metadata: domain.ChunkMetadata{Title: "NoAbs", Section: "Body"}},
	}
	reader := &mockChunkReader{byPaper: map[string][]domain.Chunk{
		"p1": chunks,
		"p2": paperChunks("BERT", "2018"),
	}}
	comparer := &mockComparer{}
	svc := newTestService(reader, comparer)

	if _, err := svc.Compare(context.Background(), []string{"p1", "p2"}, nil); err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if comparer.lastPapers[0].Abstract != "" {
		t.Errorf("missing abstract must stay empty for the prompt builder to substitute: %q",
			comparer.lastPapers[0].Abstract)
	}
}

func TestCompare_TooFewRequested(t *testing.T) {
	comparer := &mockComparer{}
	svc := newTestService(&mockChunkReader{}, comparer)

	_, err := svc.Compare(context.Background(), []string{"p1"}, nil)
	if !errors.Is(err, domain.ErrInsufficientPapers) {
		t.Fatalf("expected ErrInsufficientPapers, got %v", err)
	}
	if comparer.called {
		t.Error("language model must not run for an under-sized request")
	}
}

func TestCompare_UnknownPapersSkipped(t *testing.T) {
	reader := &mockChunkReader{byPaper: map[string][]domain.Chunk{
		"p1": paperChunks("Transformer", "2017"),
	}}
	comparer := &mockComparer{}
	svc := newTestService(reader, comparer)

	_, err := svc.Compare(context.Background(), []string{"p1", "ghost"}, nil)
	if !errors.Is(err, domain.ErrInsufficientPapers) {
		t.Fatalf("expected ErrInsufficientPapers after skipping unknown paper, got %v", err)
	}
	if comparer.called {
		t.Error("language model must not run when fewer than 2 papers survive")
	}
}

func TestCompare_StorageError(t *testing.T) {
	reader := &mockChunkReader{err: errors.New("redis down")}
	svc := newTestService(reader, &mockComparer{})

	_, err := svc.Compare(context.Background(), []string{"p1", "p2"}, nil)
	if err == nil {
		t.Fatal("expected storage error to propagate")
	}
	if errors.Is(err, domain.ErrInsufficientPapers) {
		t.Error("storage failures must not masquerade as insufficient papers")
	}
}
