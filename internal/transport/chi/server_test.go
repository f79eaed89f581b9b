package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
	"github.com/scholarlabs/paperdex/internal/usecase/health"
	"github.com/scholarlabs/paperdex/internal/usecase/ingest"
)

// --- Mocks ---

type mockExtractor struct {
	extraction domain.Extraction
	err        error
	gotName    string
	gotBytes   []byte
}

func (m *mockExtractor) ProcessFulltext(_ context.Context, pdf io.Reader, filename string) (domain.Extraction, error) {
	m.gotName = filename
	m.gotBytes, _ = io.ReadAll(pdf)
	return m.extraction, m.err
}

type mockIngestor struct {
	result   ingest.Result
	err      error
	gotPaper domain.Paper
	called   bool
}

func (m *mockIngestor) Ingest(_ context.Context, paper domain.Paper) (ingest.Result, error) {
	m.called = true
	m.gotPaper = paper
	return m.result, m.err
}

type mockAsker struct {
	answer domain.Answer
	err    error
	gotQ   string
	gotK   int
	gotIDs []string
}

func (m *mockAsker) Ask(_ context.Context, question string, topK int, paperIDs []string) (domain.Answer, error) {
	m.gotQ = question
	m.gotK = topK
	m.gotIDs = paperIDs
	return m.answer, m.err
}

type mockComparer struct {
	comparison domain.Comparison
	err        error
	called     bool
}

func (m *mockComparer) Compare(_ context.Context, _, _ []string) (domain.Comparison, error) {
	m.called = true
	return m.comparison, m.err
}

type mockLibrarian struct {
	papers    []domain.PaperInfo
	listErr   error
	deleted   int
	deleteErr error
	stats     domain.Stats
	statsErr  error
}

func (m *mockLibrarian) ListPapers(_ context.Context) ([]domain.PaperInfo, error) {
	return m.papers, m.listErr
}

func (m *mockLibrarian) DeletePaper(_ context.Context, _ string) (int, error) {
	return m.deleted, m.deleteErr
}

func (m *mockLibrarian) Stats(_ context.Context) (domain.Stats, error) {
	return m.stats, m.statsErr
}

type mockTopics struct {
	report domain.StanceReport
	err    error
}

func (m *mockTopics) Analyze(_ context.Context, _ string, _ int, _ []string) (domain.StanceReport, error) {
	return m.report, m.err
}

type mockHealth struct {
	report health.Report
}

func (m *mockHealth) Check(_ context.Context) health.Report { return m.report }

type serverMocks struct {
	extract *mockExtractor
	ingest  *mockIngestor
	ask     *mockAsker
	compare *mockComparer
	library *mockLibrarian
	topics  *mockTopics
	health  *mockHealth
}

func newTestServer(t *testing.T) (*Server, *serverMocks, http.Handler) {
	t.Helper()
	m := &serverMocks{
		extract: &mockExtractor{},
		ingest:  &mockIngestor{},
		ask:     &mockAsker{},
		compare: &mockComparer{},
		library: &mockLibrarian{},
		topics:  &mockTopics{},
		health:  &mockHealth{report: health.Report{Status: health.Healthy, Checks: map[string]health.CheckResult{"database": health.CheckOK}}},
	}
	s := NewServer(m.extract, m.ingest, m.ask, m.compare, m.library, m.topics, m.health,
		UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20}, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	r := chirouter.NewRouter()
	s.Routes(r)
	return s, m, r
}

func pdfUploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/papers", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Upload ---

func TestUploadPaper(t *testing.T) {
	s, m, router := newTestServer(t)
	m.extract.extraction = domain.Extraction{
		Title:    "Attention Is All You Need",
		Authors:  "Vaswani et al.",
		Year:     "2017",
		Abstract: "We propose the Transformer.",
		Sections: []domain.Section{{Name: "Introduction", Text: "text", Page: "1"}},
	}
	m.ingest.result = ingest.Result{
		PaperID:           domain.PaperID("attention.pdf", s.now()),
		Title:             "Attention Is All You Need",
		ChunksProcessed:   4,
		SectionsProcessed: 2,
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, pdfUploadRequest(t, "attention.pdf", []byte("%PDF-1.4 body")))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON[uploadResponse](t, rr)
	if resp.ChunksProcessed != 4 || resp.Title != "Attention Is All You Need" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Filename != "attention.pdf" {
		t.Errorf("filename = %q", resp.Filename)
	}
	if resp.UploadDate != "2024-06-01T12:00:00Z" {
		t.Errorf("upload_date = %q", resp.UploadDate)
	}

	if m.extract.gotName != "attention.pdf" {
		t.Errorf("extractor filename = %q", m.extract.gotName)
	}
	if string(m.extract.gotBytes) != "%PDF-1.4 body" {
		t.Errorf("extractor got bytes %q", m.extract.gotBytes)
	}

	paper := m.ingest.gotPaper
	if paper.ID != domain.PaperID("attention.pdf", s.now()) {
		t.Errorf("paper ID = %q", paper.ID)
	}
	if paper.Abstract != "We propose the Transformer." || len(paper.Sections) != 1 {
		t.Errorf("extraction not carried into paper: %+v", paper)
	}
}

func TestUploadPaper_RemovesSpoolFile(t *testing.T) {
	s, m, router := newTestServer(t)
	m.extract.extraction = domain.Extraction{Title: "T"}
	m.ingest.result = ingest.Result{PaperID: "x", ChunksProcessed: 1}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, pdfUploadRequest(t, "a.pdf", []byte("pdf")))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}

	entries, err := os.ReadDir(s.upload.Dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("spool file not removed: %v", entries)
	}
}

func TestUploadPaper_KeepUploads(t *testing.T) {
	s, m, router := newTestServer(t)
	s.upload.KeepUploads = true
	m.extract.extraction = domain.Extraction{Title: "T"}
	m.ingest.result = ingest.Result{PaperID: "x", ChunksProcessed: 1}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, pdfUploadRequest(t, "a.pdf", []byte("pdf")))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}

	entries, err := os.ReadDir(s.upload.Dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 kept upload, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".pdf" {
		t.Errorf("kept upload name = %q", entries[0].Name())
	}
}

func TestUploadPaper_MissingFile(t *testing.T) {
	_, _, router := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/papers", strings.NewReader("no multipart"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestUploadPaper_NonPDF(t *testing.T) {
	_, m, router := newTestServer(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, pdfUploadRequest(t, "notes.txt", []byte("text")))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if m.ingest.called {
		t.Error("ingest must not run for a rejected upload")
	}
}

func TestUploadPaper_ExtractionFailure(t *testing.T) {
	_, m, router := newTestServer(t)
	m.extract.err = domain.ErrExtractionFailed

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, pdfUploadRequest(t, "a.pdf", []byte("pdf")))

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	resp := decodeJSON[errorResponse](t, rr)
	if resp.Code != codeExtractionFailed {
		t.Errorf("code = %q", resp.Code)
	}
	if m.ingest.called {
		t.Error("ingest must not run after extraction failure")
	}
}

func TestUploadPaper_NoChunks(t *testing.T) {
	_, m, router := newTestServer(t)
	m.extract.extraction = domain.Extraction{Title: "Empty"}
	m.ingest.err = domain.ErrNoChunks

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, pdfUploadRequest(t, "a.pdf", []byte("pdf")))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rr.Code)
	}
	resp := decodeJSON[errorResponse](t, rr)
	if resp.Code != codeNoChunks {
		t.Errorf("code = %q", resp.Code)
	}
}

// --- Query ---

func TestQuery(t *testing.T) {
	_, m, router := newTestServer(t)
	m.ask.answer = domain.Answer{
		Text:         "The Transformer uses attention [1].",
		Citations:    []domain.Citation{{Number: 1, PaperTitle: "Attention"}},
		Contexts:     []domain.Context{{Text: "ctx", RelevanceScore: 0.9, Metadata: domain.ChunkMetadata{PaperID: "p1"}}},
		ContextsUsed: 1,
		Model:        "gpt-4o-mini",
	}

	body := `{"query": "How does attention work?", "top_k": 3, "paper_ids": ["p1"]}`
	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON[answerResponse](t, rr)
	if resp.Answer != "The Transformer uses attention [1]." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].Number != 1 {
		t.Errorf("citations = %+v", resp.Citations)
	}
	if len(resp.Contexts) != 1 || resp.Contexts[0].PaperID != "p1" {
		t.Errorf("contexts = %+v", resp.Contexts)
	}

	if m.ask.gotQ != "How does attention work?" || m.ask.gotK != 3 {
		t.Errorf("forwarded query %q k %d", m.ask.gotQ, m.ask.gotK)
	}
	if len(m.ask.gotIDs) != 1 || m.ask.gotIDs[0] != "p1" {
		t.Errorf("forwarded paper_ids %v", m.ask.gotIDs)
	}
}

func TestQuery_MissingQuery(t *testing.T) {
	_, _, router := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"top_k": 3}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestQuery_EmbeddingProviderDown(t *testing.T) {
	_, m, router := newTestServer(t)
	m.ask.err = domain.ErrEmbeddingProviderError

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"query": "q"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
}

// --- Compare ---

func TestCompare(t *testing.T) {
	_, m, router := newTestServer(t)
	m.compare.comparison = domain.Comparison{
		Text:           "Both rely on attention.",
		Papers:         []domain.PaperSummary{{PaperID: "p1"}, {PaperID: "p2"}},
		PapersCompared: 2,
		Aspects:        domain.DefaultComparisonAspects,
	}

	body := `{"paper_ids": ["p1", "p2"]}`
	req := httptest.NewRequest("POST", "/api/v1/compare", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON[comparisonResponse](t, rr)
	if resp.Comparison != "Both rely on attention." || resp.PapersCompared != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Aspects) != 4 {
		t.Errorf("aspects = %v", resp.Aspects)
	}
}

func TestCompare_TooFewIDs(t *testing.T) {
	_, m, router := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/compare", strings.NewReader(`{"paper_ids": ["p1"]}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if m.compare.called {
		t.Error("compare service must not run for an under-sized request")
	}
	resp := decodeJSON[errorResponse](t, rr)
	if resp.Code != codeInsufficientPapers {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestCompare_InsufficientSurviving(t *testing.T) {
	_, m, router := newTestServer(t)
	m.compare.err = domain.ErrInsufficientPapers

	req := httptest.NewRequest("POST", "/api/v1/compare", strings.NewReader(`{"paper_ids": ["p1", "ghost"]}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// --- Topics ---

func TestAnalyzeTopic(t *testing.T) {
	_, m, router := newTestServer(t)
	m.topics.report = domain.StanceReport{
		Stance:   "Positive",
		Summary:  "Papers favor attention.",
		Evidence: []domain.StanceEvidence{{Text: "evidence", Section: "results", Page: "3", Relevance: 0.8}},
	}

	req := httptest.NewRequest("POST", "/api/v1/topics/analyze", strings.NewReader(`{"topic": "attention"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON[stanceResponse](t, rr)
	if resp.Stance != "Positive" || len(resp.Evidence) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAnalyzeTopic_MissingTopic(t *testing.T) {
	_, _, router := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/topics/analyze", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// --- Library ---

func TestListPapers(t *testing.T) {
	_, m, router := newTestServer(t)
	m.library.papers = []domain.PaperInfo{{PaperID: "p1", Title: "Transformer"}}

	req := httptest.NewRequest("GET", "/api/v1/papers", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeJSON[papersResponse](t, rr)
	if resp.Total != 1 || resp.Papers[0].PaperID != "p1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestListPapers_Empty(t *testing.T) {
	_, _, router := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/papers", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"papers":[]`) {
		t.Errorf("empty list must serialize as [], got %s", rr.Body.String())
	}
}

func TestDeletePaper(t *testing.T) {
	_, m, router := newTestServer(t)
	m.library.deleted = 12

	req := httptest.NewRequest("DELETE", "/api/v1/papers/a1b2c3", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeJSON[deleteResponse](t, rr)
	if resp.PaperID != "a1b2c3" || resp.ChunksDeleted != 12 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestDeletePaper_NotFound(t *testing.T) {
	_, m, router := newTestServer(t)
	m.library.deleteErr = domain.ErrPaperNotFound

	req := httptest.NewRequest("DELETE", "/api/v1/papers/ghost", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	resp := decodeJSON[errorResponse](t, rr)
	if resp.Code != codePaperNotFound {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestStats(t *testing.T) {
	_, m, router := newTestServer(t)
	m.library.stats = domain.Stats{
		TotalPapers:        2,
		TotalChunks:        80,
		EmbeddingModel:     "BAAI/bge-small-en-v1.5",
		EmbeddingDimension: 384,
		LLMModel:           "gpt-4o-mini",
	}

	req := httptest.NewRequest("GET", "/api/v1/stats", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeJSON[domain.Stats](t, rr)
	if resp.TotalPapers != 2 || resp.EmbeddingDimension != 384 {
		t.Errorf("unexpected stats: %+v", resp)
	}
}

func TestStats_Error(t *testing.T) {
	_, m, router := newTestServer(t)
	m.library.statsErr = errors.New("redis down")

	req := httptest.NewRequest("GET", "/api/v1/stats", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	resp := decodeJSON[errorResponse](t, rr)
	if resp.Message != "internal error" {
		t.Errorf("internal details leaked: %q", resp.Message)
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	_, _, router := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeJSON[healthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["database"] != health.CheckOK {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	_, m, router := newTestServer(t)
	m.health.report = health.Report{
		Status: health.Degraded,
		Checks: map[string]health.CheckResult{"database": health.CheckError},
	}

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}
