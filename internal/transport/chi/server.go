// Package chi is the HTTP transport: routing, request decoding, domain
// error mapping, and the PDF upload pipeline entry point.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
	"github.com/scholarlabs/paperdex/internal/usecase/health"
	"github.com/scholarlabs/paperdex/internal/usecase/ingest"
)

// Error codes returned in the JSON error envelope.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codePaperNotFound      = "paper_not_found"
	codeInsufficientPapers = "insufficient_papers"
	codeNoChunks           = "no_chunks_extracted"
	codeExtractionFailed   = "extraction_failed"
	codeEmbeddingProvider  = "embedding_provider_error"
	codePayloadTooLarge    = "payload_too_large"
	codeInternalError      = "internal_error"
)

// Extractor turns an uploaded PDF into structured paper content.
type Extractor interface {
	ProcessFulltext(ctx context.Context, pdf io.Reader, filename string) (domain.Extraction, error)
}

// Ingestor stores an extracted paper as embedded chunks.
type Ingestor interface {
	Ingest(ctx context.Context, paper domain.Paper) (ingest.Result, error)
}

// Asker answers a question over the corpus.
type Asker interface {
	Ask(ctx context.Context, question string, topK int, paperIDs []string) (domain.Answer, error)
}

// Comparer compares stored papers.
type Comparer interface {
	Compare(ctx context.Context, paperIDs, aspects []string) (domain.Comparison, error)
}

// Librarian manages the stored corpus.
type Librarian interface {
	ListPapers(ctx context.Context) ([]domain.PaperInfo, error)
	DeletePaper(ctx context.Context, paperID string) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// TopicAnalyzer reports the corpus's stance toward a topic.
type TopicAnalyzer interface {
	Analyze(ctx context.Context, topic string, topK int, paperIDs []string) (domain.StanceReport, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// UploadConfig controls the PDF upload pipeline.
type UploadConfig struct {
	Dir         string // spool directory for uploaded files
	MaxBytes    int64
	KeepUploads bool
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	extract       Extractor
	ingest        Ingestor
	ask           Asker
	compare       Comparer
	library       Librarian
	topics        TopicAnalyzer
	health        HealthChecker
	upload        UploadConfig
	logger        *zap.Logger
	errorHandlers []errorHandler
	now           func() time.Time
}

// NewServer creates an HTTP API server.
func NewServer(
	extract Extractor,
	ingestSvc Ingestor,
	ask Asker,
	compare Comparer,
	library Librarian,
	topics TopicAnalyzer,
	healthSvc HealthChecker,
	upload UploadConfig,
	logger *zap.Logger,
) *Server {
	s := &Server{
		extract: extract,
		ingest:  ingestSvc,
		ask:     ask,
		compare: compare,
		library: library,
		topics:  topics,
		health:  healthSvc,
		upload:  upload,
		logger:  logger,
		now:     time.Now,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrPaperNotFound, http.StatusNotFound, codePaperNotFound),
		sentinelHandler(domain.ErrMissingPaperID, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInsufficientPapers, http.StatusBadRequest, codeInsufficientPapers),
		sentinelHandler(domain.ErrNoChunks, http.StatusUnprocessableEntity, codeNoChunks),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusBadGateway, codeExtractionFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Routes mounts all API handlers on the router.
func (s *Server) Routes(r chirouter.Router) {
	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/papers", s.UploadPaper)
		r.Get("/papers", s.ListPapers)
		r.Delete("/papers/{paperID}", s.DeletePaper)
		r.Post("/query", s.Query)
		r.Post("/compare", s.Compare)
		r.Post("/topics/analyze", s.AnalyzeTopic)
		r.Get("/stats", s.Stats)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UploadPaper handles POST /api/v1/papers: spool the PDF, extract with
// GROBID, derive the paper identity, ingest.
func (s *Server) UploadPaper(w http.ResponseWriter, r *http.Request) {
	if s.upload.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.upload.MaxBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "uploaded file has no name")
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "only PDF files are accepted")
		return
	}

	spooled, err := s.spoolUpload(file)
	if err != nil {
		s.logger.Error("spool upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	defer spooled.cleanup(s.upload.KeepUploads)

	extraction, err := s.extract.ProcessFulltext(r.Context(), spooled.file, filename)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	uploadedAt := s.now().UTC()
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

	result, err := s.ingest.Ingest(r.Context(), paper)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		PaperID:           result.PaperID,
		Title:             result.Title,
		ChunksProcessed:   result.ChunksProcessed,
		SectionsProcessed: result.SectionsProcessed,
		Filename:          filename,
		UploadDate:        uploadedAt.Format(time.RFC3339),
	})
}

// spooledUpload is an uploaded PDF written to local disk under a
// collision-free name, so the multipart stream can be re-read.
type spooledUpload struct {
	file *os.File
	path string
}

func (u *spooledUpload) cleanup(keep bool) {
	_ = u.file.Close()
	if !keep {
		_ = os.Remove(u.path)
	}
}

func (s *Server) spoolUpload(src io.Reader) (*spooledUpload, error) {
	if err := os.MkdirAll(s.upload.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(s.upload.Dir, uuid.NewString()+".pdf")
	f, err := os.OpenFile(filepath.Clean(path), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	return &spooledUpload{file: f, path: path}, nil
}

// Query handles POST /api/v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}

	answer, err := s.ask.Ask(r.Context(), req.Query, req.TopK, req.PaperIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerToResponse(answer))
}

// Compare handles POST /api/v1/compare.
func (s *Server) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.PaperIDs) < 2 {
		writeError(w, http.StatusBadRequest, codeInsufficientPapers, "at least 2 paper_ids are required")
		return
	}

	comparison, err := s.compare.Compare(r.Context(), req.PaperIDs, req.Aspects)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comparisonToResponse(comparison))
}

// AnalyzeTopic handles POST /api/v1/topics/analyze.
func (s *Server) AnalyzeTopic(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "topic is required")
		return
	}

	report, err := s.topics.Analyze(r.Context(), req.Topic, req.TopK, req.PaperIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stanceToResponse(report))
}

// ListPapers handles GET /api/v1/papers.
func (s *Server) ListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.library.ListPapers(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if papers == nil {
		papers = []domain.PaperInfo{}
	}
	writeJSON(w, http.StatusOK, papersResponse{Papers: papers, Total: len(papers)})
}

// DeletePaper handles DELETE /api/v1/papers/{paperID}.
func (s *Server) DeletePaper(w http.ResponseWriter, r *http.Request) {
	paperID := chirouter.URLParam(r, "paperID")

	deleted, err := s.library.DeletePaper(r.Context(), paperID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{PaperID: paperID, ChunksDeleted: deleted})
}

// Stats handles GET /api/v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.library.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != health.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrPaperNotFound,
		domain.ErrMissingPaperID,
		domain.ErrInsufficientPapers,
		domain.ErrNoChunks,
		domain.ErrExtractionFailed,
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
