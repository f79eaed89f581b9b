// Package grobid extracts structured text from PDF documents via a
// GROBID service's TEI XML API.
package grobid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/domain"
)

const fulltextPath = "/api/processFulltextDocument"

// Client talks to a GROBID service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the GROBID connection settings.
type Config struct {
	URL     string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a GROBID client. A zero timeout defaults to two minutes,
// which full-text processing of large PDFs can genuinely need.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.URL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ProcessFulltext posts the PDF to processFulltextDocument and parses the
// TEI response into extraction output. All failures wrap
// domain.ErrExtractionFailed.
func (c *Client) ProcessFulltext(ctx context.Context, pdf io.Reader, filename string) (domain.Extraction, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("input", filename)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("create form file: %w", domain.ErrExtractionFailed)
	}
	if _, err := io.Copy(part, pdf); err != nil {
		return domain.Extraction{}, fmt.Errorf("copy pdf: %w", domain.ErrExtractionFailed)
	}
	if err := mw.Close(); err != nil {
		return domain.Extraction{}, fmt.Errorf("close multipart: %w", domain.ErrExtractionFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+fulltextPath, &body)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("build request: %w", domain.ErrExtractionFailed)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("grobid request: %v: %w", err, domain.ErrExtractionFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Extraction{}, fmt.Errorf("grobid returned %d: %s: %w",
			resp.StatusCode, string(snippet), domain.ErrExtractionFailed)
	}

	tei, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("read response: %w", domain.ErrExtractionFailed)
	}

	extraction, err := ParseTEI(tei)
	if err != nil {
		return domain.Extraction{}, err
	}

	c.logger.Debug("grobid extraction complete",
		zap.String("filename", filename),
		zap.String("title", extraction.Title),
		zap.Int("sections", len(extraction.Sections)),
		zap.Duration("duration", time.Since(start)))

	return extraction, nil
}

// HealthCheck hits the GROBID version endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("grobid unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("grobid version returned %d", resp.StatusCode)
	}
	return nil
}
