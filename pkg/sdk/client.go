package paperdex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/chunker"
	"github.com/scholarlabs/paperdex/internal/db"
	dbRedis "github.com/scholarlabs/paperdex/internal/db/redis"
	"github.com/scholarlabs/paperdex/internal/domain"
	chunkrepo "github.com/scholarlabs/paperdex/internal/repository/chunk"
	"github.com/scholarlabs/paperdex/internal/repository/embcache"
	"github.com/scholarlabs/paperdex/internal/synthesis"
	"github.com/scholarlabs/paperdex/internal/transport/grobid"
	openaiTransport "github.com/scholarlabs/paperdex/internal/transport/openai"
	compareuc "github.com/scholarlabs/paperdex/internal/usecase/compare"
	healthuc "github.com/scholarlabs/paperdex/internal/usecase/health"
	ingestuc "github.com/scholarlabs/paperdex/internal/usecase/ingest"
	libraryuc "github.com/scholarlabs/paperdex/internal/usecase/library"
	queryuc "github.com/scholarlabs/paperdex/internal/usecase/query"
	topicuc "github.com/scholarlabs/paperdex/internal/usecase/topic"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type extractorUseCase interface {
	ProcessFulltext(ctx context.Context, pdf io.Reader, filename string) (domain.Extraction, error)
}

type ingestUseCase interface {
	Ingest(ctx context.Context, paper domain.Paper) (ingestuc.Result, error)
}

type queryUseCase interface {
	Ask(ctx context.Context, question string, topK int, paperIDs []string) (domain.Answer, error)
}

type compareUseCase interface {
	Compare(ctx context.Context, paperIDs, aspects []string) (domain.Comparison, error)
}

type libraryUseCase interface {
	ListPapers(ctx context.Context) ([]domain.PaperInfo, error)
	DeletePaper(ctx context.Context, paperID string) (int, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

type topicUseCase interface {
	Analyze(ctx context.Context, topic string, topK int, paperIDs []string) (domain.StanceReport, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the paperdex SDK entry point.
type Client struct {
	store      db.Store
	extractSvc extractorUseCase
	ingestSvc  ingestUseCase
	querySvc   queryUseCase
	compareSvc compareUseCase
	librarySvc libraryUseCase
	topicSvc   topicUseCase
	healthSvc  healthUseCase
	obs        *observer
	now        func() time.Time
}

// New creates a paperdex Client, connects to the database, and ensures
// the chunk index exists. The provided context is used for the initial
// readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embedModel:      "BAAI/bge-small-en-v1.5",
		embedDimensions: 384,
		llmModel:        "gpt-4o-mini",
		temperature:     0.3,
		maxTokens:       1024,
		chunkSize:       500,
		chunkOverlap:    50,
		topK:            5,
		maxTopK:         50,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("paperdex: database address required (use WithRedis)")
	}
	if cfg.grobidURL == "" {
		return nil, errors.New("paperdex: extraction service URL required (use WithGrobid)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("paperdex: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("paperdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return wireClient(ctx, store, cfg, obs)
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	// Internal services log through zap; the SDK's own observability
	// is the slog/prometheus observer.
	nop := zap.NewNop()

	var embedChain interface {
		domain.Embedder
		domain.BatchEmbedder
	}
	if cfg.embedder != nil {
		embedChain = &embedderAdapter{inner: cfg.embedder}
	} else {
		embedChain = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.embedAPIKey,
			BaseURL:    cfg.embedBaseURL,
			Model:      cfg.embedModel,
			Dimensions: cfg.embedDimensions,
			Logger:     nop,
		})
	}
	if cfg.cacheTTL > 0 {
		embedChain = embcache.New(embedChain, store, cfg.embedModel, cfg.cacheTTL, nil, nop)
	}

	instruction := cfg.queryInstruction
	if instruction == "" {
		instruction = domain.QueryInstructionFor(cfg.embedModel)
	}
	var queryEmbedder domain.Embedder = embedChain
	if instruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(embedChain, instruction)
	}

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  cfg.llmAPIKey,
		BaseURL: cfg.llmBaseURL,
		Model:   cfg.llmModel,
		Logger:  nop,
	})

	grobidClient := grobid.NewClient(&grobid.Config{
		URL:     cfg.grobidURL,
		Timeout: cfg.grobidTimeout,
		Logger:  nop,
	})

	chunkRepo := chunkrepo.New(store, chunkrepo.Config{
		KeyPrefix: cfg.keyPrefix,
		VectorDim: cfg.embedDimensions,
		HNSW: chunkrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		},
	})
	if err := chunkRepo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("paperdex: ensure chunk index: %w", err)
	}

	synth := synthesis.New(generator, synthesis.Config{
		Temperature: cfg.temperature,
		MaxTokens:   cfg.maxTokens,
	}, nop)

	retrievalCfg := queryuc.Config{TopK: cfg.topK, MaxTopK: cfg.maxTopK}

	return &Client{
		store:      store,
		extractSvc: grobidClient,
		ingestSvc: ingestuc.New(
			chunkRepo, embedChain,
			chunker.New(cfg.chunkSize, cfg.chunkOverlap), nop,
		),
		querySvc:   queryuc.New(queryEmbedder, chunkRepo, synth, retrievalCfg, nop),
		compareSvc: compareuc.New(chunkRepo, synth, nop),
		librarySvc: libraryuc.New(chunkRepo, libraryuc.ModelInfo{
			EmbeddingModel:     cfg.embedModel,
			EmbeddingDimension: cfg.embedDimensions,
			LLMModel:           cfg.llmModel,
		}, nop),
		topicSvc: topicuc.New(queryEmbedder, chunkRepo, synth,
			topicuc.Config{TopK: cfg.topK, MaxTopK: cfg.maxTopK}, nop),
		healthSvc: healthuc.New(store, nil, grobidClient),
		obs:       obs,
		now:       time.Now,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
