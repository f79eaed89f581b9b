package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/scholarlabs/paperdex/internal/chunker"
	"github.com/scholarlabs/paperdex/internal/config"
	dbRedis "github.com/scholarlabs/paperdex/internal/db/redis"
	"github.com/scholarlabs/paperdex/internal/domain"
	logpkg "github.com/scholarlabs/paperdex/internal/logger"
	"github.com/scholarlabs/paperdex/internal/metrics"
	chunkrepo "github.com/scholarlabs/paperdex/internal/repository/chunk"
	"github.com/scholarlabs/paperdex/internal/repository/embcache"
	"github.com/scholarlabs/paperdex/internal/synthesis"
	chiTransport "github.com/scholarlabs/paperdex/internal/transport/chi"
	"github.com/scholarlabs/paperdex/internal/transport/grobid"
	openaiTransport "github.com/scholarlabs/paperdex/internal/transport/openai"
	compareuc "github.com/scholarlabs/paperdex/internal/usecase/compare"
	healthuc "github.com/scholarlabs/paperdex/internal/usecase/health"
	ingestuc "github.com/scholarlabs/paperdex/internal/usecase/ingest"
	libraryuc "github.com/scholarlabs/paperdex/internal/usecase/library"
	queryuc "github.com/scholarlabs/paperdex/internal/usecase/query"
	topicuc "github.com/scholarlabs/paperdex/internal/usecase/topic"
	"github.com/scholarlabs/paperdex/internal/version"
)

// embedder is the full embedding surface shared by ingestion (batch)
// and retrieval (single query).
type embedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

func main() {
	// Local overrides from .env, if present
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting paperdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("grobid_url", cfg.Grobid.URL),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRAGMetrics()

	// Embedder chain: OpenAI-compatible provider -> cache -> query instruction.
	// Documents are embedded without an instruction prefix; queries get one
	// when configured (or auto-detected for BGE models).
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	var docEmbedder embedder = base
	if cfg.Embedding.CacheTTLSec > 0 {
		docEmbedder = embcache.New(
			base, store, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	instruction := cfg.Embedding.QueryInstruction
	if instruction == "" {
		instruction = domain.QueryInstructionFor(cfg.Embedding.Model)
	}
	var queryEmbedder domain.Embedder = docEmbedder
	if instruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(docEmbedder, instruction)
	}
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cached", cfg.Embedding.CacheTTLSec > 0),
		zap.Bool("query_instruction", instruction != ""),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Logger:  logger,
	})

	grobidClient := grobid.NewClient(&grobid.Config{
		URL:     cfg.Grobid.URL,
		Timeout: time.Duration(cfg.Grobid.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	chunkRepo := chunkrepo.New(store, chunkrepo.Config{
		KeyPrefix: cfg.Storage.KeyPrefix,
		VectorDim: cfg.Embedding.Dimensions,
		HNSW: chunkrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		},
	})
	if err := chunkRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure chunk index", zap.Error(err))
	}

	synth := synthesis.New(generator, synthesis.Config{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)

	// Use case services
	ingestSvc := ingestuc.New(
		chunkRepo, docEmbedder,
		chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		logger,
	)
	retrievalCfg := queryuc.Config{TopK: cfg.Retrieval.TopK, MaxTopK: cfg.Retrieval.MaxTopK}
	querySvc := queryuc.New(queryEmbedder, chunkRepo, synth, retrievalCfg, logger)
	compareSvc := compareuc.New(chunkRepo, synth, logger)
	librarySvc := libraryuc.New(chunkRepo, libraryuc.ModelInfo{
		EmbeddingModel:     cfg.Embedding.Model,
		EmbeddingDimension: cfg.Embedding.Dimensions,
		LLMModel:           cfg.LLM.Model,
	}, logger)
	topicSvc := topicuc.New(queryEmbedder, chunkRepo, synth,
		topicuc.Config{TopK: cfg.Retrieval.TopK, MaxTopK: cfg.Retrieval.MaxTopK},
		logger,
	)
	healthSvc := healthuc.New(store, base, grobidClient)

	server := chiTransport.NewServer(
		grobidClient, ingestSvc, querySvc, compareSvc, librarySvc, topicSvc, healthSvc,
		chiTransport.UploadConfig{
			Dir:         cfg.Storage.UploadDir,
			MaxBytes:    int64(cfg.Ingest.MaxUploadMB) << 20,
			KeepUploads: cfg.Storage.KeepUploads,
		},
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
