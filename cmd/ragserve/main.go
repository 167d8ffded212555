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

	"github.com/kailas-cloud/ragserve/internal/chunker"
	"github.com/kailas-cloud/ragserve/internal/config"
	dbQdrant "github.com/kailas-cloud/ragserve/internal/db/qdrant"
	logpkg "github.com/kailas-cloud/ragserve/internal/logger"
	"github.com/kailas-cloud/ragserve/internal/metrics"
	corpusrepo "github.com/kailas-cloud/ragserve/internal/repository/corpus"
	chiTransport "github.com/kailas-cloud/ragserve/internal/transport/chi"
	"github.com/kailas-cloud/ragserve/internal/transport/fetch"
	openaiTransport "github.com/kailas-cloud/ragserve/internal/transport/openai"
	answeruc "github.com/kailas-cloud/ragserve/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/ragserve/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/ragserve/internal/usecase/ingest"
	"github.com/kailas-cloud/ragserve/internal/version"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
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

	logger.Info("Starting ragserve API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_host", cfg.Database.Host),
		zap.Int("db_port", cfg.Database.Port),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterExternalMetrics()

	store := dbQdrant.NewStore(dbQdrant.Config{
		Host:   cfg.Database.Host,
		Port:   cfg.Database.Port,
		APIKey: cfg.Database.APIKey,
	})

	// Wait for the vector database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector database not ready", zap.Error(err))
	}
	logger.Info("Connected to vector database")

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.Embedding.Model,
		Dimensions: cfg.OpenAI.Embedding.Dimensions,
		Logger:     logger,
	})
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Generation.Model,
		Temperature: cfg.OpenAI.Generation.Temperature,
		MaxTokens:   cfg.OpenAI.Generation.MaxTokens,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.OpenAI.Embedding.Model),
		zap.Int("dimensions", cfg.OpenAI.Embedding.Dimensions),
		zap.String("generation_model", cfg.OpenAI.Generation.Model),
	)

	userAgent := "ragserve/" + version.Version
	if cfg.Fetch.UserAgentSuffix != "" {
		userAgent += " " + cfg.Fetch.UserAgentSuffix
	}
	fetcher := fetch.New(fetch.Config{
		Timeout:        time.Duration(cfg.Fetch.TimeoutSec) * time.Second,
		RequestsPerSec: cfg.Fetch.RequestsPerSec,
		MaxBodyBytes:   cfg.Fetch.MaxBodyBytes,
		UserAgent:      userAgent,
	})

	splitter := chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	corpus := corpusrepo.New(store, cfg.Database.CollectionPrefix, cfg.OpenAI.Embedding.Dimensions)

	ingestSvc := ingestuc.New(corpus, fetcher, splitter, embedder).
		WithMaxURLs(cfg.Ingest.MaxURLsPerReq)
	answerSvc := answeruc.New(corpus, embedder, generator).
		WithTopK(cfg.Answer.TopK)
	healthSvc := healthuc.New(store, embedder)

	server := chiTransport.NewServer(ingestSvc, answerSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.StripSlashes)
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

			// Set X-Request-ID in response header
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
