package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragserve/internal/domain"
	logpkg "github.com/kailas-cloud/ragserve/internal/logger"
	answeruc "github.com/kailas-cloud/ragserve/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/ragserve/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/ragserve/internal/usecase/ingest"
)

// Ingestor is the document lifecycle surface the server needs.
type Ingestor interface {
	CreateDatabase(ctx context.Context, databaseID string, urls []string) ([]ingestuc.Result, error)
	AddDocument(ctx context.Context, databaseID, url string) (int, error)
	DeleteDocument(ctx context.Context, databaseID, url string) error
}

// Answerer answers questions against an ingested database.
type Answerer interface {
	Ask(ctx context.Context, databaseID, question string, history []domain.Exchange) (answeruc.Answer, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	ingest        Ingestor
	answer        Answerer
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(ingest Ingestor, answer Answerer, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		ingest: ingest,
		answer: answer,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeDatabaseNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeDatabaseAlreadyExists),
		sentinelHandler(domain.ErrFetchFailed, http.StatusBadGateway, CodeFetchFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeGenerationProviderError),
	}
	return s
}

// Routes registers all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/database", s.CreateDatabase)
	r.Post("/question", s.Question)
	r.Put("/add_document", s.AddDocument)
	r.Post("/add_document", s.AddDocument)
	r.Delete("/delete_document", s.DeleteDocument)
}

// CreateDatabase handles POST /database.
func (s *Server) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	var req createDatabaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.DatabaseID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "database_id is required")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "urls must not be empty")
		return
	}
	for i, u := range req.URLs {
		if u == "" {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				"urls["+strconv.Itoa(i)+"] must not be empty")
			return
		}
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.ingest.CreateDatabase(ctx, req.DatabaseID, req.URLs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	succeeded, failed := 0, 0
	docs := make([]documentResult, len(results))
	for i, res := range results {
		docs[i] = documentResult{URL: res.URL, Chunks: res.Chunks}
		if res.Err != nil {
			docs[i].Error = safeDomainMessage(res.Err)
			failed++
		} else {
			succeeded++
		}
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, createDatabaseResponse{
		DatabaseID: req.DatabaseID,
		Documents:  docs,
		Succeeded:  succeeded,
		Failed:     failed,
	})
}

// Question handles POST /question.
func (s *Server) Question(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.DatabaseID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "database_id is required")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "question is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	answer, err := s.answer.Ask(ctx, req.DatabaseID, req.Question, req.ChatHistory)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, questionResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
	})
}

// AddDocument handles PUT and POST /add_document.
func (s *Server) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.DatabaseID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "database_id is required")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "url is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	chunks, err := s.ingest.AddDocument(ctx, req.DatabaseID, req.URL)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, addDocumentResponse{
		DatabaseID: req.DatabaseID,
		URL:        req.URL,
		Chunks:     chunks,
	})
}

// DeleteDocument handles DELETE /delete_document.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	var req deleteDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.DatabaseID == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "database_id is required")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "url is required")
		return
	}

	if err := s.ingest.DeleteDocument(r.Context(), req.DatabaseID, req.URL); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteDocumentResponse{
		DatabaseID: req.DatabaseID,
		URL:        req.URL,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.TokenUsage) {
	if usage == nil {
		return
	}
	if usage.EmbeddingUsed {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.GenerationUsed {
		w.Header().Set("X-Generation-Tokens", strconv.Itoa(usage.GenerationTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrFetchFailed,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// handleDomainError prefers the per-request logger so the request_id
// lands next to the error.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
