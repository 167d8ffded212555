package chi

import "github.com/kailas-cloud/ragserve/internal/domain"

// ErrorCode identifies the error class in error responses.
type ErrorCode string

// Error response codes.
const (
	CodeBadRequest              ErrorCode = "bad_request"
	CodeValidationFailed        ErrorCode = "validation_failed"
	CodeDatabaseNotFound        ErrorCode = "database_not_found"
	CodeDatabaseAlreadyExists   ErrorCode = "database_already_exists"
	CodeFetchFailed             ErrorCode = "fetch_failed"
	CodeEmbeddingProviderError  ErrorCode = "embedding_provider_error"
	CodeGenerationProviderError ErrorCode = "generation_provider_error"
	CodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Typed request/response schemas, one per endpoint.

type createDatabaseRequest struct {
	DatabaseID string   `json:"database_id"`
	URLs       []string `json:"urls"`
}

type documentResult struct {
	URL    string `json:"url"`
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
}

type createDatabaseResponse struct {
	DatabaseID string           `json:"database_id"`
	Documents  []documentResult `json:"documents"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
}

type questionRequest struct {
	DatabaseID  string            `json:"database_id"`
	Question    string            `json:"question"`
	ChatHistory []domain.Exchange `json:"chat_history"`
}

type questionResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

type addDocumentRequest struct {
	DatabaseID string `json:"database_id"`
	URL        string `json:"url"`
}

type addDocumentResponse struct {
	DatabaseID string `json:"database_id"`
	URL        string `json:"url"`
	Chunks     int    `json:"chunks"`
}

type deleteDocumentRequest struct {
	DatabaseID string `json:"database_id"`
	URL        string `json:"url"`
}

type deleteDocumentResponse struct {
	DatabaseID string `json:"database_id"`
	URL        string `json:"url"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
