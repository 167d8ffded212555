package ragserve

import "github.com/kailas-cloud/ragserve/internal/domain"

// Exchange is one question/answer turn of conversation history.
// It marshals as a two-element JSON array: ["question", "answer"].
type Exchange = domain.Exchange

// DocumentResult is the per-URL outcome of a batch ingest.
type DocumentResult struct {
	URL    string `json:"url"`
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CreateDatabaseResult is the outcome of CreateDatabase.
type CreateDatabaseResult struct {
	DatabaseID string           `json:"database_id"`
	Documents  []DocumentResult `json:"documents"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
}

// AddDocumentResult is the outcome of AddDocument.
type AddDocumentResult struct {
	DatabaseID string `json:"database_id"`
	URL        string `json:"url"`
	Chunks     int    `json:"chunks"`
}

// Answer is the outcome of Ask.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`

	// Token counts reported by the server, zero when absent.
	EmbeddingTokens  int `json:"-"`
	GenerationTokens int `json:"-"`
}

// HealthReport is the outcome of Health.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthy reports whether all components passed their checks.
func (r HealthReport) Healthy() bool { return r.Status == "ok" }

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
