package ragserve

import (
	"fmt"

	"github.com/kailas-cloud/ragserve/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                = domain.ErrNotFound
	ErrAlreadyExists           = domain.ErrAlreadyExists
	ErrValidation              = domain.ErrValidation
	ErrFetchFailed             = domain.ErrFetchFailed
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrGenerationProviderError = domain.ErrGenerationProviderError
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ragserve: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps the service error code back to a sentinel error.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "database_not_found":
		return ErrNotFound
	case "database_already_exists":
		return ErrAlreadyExists
	case "validation_failed":
		return ErrValidation
	case "fetch_failed":
		return ErrFetchFailed
	case "embedding_provider_error":
		return ErrEmbeddingProviderError
	case "generation_provider_error":
		return ErrGenerationProviderError
	default:
		return nil
	}
}
