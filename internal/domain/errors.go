package domain

import "errors"

var (
	// ErrNotFound signals a missing database or document.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate database.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation signals a missing or malformed request field.
	ErrValidation = errors.New("validation failed")
	// ErrFetchFailed signals an unreachable or unparsable document URL.
	ErrFetchFailed = errors.New("document fetch failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a chat completion provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)
