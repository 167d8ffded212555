package ingest

import (
	"context"

	"github.com/kailas-cloud/ragserve/internal/domain"
)

// Corpus is the storage contract for document ingestion.
type Corpus interface {
	Exists(ctx context.Context, databaseID string) (bool, error)
	EnsureCollection(ctx context.Context, databaseID string) error
	ReplaceDocument(ctx context.Context, databaseID, url string, chunks []domain.Chunk, vectors [][]float32) error
	DeleteDocument(ctx context.Context, databaseID, url string) error
}

// Fetcher retrieves a URL's plain text content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (domain.Page, error)
}

// Chunker splits page text into embeddable units.
type Chunker interface {
	Split(text string) []string
}

// Embedder vectorizes all chunks of one document in a single call.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
