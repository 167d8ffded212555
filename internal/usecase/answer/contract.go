package answer

import (
	"context"

	"github.com/kailas-cloud/ragserve/internal/domain"
)

// Corpus is the retrieval contract for question answering.
type Corpus interface {
	Exists(ctx context.Context, databaseID string) (bool, error)
	Search(ctx context.Context, databaseID string, vector []float32, topK int) ([]domain.ScoredChunk, error)
}

// Embedder vectorizes the question text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the final answer from the assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (domain.GenerationResult, error)
}
