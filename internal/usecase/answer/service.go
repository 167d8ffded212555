package answer

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ragserve/internal/domain"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 4

// Answer is the generated response with its source attribution.
type Answer struct {
	Text    string
	Sources []string // distinct source URLs of retrieved chunks, rank order
}

// Service answers questions over an ingested database: embed the question,
// retrieve nearest chunks, assemble the prompt, generate.
type Service struct {
	corpus Corpus
	embed  Embedder
	gen    Generator
	topK   int
}

// New creates an answer service.
func New(corpus Corpus, embed Embedder, gen Generator) *Service {
	return &Service{corpus: corpus, embed: embed, gen: gen, topK: DefaultTopK}
}

// WithTopK configures the retrieval depth.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// Ask answers the question against the database. The database must exist;
// zero retrieval hits still run generation with an empty context so the
// model declines per its instruction instead of the service erroring.
func (s *Service) Ask(
	ctx context.Context, databaseID, question string, history []domain.Exchange,
) (Answer, error) {
	exists, err := s.corpus.Exists(ctx, databaseID)
	if err != nil {
		return Answer{}, fmt.Errorf("check database: %w", err)
	}
	if !exists {
		return Answer{}, fmt.Errorf("database %q: %w", databaseID, domain.ErrNotFound)
	}

	embedded, err := s.embed.Embed(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(embedded.TotalTokens)

	chunks, err := s.corpus.Search(ctx, databaseID, embedded.Embedding, s.topK)
	if err != nil {
		return Answer{}, fmt.Errorf("search: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	result, err := s.gen.Generate(ctx, domain.Prompt{
		System:   fmt.Sprintf(systemTemplate, buildContext(texts)),
		History:  history,
		Question: question,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(result.TotalTokens)

	return Answer{Text: result.Text, Sources: distinctSources(chunks)}, nil
}

// distinctSources returns unique source URLs preserving rank order.
func distinctSources(chunks []domain.ScoredChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	var sources []string
	for _, c := range chunks {
		if c.Source == "" {
			continue
		}
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		sources = append(sources, c.Source)
	}
	return sources
}
