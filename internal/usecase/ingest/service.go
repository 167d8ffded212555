package ingest

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ragserve/internal/domain"
)

// DefaultMaxURLs caps the number of URLs in one create request.
const DefaultMaxURLs = 20

// Result is the outcome of ingesting one URL within a batch.
type Result struct {
	URL    string
	Chunks int
	Err    error
}

// Service handles the document ingestion lifecycle: fetch, chunk, embed, store.
type Service struct {
	corpus  Corpus
	fetcher Fetcher
	chunker Chunker
	embed   Embedder
	maxURLs int
}

// New creates an ingest service.
func New(corpus Corpus, fetcher Fetcher, chunker Chunker, embed Embedder) *Service {
	return &Service{
		corpus:  corpus,
		fetcher: fetcher,
		chunker: chunker,
		embed:   embed,
		maxURLs: DefaultMaxURLs,
	}
}

// WithMaxURLs configures the per-request URL cap.
func (s *Service) WithMaxURLs(n int) *Service {
	if n > 0 {
		s.maxURLs = n
	}
	return s
}

// CreateDatabase creates the database and ingests each URL independently.
// Per-URL failures are reported in the results, not rolled back: a batch add
// has no transaction semantics across URLs.
func (s *Service) CreateDatabase(ctx context.Context, databaseID string, urls []string) ([]Result, error) {
	if len(urls) > s.maxURLs {
		return nil, fmt.Errorf("urls count %d exceeds limit %d: %w", len(urls), s.maxURLs, domain.ErrValidation)
	}

	exists, err := s.corpus.Exists(ctx, databaseID)
	if err != nil {
		return nil, fmt.Errorf("check database: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("database %q: %w", databaseID, domain.ErrAlreadyExists)
	}

	if err := s.corpus.EnsureCollection(ctx, databaseID); err != nil {
		return nil, fmt.Errorf("create database: %w", err)
	}

	results := make([]Result, len(urls))
	for i, url := range urls {
		chunks, err := s.ingestOne(ctx, databaseID, url)
		results[i] = Result{URL: url, Chunks: chunks, Err: err}
	}
	return results, nil
}

// AddDocument ingests one URL into an existing database.
// The database must already exist; there is no auto-create on this path.
func (s *Service) AddDocument(ctx context.Context, databaseID, url string) (int, error) {
	exists, err := s.corpus.Exists(ctx, databaseID)
	if err != nil {
		return 0, fmt.Errorf("check database: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("database %q: %w", databaseID, domain.ErrNotFound)
	}

	return s.ingestOne(ctx, databaseID, url)
}

// DeleteDocument removes all chunks of (databaseID, url). Idempotent:
// deleting a missing document, or from a missing database, is success.
func (s *Service) DeleteDocument(ctx context.Context, databaseID, url string) error {
	if err := s.corpus.DeleteDocument(ctx, databaseID, url); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// ingestOne runs the pipeline for a single URL and returns the chunk count.
func (s *Service) ingestOne(ctx context.Context, databaseID, url string) (int, error) {
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch document: %w", err)
	}

	texts := s.chunker.Split(page.Text)
	if len(texts) == 0 {
		return 0, fmt.Errorf("page %s has no extractable text: %w", url, domain.ErrFetchFailed)
	}

	res, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(res.TotalTokens)

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DatabaseID: databaseID,
			Source:     url,
			Index:      i,
			Text:       text,
		}
	}

	if err := s.corpus.ReplaceDocument(ctx, databaseID, url, chunks, res.Embeddings); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	return len(chunks), nil
}
