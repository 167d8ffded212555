package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/kailas-cloud/ragserve/internal/domain"
)

// --- Mocks ---

type mockCorpus struct {
	exists       bool
	existsErr    error
	ensureErr    error
	replaceErr   error
	deleteErr    error
	ensured      []string
	replacedDocs []replacedDoc
	deletedDocs  [][2]string
}

type replacedDoc struct {
	databaseID string
	url        string
	chunks     []domain.Chunk
	vectors    [][]float32
}

func (m *mockCorpus) Exists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockCorpus) EnsureCollection(_ context.Context, databaseID string) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	m.ensured = append(m.ensured, databaseID)
	return nil
}

func (m *mockCorpus) ReplaceDocument(
	_ context.Context, databaseID, url string, chunks []domain.Chunk, vectors [][]float32,
) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replacedDocs = append(m.replacedDocs, replacedDoc{databaseID, url, chunks, vectors})
	return nil
}

func (m *mockCorpus) DeleteDocument(_ context.Context, databaseID, url string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedDocs = append(m.deletedDocs, [2]string{databaseID, url})
	return nil
}

type mockFetcher struct {
	pages map[string]domain.Page
	err   error
	// failURLs lists URLs that fail even when err is unset.
	failURLs map[string]error
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (domain.Page, error) {
	if m.err != nil {
		return domain.Page{}, m.err
	}
	if e, ok := m.failURLs[url]; ok {
		return domain.Page{}, e
	}
	if p, ok := m.pages[url]; ok {
		return p, nil
	}
	return domain.Page{URL: url, Text: "default page text."}, nil
}

// sentenceChunker splits on ". " for predictable test chunks.
type sentenceChunker struct{}

func (sentenceChunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ". ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type mockEmbedder struct {
	err    error
	tokens int
	calls  [][]string
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	m.calls = append(m.calls, texts)
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{float32(i)}
	}
	return domain.BatchEmbeddingResult{Embeddings: vectors, TotalTokens: m.tokens}, nil
}

func newTestService(t *testing.T) (*Service, *mockCorpus, *mockFetcher, *mockEmbedder) {
	t.Helper()
	corpus := &mockCorpus{}
	fetcher := &mockFetcher{}
	embedder := &mockEmbedder{tokens: 10}
	svc := New(corpus, fetcher, sentenceChunker{}, embedder)
	return svc, corpus, fetcher, embedder
}
