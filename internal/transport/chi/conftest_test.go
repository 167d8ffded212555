package chi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragserve/internal/domain"
	answeruc "github.com/kailas-cloud/ragserve/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/ragserve/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/ragserve/internal/usecase/ingest"
)

// mockIngestor is a hand-rolled mock with overridable functions.
type mockIngestor struct {
	createFn func(ctx context.Context, databaseID string, urls []string) ([]ingestuc.Result, error)
	addFn    func(ctx context.Context, databaseID, url string) (int, error)
	deleteFn func(ctx context.Context, databaseID, url string) error

	createCalls int
	addCalls    int
	deleteCalls int
}

func (m *mockIngestor) CreateDatabase(
	ctx context.Context, databaseID string, urls []string,
) ([]ingestuc.Result, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, databaseID, urls)
	}
	results := make([]ingestuc.Result, len(urls))
	for i, u := range urls {
		results[i] = ingestuc.Result{URL: u, Chunks: 3}
	}
	return results, nil
}

func (m *mockIngestor) AddDocument(ctx context.Context, databaseID, url string) (int, error) {
	m.addCalls++
	if m.addFn != nil {
		return m.addFn(ctx, databaseID, url)
	}
	return 3, nil
}

func (m *mockIngestor) DeleteDocument(ctx context.Context, databaseID, url string) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, databaseID, url)
	}
	return nil
}

type mockAnswerer struct {
	askFn func(ctx context.Context, databaseID, question string, history []domain.Exchange) (answeruc.Answer, error)
}

func (m *mockAnswerer) Ask(
	ctx context.Context, databaseID, question string, history []domain.Exchange,
) (answeruc.Answer, error) {
	if m.askFn != nil {
		return m.askFn(ctx, databaseID, question, history)
	}
	return answeruc.Answer{Text: "mock answer"}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report {
	if m.report.Status == "" {
		return healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}
	}
	return m.report
}

type testEnv struct {
	ingest *mockIngestor
	answer *mockAnswerer
	health *mockHealth
	srv    *httptest.Server
}

// newTestEnv builds a server with the same router middleware the binary uses.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		ingest: &mockIngestor{},
		answer: &mockAnswerer{},
		health: &mockHealth{},
	}

	server := NewServer(env.ingest, env.answer, env.health, zap.NewNop())

	r := chirouter.NewRouter()
	r.Use(chiMiddleware.StripSlashes)
	server.Routes(r)

	env.srv = httptest.NewServer(r)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	var reqBody io.Reader = http.NoBody
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
