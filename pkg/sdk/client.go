package ragserve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 300 * time.Second

// Client talks to a ragserve instance over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := clientConfig{
		timeout:   defaultTimeout,
		userAgent: "ragserve-go-sdk",
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.apiKey,
		userAgent:  cfg.userAgent,
		httpClient: hc,
	}
}

// Health reports component health. A degraded service returns a report
// with Healthy() == false, not an error.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var report HealthReport
	_, err := c.do(ctx, http.MethodGet, "/health", nil, &report, http.StatusOK, http.StatusServiceUnavailable)
	if err != nil {
		return HealthReport{}, err
	}
	return report, nil
}

// CreateDatabase creates a database and ingests the given URLs.
// Per-URL failures are reported in the result, not as an error.
func (c *Client) CreateDatabase(ctx context.Context, databaseID string, urls []string) (CreateDatabaseResult, error) {
	req := struct {
		DatabaseID string   `json:"database_id"`
		URLs       []string `json:"urls"`
	}{databaseID, urls}

	var result CreateDatabaseResult
	if _, err := c.do(ctx, http.MethodPost, "/database", req, &result, http.StatusOK); err != nil {
		return CreateDatabaseResult{}, err
	}
	return result, nil
}

// Ask answers a question against an ingested database. history carries
// prior turns for conversational follow-ups; pass nil for a fresh question.
func (c *Client) Ask(ctx context.Context, databaseID, question string, history []Exchange) (Answer, error) {
	req := struct {
		DatabaseID  string     `json:"database_id"`
		Question    string     `json:"question"`
		ChatHistory []Exchange `json:"chat_history,omitempty"`
	}{databaseID, question, history}

	var answer Answer
	resp, err := c.do(ctx, http.MethodPost, "/question", req, &answer, http.StatusOK)
	if err != nil {
		return Answer{}, err
	}
	answer.EmbeddingTokens = headerInt(resp, "X-Embedding-Tokens")
	answer.GenerationTokens = headerInt(resp, "X-Generation-Tokens")
	return answer, nil
}

// AddDocument ingests one URL into an existing database.
func (c *Client) AddDocument(ctx context.Context, databaseID, url string) (AddDocumentResult, error) {
	req := struct {
		DatabaseID string `json:"database_id"`
		URL        string `json:"url"`
	}{databaseID, url}

	var result AddDocumentResult
	if _, err := c.do(ctx, http.MethodPut, "/add_document", req, &result, http.StatusOK); err != nil {
		return AddDocumentResult{}, err
	}
	return result, nil
}

// DeleteDocument removes a document from a database. Idempotent.
func (c *Client) DeleteDocument(ctx context.Context, databaseID, url string) error {
	req := struct {
		DatabaseID string `json:"database_id"`
		URL        string `json:"url"`
	}{databaseID, url}

	_, err := c.do(ctx, http.MethodDelete, "/delete_document", req, nil, http.StatusOK)
	return err
}

// do sends one request and decodes the response into out (if non-nil).
// Statuses outside okStatuses are turned into *APIError.
func (c *Client) do(
	ctx context.Context, method, path string, body, out any, okStatuses ...int,
) (*http.Response, error) {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	ok := false
	for _, s := range okStatuses {
		if resp.StatusCode == s {
			ok = true
			break
		}
	}
	if !ok {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr != nil {
			errResp = errorResponse{Code: "internal_error", Message: resp.Status}
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Code,
			Message:    errResp.Message,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

func headerInt(resp *http.Response, name string) int {
	n, _ := strconv.Atoi(resp.Header.Get(name))
	return n
}
