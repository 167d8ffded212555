// Package qdrant is a REST client for the Qdrant vector database,
// implementing the db.Store facade. Collections use cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kailas-cloud/ragserve/internal/db"
)

const defaultTimeout = 30 * time.Second

// Config holds Qdrant connection settings.
type Config struct {
	Host    string
	Port    int
	APIKey  string
	Timeout time.Duration
}

// Store is a Qdrant-backed db.Store.
type Store struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ db.Store = (*Store)(nil)

// NewStore creates a Qdrant REST client.
func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Store{
		baseURL: fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ping checks readiness via the /readyz endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, http.MethodGet, "/readyz", nil, nil); err != nil {
		return &db.Error{Op: db.OpReadyz, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the database responds or the timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for ready: %w", ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("database not ready after %s: %w", timeout, lastErr)
}

// CreateCollection creates a collection with the given vector size.
func (s *Store) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, "/collections/"+name, body, nil); err != nil {
		return &db.Error{Op: db.OpCreateCollection, Err: err}
	}
	return nil
}

// CollectionExists reports whether the collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	var resp struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodGet, "/collections/"+name+"/exists", nil, &resp); err != nil {
		return false, &db.Error{Op: db.OpCollectionExists, Err: err}
	}
	return resp.Result.Exists, nil
}

// DropCollection removes the collection and all its points.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	if err := s.do(ctx, http.MethodDelete, "/collections/"+name, nil, nil); err != nil {
		return &db.Error{Op: db.OpDropCollection, Err: err}
	}
	return nil
}

// CreateKeywordIndex creates a keyword payload index so match filters on the
// field are served from the index rather than a full scan.
func (s *Store) CreateKeywordIndex(ctx context.Context, collection, field string) error {
	body := map[string]any{
		"field_name":   field,
		"field_schema": "keyword",
	}
	if err := s.do(ctx, http.MethodPut, "/collections/"+collection+"/index?wait=true", body, nil); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// UpsertPoints writes points with wait=true so subsequent searches see them.
func (s *Store) UpsertPoints(ctx context.Context, collection string, points []db.Point) error {
	items := make([]map[string]any, len(points))
	for i, p := range points {
		items[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}
	body := map[string]any{"points": items}
	if err := s.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body, nil); err != nil {
		return &db.Error{Op: db.OpUpsertPoints, Err: err}
	}
	return nil
}

// DeletePoints removes all points matching the filter.
func (s *Store) DeletePoints(ctx context.Context, collection string, filter db.Filter) error {
	body := map[string]any{"filter": filterToJSON(filter)}
	if err := s.do(ctx, http.MethodPost, "/collections/"+collection+"/points/delete?wait=true", body, nil); err != nil {
		return &db.Error{Op: db.OpDeletePoints, Err: err}
	}
	return nil
}

// SearchPoints performs a filtered nearest-neighbor search with payloads.
func (s *Store) SearchPoints(ctx context.Context, collection string, q *db.KNNQuery) ([]db.ScoredPoint, error) {
	body := map[string]any{
		"vector":       q.Vector,
		"limit":        q.Limit,
		"with_payload": true,
	}
	if len(q.Filter.Must) > 0 {
		body["filter"] = filterToJSON(q.Filter)
	}

	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body, &resp); err != nil {
		return nil, &db.Error{Op: db.OpSearchPoints, Err: err}
	}

	points := make([]db.ScoredPoint, len(resp.Result))
	for i, r := range resp.Result {
		points[i] = db.ScoredPoint{
			ID:      fmt.Sprintf("%v", r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		}
	}
	return points, nil
}

// CountPoints returns the exact number of points matching the filter.
func (s *Store) CountPoints(ctx context.Context, collection string, filter db.Filter) (int, error) {
	body := map[string]any{"exact": true}
	if len(filter.Must) > 0 {
		body["filter"] = filterToJSON(filter)
	}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, "/collections/"+collection+"/points/count", body, &resp); err != nil {
		return 0, &db.Error{Op: db.OpCountPoints, Err: err}
	}
	return resp.Result.Count, nil
}

// filterToJSON converts a db.Filter to the Qdrant filter wire format.
func filterToJSON(f db.Filter) map[string]any {
	must := make([]map[string]any, len(f.Must))
	for i, m := range f.Must {
		must[i] = map[string]any{
			"key":   m.Key,
			"match": map[string]any{"value": m.Value},
		}
	}
	return map[string]any{"must": must}
}

// do executes one REST round trip, mapping HTTP status codes to sentinel errors.
func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// statusError maps Qdrant error responses to sentinel errors where possible.
func statusError(resp *http.Response) error {
	detail := readStatusDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		if detail != "" {
			return fmt.Errorf("%s: %w", detail, db.ErrCollectionNotFound)
		}
		return db.ErrCollectionNotFound
	case http.StatusConflict:
		if detail != "" {
			return fmt.Errorf("%s: %w", detail, db.ErrCollectionExists)
		}
		return db.ErrCollectionExists
	default:
		if detail != "" {
			return fmt.Errorf("status %s: %s", resp.Status, detail)
		}
		return errors.New("status " + resp.Status)
	}
}

// readStatusDetail extracts the error description from a Qdrant error body.
func readStatusDetail(body io.Reader) string {
	var parsed struct {
		Status struct {
			Error string `json:"error"`
		} `json:"status"`
	}
	if json.NewDecoder(body).Decode(&parsed) == nil {
		return parsed.Status.Error
	}
	return ""
}
