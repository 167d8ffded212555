package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/kailas-cloud/ragserve/internal/db"
)

// newTestStore points a Store at an httptest server.
func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}

	return NewStore(Config{Host: u.Hostname(), Port: port, APIKey: "test-key"})
}

func okResult(v any) map[string]any {
	return map[string]any{"status": "ok", "result": v}
}

func TestStore_CreateCollection(t *testing.T) {
	var gotBody map[string]any

	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/collections/wiki" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("api-key") != "test-key" {
			t.Errorf("missing api-key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(okResult(true))
	}))

	if err := store.CreateCollection(context.Background(), "wiki", 1536); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	vectors, ok := gotBody["vectors"].(map[string]any)
	if !ok {
		t.Fatalf("missing vectors in body: %v", gotBody)
	}
	if vectors["size"] != float64(1536) || vectors["distance"] != "Cosine" {
		t.Errorf("unexpected vectors config: %v", vectors)
	}
}

func TestStore_CollectionExists(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/wiki/exists" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(okResult(map[string]any{"exists": true}))
	}))

	exists, err := store.CollectionExists(context.Background(), "wiki")
	if err != nil {
		t.Fatalf("CollectionExists: %v", err)
	}
	if !exists {
		t.Error("expected exists=true")
	}
}

func TestStore_UpsertPoints_WaitsForIndexing(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/wiki/points" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("expected wait=true")
		}
		var body struct {
			Points []struct {
				ID      string         `json:"id"`
				Vector  []float32      `json:"vector"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body.Points) != 1 || body.Points[0].Payload["source"] != "https://example.com" {
			t.Errorf("unexpected points: %+v", body.Points)
		}
		_ = json.NewEncoder(w).Encode(okResult(nil))
	}))

	err := store.UpsertPoints(context.Background(), "wiki", []db.Point{{
		ID:      "11111111-1111-1111-1111-111111111111",
		Vector:  []float32{0.1, 0.2},
		Payload: map[string]any{"source": "https://example.com"},
	}})
	if err != nil {
		t.Fatalf("UpsertPoints: %v", err)
	}
}

func TestStore_SearchPoints_FilterWireFormat(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["with_payload"] != true {
			t.Error("expected with_payload=true")
		}
		filter, ok := body["filter"].(map[string]any)
		if !ok {
			t.Fatalf("missing filter: %v", body)
		}
		must := filter["must"].([]any)
		cond := must[0].(map[string]any)
		if cond["key"] != "database_id" {
			t.Errorf("unexpected condition: %v", cond)
		}

		_ = json.NewEncoder(w).Encode(okResult([]map[string]any{
			{"id": "p1", "score": 0.92, "payload": map[string]any{"text": "hello"}},
		}))
	}))

	points, err := store.SearchPoints(context.Background(), "wiki", &db.KNNQuery{
		Vector: []float32{0.1, 0.2},
		Filter: db.MatchAll(db.Match{Key: "database_id", Value: "1"}),
		Limit:  4,
	})
	if err != nil {
		t.Fatalf("SearchPoints: %v", err)
	}
	if len(points) != 1 || points[0].Score != 0.92 || points[0].Payload["text"] != "hello" {
		t.Errorf("unexpected points: %+v", points)
	}
}

func TestStore_NotFoundMapsToSentinel(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"error": "Collection `wiki` doesn't exist!"},
		})
	}))

	_, err := store.SearchPoints(context.Background(), "wiki", &db.KNNQuery{
		Vector: []float32{0.1},
		Limit:  4,
	})
	if !errors.Is(err, db.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}

	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearchPoints {
		t.Errorf("expected wrapped db.Error with op, got %v", err)
	}
}

func TestStore_ConflictMapsToSentinel(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"error": "already exists"},
		})
	}))

	err := store.CreateCollection(context.Background(), "wiki", 1536)
	if !errors.Is(err, db.ErrCollectionExists) {
		t.Errorf("expected ErrCollectionExists, got %v", err)
	}
}

func TestStore_DeletePoints(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/wiki/points/delete" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("expected wait=true")
		}
		_ = json.NewEncoder(w).Encode(okResult(nil))
	}))

	err := store.DeletePoints(context.Background(), "wiki", db.MatchAll(
		db.Match{Key: "database_id", Value: "1"},
		db.Match{Key: "source", Value: "https://example.com"},
	))
	if err != nil {
		t.Fatalf("DeletePoints: %v", err)
	}
}

func TestStore_CountPoints(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["exact"] != true {
			t.Error("expected exact count")
		}
		_ = json.NewEncoder(w).Encode(okResult(map[string]any{"count": 7}))
	}))

	count, err := store.CountPoints(context.Background(), "wiki", db.MatchAll(db.Match{Key: "database_id", Value: "1"}))
	if err != nil {
		t.Fatalf("CountPoints: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
}

func TestStore_WaitForReady_Timeout(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	err := store.WaitForReady(context.Background(), 100*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
