// Package corpus maps databases and document chunks onto vector store
// collections and points. One collection per database_id; chunks carry
// database_id, source URL, chunk index, and text in the payload.
package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/ragserve/internal/db"
	"github.com/kailas-cloud/ragserve/internal/domain"
)

// Payload field names.
const (
	fieldDatabaseID = "database_id"
	fieldSource     = "source"
	fieldChunk      = "chunk"
	fieldText       = "text"
)

// store is the narrow consumer interface over the vector database.
type store interface {
	db.CollectionManager
	db.PointWriter
	db.PointSearcher
}

// Repo mediates all corpus reads and writes against the vector store.
type Repo struct {
	store      store
	prefix     string
	vectorSize int
}

// New creates a corpus repository. prefix namespaces collections on a shared
// Qdrant instance and may be empty.
func New(s store, prefix string, vectorSize int) *Repo {
	return &Repo{store: s, prefix: prefix, vectorSize: vectorSize}
}

// collectionName maps a database_id to its collection.
func (r *Repo) collectionName(databaseID string) string {
	return r.prefix + databaseID
}

// Exists reports whether the database's collection exists.
func (r *Repo) Exists(ctx context.Context, databaseID string) (bool, error) {
	exists, err := r.store.CollectionExists(ctx, r.collectionName(databaseID))
	if err != nil {
		return false, fmt.Errorf("collection exists: %w", err)
	}
	return exists, nil
}

// EnsureCollection creates the database's collection with keyword payload
// indexes on source and database_id so delete filters are indexed.
func (r *Repo) EnsureCollection(ctx context.Context, databaseID string) error {
	name := r.collectionName(databaseID)

	if err := r.store.CreateCollection(ctx, name, r.vectorSize); err != nil {
		if errors.Is(err, db.ErrCollectionExists) {
			return fmt.Errorf("database %q: %w", databaseID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create collection: %w", err)
	}

	for _, field := range []string{fieldSource, fieldDatabaseID} {
		if err := r.store.CreateKeywordIndex(ctx, name, field); err != nil {
			return fmt.Errorf("create %s index: %w", field, err)
		}
	}
	return nil
}

// ReplaceDocument removes any prior chunks of (databaseID, url) and upserts
// the new ones. Point IDs are deterministic UUIDv5 values derived from
// (databaseID, url, index), so re-adding a document replaces rather than
// duplicates even if the prior delete is lost.
func (r *Repo) ReplaceDocument(
	ctx context.Context, databaseID, url string, chunks []domain.Chunk, vectors [][]float32,
) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}

	name := r.collectionName(databaseID)

	if err := r.store.DeletePoints(ctx, name, documentFilter(databaseID, url)); err != nil {
		return fmt.Errorf("delete prior chunks: %w", err)
	}

	points := make([]db.Point, len(chunks))
	for i, c := range chunks {
		points[i] = db.Point{
			ID:     chunkPointID(databaseID, url, c.Index),
			Vector: vectors[i],
			Payload: map[string]any{
				fieldDatabaseID: databaseID,
				fieldSource:     url,
				fieldChunk:      c.Index,
				fieldText:       c.Text,
			},
		}
	}

	if err := r.store.UpsertPoints(ctx, name, points); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	return nil
}

// DeleteDocument removes all chunks of (databaseID, url). Idempotent:
// a missing document or a missing database is success.
func (r *Repo) DeleteDocument(ctx context.Context, databaseID, url string) error {
	err := r.store.DeletePoints(ctx, r.collectionName(databaseID), documentFilter(databaseID, url))
	if err != nil && !errors.Is(err, db.ErrCollectionNotFound) {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Search returns the topK chunks of the database nearest to the vector.
func (r *Repo) Search(
	ctx context.Context, databaseID string, vector []float32, topK int,
) ([]domain.ScoredChunk, error) {
	points, err := r.store.SearchPoints(ctx, r.collectionName(databaseID), &db.KNNQuery{
		Vector: vector,
		Filter: db.MatchAll(db.Match{Key: fieldDatabaseID, Value: databaseID}),
		Limit:  topK,
	})
	if err != nil {
		if errors.Is(err, db.ErrCollectionNotFound) {
			return nil, fmt.Errorf("database %q: %w", databaseID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("search points: %w", err)
	}

	chunks := make([]domain.ScoredChunk, len(points))
	for i, p := range points {
		chunks[i] = scoredChunkFromPoint(databaseID, p)
	}
	return chunks, nil
}

// CountChunks returns the number of stored chunks for (databaseID, url).
func (r *Repo) CountChunks(ctx context.Context, databaseID, url string) (int, error) {
	count, err := r.store.CountPoints(ctx, r.collectionName(databaseID), documentFilter(databaseID, url))
	if err != nil {
		if errors.Is(err, db.ErrCollectionNotFound) {
			return 0, fmt.Errorf("database %q: %w", databaseID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("count points: %w", err)
	}
	return count, nil
}

func documentFilter(databaseID, url string) db.Filter {
	return db.MatchAll(
		db.Match{Key: fieldDatabaseID, Value: databaseID},
		db.Match{Key: fieldSource, Value: url},
	)
}

// chunkPointID derives a stable UUIDv5 point ID from the chunk identity.
func chunkPointID(databaseID, url string, index int) string {
	name := fmt.Sprintf("%s\x00%s\x00%d", databaseID, url, index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func scoredChunkFromPoint(databaseID string, p db.ScoredPoint) domain.ScoredChunk {
	c := domain.ScoredChunk{Score: p.Score}
	c.DatabaseID = databaseID

	if v, ok := p.Payload[fieldSource].(string); ok {
		c.Source = v
	}
	if v, ok := p.Payload[fieldChunk].(float64); ok {
		c.Index = int(v)
	}
	if v, ok := p.Payload[fieldText].(string); ok {
		c.Text = v
	}
	return c
}
