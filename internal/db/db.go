package db

import (
	"context"
	"time"
)

// Store is the main vector database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	CollectionManager
	PointWriter
	PointSearcher
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CollectionManager provides collection lifecycle operations.
type CollectionManager interface {
	CreateCollection(ctx context.Context, name string, vectorSize int) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	DropCollection(ctx context.Context, name string) error
	CreateKeywordIndex(ctx context.Context, collection, field string) error
}

// PointWriter provides point mutation operations.
type PointWriter interface {
	UpsertPoints(ctx context.Context, collection string, points []Point) error
	DeletePoints(ctx context.Context, collection string, filter Filter) error
}

// PointSearcher provides similarity search operations.
type PointSearcher interface {
	SearchPoints(ctx context.Context, collection string, q *KNNQuery) ([]ScoredPoint, error)
	CountPoints(ctx context.Context, collection string, filter Filter) (int, error)
}

// Point is one stored vector with its payload.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a point returned by similarity search.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// KNNQuery describes a filtered nearest-neighbor search.
type KNNQuery struct {
	Vector []float32
	Filter Filter
	Limit  int
}

// Match is an exact-value payload condition.
type Match struct {
	Key   string
	Value string
}

// Filter is a conjunction of payload match conditions. Zero value matches everything.
type Filter struct {
	Must []Match
}

// MatchAll returns a filter with the given must conditions.
func MatchAll(conditions ...Match) Filter {
	return Filter{Must: conditions}
}
