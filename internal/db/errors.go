package db

import "errors"

// Sentinel errors for vector database operations.
var (
	ErrCollectionNotFound = errors.New("db: collection not found")
	ErrCollectionExists   = errors.New("db: collection already exists")
)

// Op constants map to Qdrant REST operations for error context.
const (
	OpCreateCollection = "PUT /collections/{name}"
	OpCollectionExists = "GET /collections/{name}/exists"
	OpDropCollection   = "DELETE /collections/{name}"
	OpCreateIndex      = "PUT /collections/{name}/index"
	OpUpsertPoints     = "PUT /collections/{name}/points"
	OpDeletePoints     = "POST /collections/{name}/points/delete"
	OpSearchPoints     = "POST /collections/{name}/points/search"
	OpCountPoints      = "POST /collections/{name}/points/count"
	OpReadyz           = "GET /readyz"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
