package corpus

import (
	"context"
	"testing"

	"github.com/kailas-cloud/ragserve/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createCollectionFn   func(ctx context.Context, name string, vectorSize int) error
	collectionExistsFn   func(ctx context.Context, name string) (bool, error)
	dropCollectionFn     func(ctx context.Context, name string) error
	createKeywordIndexFn func(ctx context.Context, collection, field string) error
	upsertPointsFn       func(ctx context.Context, collection string, points []db.Point) error
	deletePointsFn       func(ctx context.Context, collection string, filter db.Filter) error
	searchPointsFn       func(ctx context.Context, collection string, q *db.KNNQuery) ([]db.ScoredPoint, error)
	countPointsFn        func(ctx context.Context, collection string, filter db.Filter) (int, error)
}

func (m *mockStore) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	if m.createCollectionFn != nil {
		return m.createCollectionFn(ctx, name, vectorSize)
	}
	return nil
}

func (m *mockStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	if m.collectionExistsFn != nil {
		return m.collectionExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) DropCollection(ctx context.Context, name string) error {
	if m.dropCollectionFn != nil {
		return m.dropCollectionFn(ctx, name)
	}
	return nil
}

func (m *mockStore) CreateKeywordIndex(ctx context.Context, collection, field string) error {
	if m.createKeywordIndexFn != nil {
		return m.createKeywordIndexFn(ctx, collection, field)
	}
	return nil
}

func (m *mockStore) UpsertPoints(ctx context.Context, collection string, points []db.Point) error {
	if m.upsertPointsFn != nil {
		return m.upsertPointsFn(ctx, collection, points)
	}
	return nil
}

func (m *mockStore) DeletePoints(ctx context.Context, collection string, filter db.Filter) error {
	if m.deletePointsFn != nil {
		return m.deletePointsFn(ctx, collection, filter)
	}
	return nil
}

func (m *mockStore) SearchPoints(ctx context.Context, collection string, q *db.KNNQuery) ([]db.ScoredPoint, error) {
	if m.searchPointsFn != nil {
		return m.searchPointsFn(ctx, collection, q)
	}
	return nil, nil
}

func (m *mockStore) CountPoints(ctx context.Context, collection string, filter db.Filter) (int, error) {
	if m.countPointsFn != nil {
		return m.countPointsFn(ctx, collection, filter)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "test_", 4), ms
}
