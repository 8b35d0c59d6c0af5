package business

import (
	"context"
	"testing"

	"github.com/andrewcz-se/vector-rag/internal/db"
	biz "github.com/andrewcz-se/vector-rag/internal/domain/business"
)

const testCollection = "businesses"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	createIndexFn func(ctx context.Context, schema *db.IndexSchema) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchAllFn   func(ctx context.Context, index string, fields []string) (*db.SearchResult, error)
	dropIndexFn   func(ctx context.Context, name string) error
	scanFn        func(ctx context.Context, pattern string) ([]string, error)
	deleted       []string
	delErr        error
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, schema *db.IndexSchema) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, schema)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchAll(ctx context.Context, index string, fields []string) (*db.SearchResult, error) {
	if m.searchAllFn != nil {
		return m.searchAllFn(ctx, index, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	m.deleted = append(m.deleted, key)
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testCollection), ms
}

func testRecord(t *testing.T, id, name, category string) biz.Record {
	t.Helper()
	rec, err := biz.New(biz.Fields{
		ID:          id,
		Name:        name,
		Description: "A test business.",
		Address:     "1 Test St",
		Category:    category,
		Phone:       "555-0000",
		Hours:       "9am - 5pm",
	})
	if err != nil {
		t.Fatalf("biz.New: %v", err)
	}
	return rec
}
