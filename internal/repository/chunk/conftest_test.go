package chunk

import (
	"context"
	"testing"
	"time"

	"github.com/scholarlabs/paperdex/internal/db"
	"github.com/scholarlabs/paperdex/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	delMultiFn    func(ctx context.Context, keys []string) (int, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchListFn  func(
		ctx context.Context, index, query string, offset, limit int, fields []string,
	) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index, query string) (int, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) (int, error) {
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return len(keys), nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, query, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, Config{KeyPrefix: "paperdex:", VectorDim: 4})
	return repo, ms
}

func testTime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testChunk(t *testing.T, paperID string, index int) domain.Chunk {
	t.Helper()
	section := "introduction"
	return domain.Chunk{
		ID:     domain.ChunkID(paperID, section, index),
		Text:   "[Section: introduction]\nSome text.",
		Vector: []float32{0.1, 0.2, 0.3, 0.4},
		Metadata: domain.ChunkMetadata{
			PaperID:    paperID,
			Title:      "Attention Is All You Need",
			Authors:    "Vaswani et al.",
			Year:       "2017",
			Section:    section,
			Page:       "2",
			ChunkIndex: index,
			UploadDate: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
		},
	}
}

func entryFields(c domain.Chunk) map[string]string {
	m := buildHashFields(&c)
	delete(m, fieldVector)
	return m
}
