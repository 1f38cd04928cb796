package index

import (
	"context"
	"net/http"
	"testing"

	"github.com/kailas-cloud/swapdex/internal/engine"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	indexStatusFn  func(ctx context.Context, index string) (int, error)
	createIndexFn  func(ctx context.Context, index string, body []byte) (*engine.Response, error)
	deleteIndexFn  func(ctx context.Context, index string) (*engine.Response, error)
	refreshIndexFn func(ctx context.Context, index string) (*engine.Response, error)

	refreshed []string
}

func (m *mockStore) IndexStatus(ctx context.Context, index string) (int, error) {
	if m.indexStatusFn != nil {
		return m.indexStatusFn(ctx, index)
	}
	return http.StatusNotFound, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, index string, body []byte) (*engine.Response, error) {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, index, body)
	}
	return &engine.Response{StatusCode: http.StatusOK}, nil
}

func (m *mockStore) DeleteIndex(ctx context.Context, index string) (*engine.Response, error) {
	if m.deleteIndexFn != nil {
		return m.deleteIndexFn(ctx, index)
	}
	return &engine.Response{StatusCode: http.StatusOK}, nil
}

func (m *mockStore) RefreshIndex(ctx context.Context, index string) (*engine.Response, error) {
	m.refreshed = append(m.refreshed, index)
	if m.refreshIndexFn != nil {
		return m.refreshIndexFn(ctx, index)
	}
	return &engine.Response{StatusCode: http.StatusOK}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, nil), ms
}

func statusOnly(code int) func(context.Context, string) (int, error) {
	return func(context.Context, string) (int, error) { return code, nil }
}
