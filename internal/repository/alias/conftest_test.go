package alias

import (
	"context"
	"net/http"
	"testing"

	"github.com/kailas-cloud/swapdex/internal/engine"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	aliasStatusFn   func(ctx context.Context, alias string) (int, error)
	getAliasFn      func(ctx context.Context, alias string) (*engine.Response, error)
	updateAliasesFn func(ctx context.Context, body []byte) (*engine.Response, error)
}

func (m *mockStore) AliasStatus(ctx context.Context, alias string) (int, error) {
	if m.aliasStatusFn != nil {
		return m.aliasStatusFn(ctx, alias)
	}
	return http.StatusNotFound, nil
}

func (m *mockStore) GetAlias(ctx context.Context, alias string) (*engine.Response, error) {
	if m.getAliasFn != nil {
		return m.getAliasFn(ctx, alias)
	}
	return &engine.Response{StatusCode: http.StatusNotFound}, nil
}

func (m *mockStore) UpdateAliases(ctx context.Context, body []byte) (*engine.Response, error) {
	if m.updateAliasesFn != nil {
		return m.updateAliasesFn(ctx, body)
	}
	return &engine.Response{StatusCode: http.StatusOK}, nil
}

func newTestResolver(t *testing.T) (*Resolver, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, nil), ms
}
