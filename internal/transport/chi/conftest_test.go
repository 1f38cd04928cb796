package chi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/hit"
	"github.com/kailas-cloud/swapdex/internal/domain/query"
	"github.com/kailas-cloud/swapdex/internal/source"
	healthuc "github.com/kailas-cloud/swapdex/internal/usecase/health"
	"github.com/kailas-cloud/swapdex/internal/usecase/hotswap"
)

type mockSearch struct {
	searchFn func(ctx context.Context, alias string, q query.Query) ([]hit.Hit, error)
}

func (m *mockSearch) Search(ctx context.Context, alias string, q query.Query) ([]hit.Hit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, alias, q)
	}
	return []hit.Hit{}, nil
}

type mockSwaps struct {
	hotSwapFn     func(ctx context.Context, req hotswap.Request) (hotswap.Result, error)
	createIndexFn func(ctx context.Context, alias, docType string, fields []string, m domain.Mappings, refresh bool) (string, bool, error)
	deleteAliasFn func(ctx context.Context, alias string, refresh bool) (bool, error)
	resolveFn     func(ctx context.Context, alias string) ([]string, error)
}

func (m *mockSwaps) HotSwap(ctx context.Context, req hotswap.Request) (hotswap.Result, error) {
	if m.hotSwapFn != nil {
		return m.hotSwapFn(ctx, req)
	}
	return hotswap.Result{}, nil
}

func (m *mockSwaps) CreateIndex(
	ctx context.Context, alias, docType string, fields []string, mappings domain.Mappings, refresh bool,
) (string, bool, error) {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, alias, docType, fields, mappings, refresh)
	}
	return "", false, nil
}

func (m *mockSwaps) DeleteAlias(ctx context.Context, alias string, refresh bool) (bool, error) {
	if m.deleteAliasFn != nil {
		return m.deleteAliasFn(ctx, alias, refresh)
	}
	return false, nil
}

func (m *mockSwaps) Resolve(ctx context.Context, alias string) ([]string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, alias)
	}
	return []string{}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type mockLoader struct {
	loadFn func(ctx context.Context, req source.LoadRequest) (source.Dataset, error)
}

func (m *mockLoader) Load(ctx context.Context, req source.LoadRequest) (source.Dataset, error) {
	return m.loadFn(ctx, req)
}

// do sends one request through the full router.
func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
