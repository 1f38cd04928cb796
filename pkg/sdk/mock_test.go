package swapdex

import (
	"context"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/query"
	healthuc "github.com/kailas-cloud/swapdex/internal/usecase/health"
	"github.com/kailas-cloud/swapdex/internal/usecase/hotswap"
)

// --- searchUseCase mock ---

type mockSearchUC[H any] struct {
	searchFn func(ctx context.Context, alias string, q query.Query) ([]H, error)
}

func (m *mockSearchUC[H]) Search(ctx context.Context, alias string, q query.Query) ([]H, error) {
	return m.searchFn(ctx, alias, q)
}

// --- swapUseCase mock ---

type mockSwapUC struct {
	hotSwapFn     func(ctx context.Context, req hotswap.Request) (hotswap.Result, error)
	createIndexFn func(ctx context.Context, alias, docType string, fields []string, m domain.Mappings, refresh bool) (string, bool, error)
	deleteAliasFn func(ctx context.Context, alias string, refresh bool) (bool, error)
	resolveFn     func(ctx context.Context, alias string) ([]string, error)
}

func (m *mockSwapUC) HotSwap(ctx context.Context, req hotswap.Request) (hotswap.Result, error) {
	return m.hotSwapFn(ctx, req)
}

func (m *mockSwapUC) CreateIndex(
	ctx context.Context, alias, docType string, fields []string, mappings domain.Mappings, refresh bool,
) (string, bool, error) {
	return m.createIndexFn(ctx, alias, docType, fields, mappings, refresh)
}

func (m *mockSwapUC) DeleteAlias(ctx context.Context, alias string, refresh bool) (bool, error) {
	return m.deleteAliasFn(ctx, alias, refresh)
}

func (m *mockSwapUC) Resolve(ctx context.Context, alias string) ([]string, error) {
	return m.resolveFn(ctx, alias)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- pinger mock ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

type hotswapRequestCapture struct {
	req hotswap.Request
}

func (h *hotswapRequestCapture) capture(_ context.Context, req hotswap.Request) (hotswap.Result, error) {
	h.req = req
	return hotswap.Result{}, nil
}
