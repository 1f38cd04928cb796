package hotswap

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/swapdex/internal/engine"
	"github.com/kailas-cloud/swapdex/internal/events"
	"github.com/kailas-cloud/swapdex/internal/repository/index"
)

// --- Mocks ---

type mockIndexes struct {
	mu        sync.Mutex
	created   []index.Spec
	deleted   []string
	refreshed []string
	createFn  func(spec index.Spec) (bool, error)
	deleteFn  func(name string) (bool, error)
}

func (m *mockIndexes) CreateIndex(_ context.Context, spec index.Spec) (bool, error) {
	m.mu.Lock()
	m.created = append(m.created, spec)
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(spec)
	}
	return true, nil
}

func (m *mockIndexes) DeleteIndex(_ context.Context, name string, _ bool) (bool, error) {
	m.mu.Lock()
	m.deleted = append(m.deleted, name)
	m.mu.Unlock()
	if m.deleteFn != nil {
		return m.deleteFn(name)
	}
	return true, nil
}

func (m *mockIndexes) RefreshIndex(_ context.Context, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed = append(m.refreshed, name)
}

type mockAliases struct {
	bound   map[string][]string
	swapErr error
	swaps   []swapCall
	resolve func(alias string) ([]string, error)
}

type swapCall struct {
	alias, newIndex string
	old             []string
}

func (m *mockAliases) Resolve(_ context.Context, alias string) ([]string, error) {
	if m.resolve != nil {
		return m.resolve(alias)
	}
	return append([]string{}, m.bound[alias]...), nil
}

func (m *mockAliases) Swap(_ context.Context, alias, newIndex string, old []string) error {
	m.swaps = append(m.swaps, swapCall{alias: alias, newIndex: newIndex, old: old})
	if m.swapErr != nil {
		return m.swapErr
	}
	if m.bound == nil {
		m.bound = map[string][]string{}
	}
	m.bound[alias] = []string{newIndex}
	return nil
}

type mockBulk struct {
	mu       sync.Mutex
	workers  int
	ids      []string
	addErr   error
	closeErr error
	failed   uint64
}

func (m *mockBulk) NewBulkIndexer(_ string, workers int) (engine.BulkIndexer, error) {
	m.workers = workers
	return m, nil
}

func (m *mockBulk) Add(_ context.Context, id string, _ []byte) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, id)
	return nil
}

func (m *mockBulk) Close(context.Context) error { return m.closeErr }

func (m *mockBulk) Stats() engine.BulkStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := uint64(len(m.ids))
	return engine.BulkStats{Added: n, Indexed: n - m.failed, Failed: m.failed}
}

type mockNotifier struct {
	events []events.SwapEvent
	err    error
}

func (m *mockNotifier) Publish(_ context.Context, ev events.SwapEvent) error {
	m.events = append(m.events, ev)
	return m.err
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}
