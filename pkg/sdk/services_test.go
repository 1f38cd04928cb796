package swapdex

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/query"
	healthuc "github.com/kailas-cloud/swapdex/internal/usecase/health"
	"github.com/kailas-cloud/swapdex/internal/usecase/hotswap"
)

func TestClient_Search(t *testing.T) {
	mock := &mockSearchUC[Hit]{
		searchFn: func(_ context.Context, alias string, q query.Query) ([]Hit, error) {
			if alias != "users" {
				t.Errorf("alias = %q, want users", alias)
			}
			if q.Size != 3 {
				t.Errorf("size = %d, want 3", q.Size)
			}
			return []Hit{{ID: "1", Score: 1.5}}, nil
		},
	}
	c := &Client[Hit]{searchSvc: mock}

	hits, err := c.Search(context.Background(), "users", NewQuery().Size(3).Build())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "1" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestClient_Search_Error(t *testing.T) {
	mock := &mockSearchUC[Hit]{
		searchFn: func(context.Context, string, query.Query) ([]Hit, error) {
			return nil, domain.ErrAliasNotFound
		},
	}
	c := &Client[Hit]{searchSvc: mock}

	hits, err := c.Search(context.Background(), "ghost", Query{})
	if !errors.Is(err, ErrAliasNotFound) {
		t.Fatalf("expected ErrAliasNotFound, got %v", err)
	}
	if hits != nil {
		t.Errorf("hits = %v, want nil", hits)
	}
}

func TestClient_HotSwap(t *testing.T) {
	var got hotswap.Request
	mock := &mockSwapUC{
		hotSwapFn: func(_ context.Context, req hotswap.Request) (hotswap.Result, error) {
			got = req
			return hotswap.Result{NewIndex: "users_2", Retired: []string{"users_1"}, Indexed: 3, Failed: 1}, nil
		},
	}
	c := &Client[Hit]{swapSvc: mock, maxWriteConns: 4}

	parts := [][]Record{
		{{"id": "1"}, {"id": "2"}},
		{{"id": "3"}, {"email": "no-id"}},
	}
	res, err := c.HotSwap(context.Background(), "users", "user", parts,
		WithFields("email"), WithMapping("name", "text", true), WithMaxFailed(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Alias != "users" || got.DocType != "user" {
		t.Errorf("request = %+v", got)
	}
	if got.Records.NumPartitions() != 2 || got.Records.Len() != 4 {
		t.Errorf("records: parts=%d len=%d", got.Records.NumPartitions(), got.Records.Len())
	}
	if !reflect.DeepEqual(got.Fields, []string{"email", "name"}) {
		t.Errorf("fields = %v", got.Fields)
	}
	if m := got.Mappings.For("name"); m.Type != "text" || !m.UseNorms {
		t.Errorf("name mapping = %+v", m)
	}
	if got.MaxFailed != 3 {
		t.Errorf("max failed = %d, want 3", got.MaxFailed)
	}
	if got.MaxWriteConnections != 4 {
		t.Errorf("max write connections = %d, want 4", got.MaxWriteConnections)
	}

	want := SwapResult{Alias: "users", NewIndex: "users_2", Retired: []string{"users_1"}, Indexed: 3, Failed: 1}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("result = %+v, want %+v", res, want)
	}
}

func TestClient_HotSwap_ConnectionOverride(t *testing.T) {
	var got int
	mock := &mockSwapUC{
		hotSwapFn: func(_ context.Context, req hotswap.Request) (hotswap.Result, error) {
			got = req.MaxWriteConnections
			return hotswap.Result{}, nil
		},
	}
	c := &Client[Hit]{swapSvc: mock, maxWriteConns: 4}

	if _, err := c.HotSwap(context.Background(), "users", "user", nil, WithSwapConnections(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Errorf("max write connections = %d, want 1", got)
	}
}

func TestClient_HotSwap_Error(t *testing.T) {
	mock := &mockSwapUC{
		hotSwapFn: func(context.Context, hotswap.Request) (hotswap.Result, error) {
			return hotswap.Result{}, domain.ErrSwapInProgress
		},
	}
	c := &Client[Hit]{swapSvc: mock}

	_, err := c.HotSwap(context.Background(), "users", "user", nil)
	if !errors.Is(err, ErrSwapInProgress) {
		t.Fatalf("expected ErrSwapInProgress, got %v", err)
	}
}

func TestClient_CreateIndex(t *testing.T) {
	mock := &mockSwapUC{
		createIndexFn: func(
			_ context.Context, alias, docType string, fields []string, m domain.Mappings, refresh bool,
		) (string, bool, error) {
			if alias != "users" || docType != "user" {
				t.Errorf("alias/docType = %q/%q", alias, docType)
			}
			if !reflect.DeepEqual(fields, []string{"email"}) {
				t.Errorf("fields = %v", fields)
			}
			if m != nil {
				t.Errorf("mappings = %v, want nil", m)
			}
			if !refresh {
				t.Error("expected refresh")
			}
			return "users_5", true, nil
		},
	}
	c := &Client[Hit]{swapSvc: mock}

	info, err := c.CreateIndex(context.Background(), "users", "user", WithFields("email"), WithRefresh())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != (IndexInfo{Name: "users_5", Created: true}) {
		t.Errorf("info = %+v", info)
	}
}

func TestClient_DeleteAlias(t *testing.T) {
	mock := &mockSwapUC{
		deleteAliasFn: func(_ context.Context, alias string, refresh bool) (bool, error) {
			return alias == "users" && refresh, nil
		},
	}
	c := &Client[Hit]{swapSvc: mock}

	deleted, err := c.DeleteAlias(context.Background(), "users", true)
	if err != nil || !deleted {
		t.Errorf("DeleteAlias = (%v, %v), want (true, nil)", deleted, err)
	}
	deleted, err = c.DeleteAlias(context.Background(), "ghost", true)
	if err != nil || deleted {
		t.Errorf("DeleteAlias(ghost) = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestClient_Resolve(t *testing.T) {
	boom := errors.New("boom")
	mock := &mockSwapUC{
		resolveFn: func(_ context.Context, alias string) ([]string, error) {
			if alias == "broken" {
				return nil, boom
			}
			return []string{"users_1", "users_2"}, nil
		},
	}
	c := &Client[Hit]{swapSvc: mock}

	indices, err := c.Resolve(context.Background(), "users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(indices, []string{"users_1", "users_2"}) {
		t.Errorf("indices = %v", indices)
	}

	if _, err := c.Resolve(context.Background(), "broken"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestClient_Health(t *testing.T) {
	tests := []struct {
		name    string
		status  healthuc.Status
		healthy bool
	}{
		{"ok", healthuc.Healthy, true},
		{"degraded", healthuc.Degraded, true},
		{"error", healthuc.Unhealthy, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &Client[Hit]{healthSvc: &mockHealthUC{report: healthuc.Report{
				Status: tc.status,
				Checks: map[string]healthuc.CheckResult{"engine": healthuc.CheckOK, "lock": healthuc.CheckError},
			}}}

			h := c.Health(context.Background())
			if h.Status != string(tc.status) {
				t.Errorf("status = %q", h.Status)
			}
			if h.Healthy() != tc.healthy {
				t.Errorf("healthy = %v, want %v", h.Healthy(), tc.healthy)
			}
			if h.Checks["engine"] != "ok" || h.Checks["lock"] != "error" {
				t.Errorf("checks = %v", h.Checks)
			}
		})
	}
}
