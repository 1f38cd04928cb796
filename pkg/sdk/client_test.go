package swapdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := NewDefault(context.Background())
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestNew_NilDecoder(t *testing.T) {
	_, err := New[Hit](context.Background(), nil, WithElasticsearch("http://localhost:9200"))
	if err == nil {
		t.Fatal("expected error for nil decoder")
	}
}

func TestNew_EngineNotReady(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewDefault(ctx,
		WithElasticsearch("http://127.0.0.1:1"),
		WithReadinessTimeout(200*time.Millisecond),
	)
	if err == nil {
		t.Fatal("expected readiness error")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithElasticsearch("http://a:9200", "http://b:9200").apply(cfg)
	if len(cfg.addresses) != 2 || cfg.addresses[1] != "http://b:9200" {
		t.Errorf("addresses = %v", cfg.addresses)
	}

	WithBasicAuth("elastic", "secret").apply(cfg)
	if cfg.username != "elastic" || cfg.password != "secret" {
		t.Errorf("auth = (%q, %q)", cfg.username, cfg.password)
	}

	rt := http.DefaultTransport
	WithTransport(rt).apply(cfg)
	if cfg.transport != rt {
		t.Error("expected transport to be set")
	}

	WithMaxWriteConnections(8).apply(cfg)
	WithMaxConnections(32).apply(cfg)
	WithRequestTimeout(3 * time.Second).apply(cfg)
	WithReadinessTimeout(time.Minute).apply(cfg)
	if cfg.maxWriteConns != 8 || cfg.maxConns != 32 || cfg.requestTimeout != 3*time.Second || cfg.readinessTimeout != time.Minute {
		t.Errorf("tuning = (%d, %d, %s, %s)", cfg.maxWriteConns, cfg.maxConns, cfg.requestTimeout, cfg.readinessTimeout)
	}

	WithRedisLock("localhost:6379", "pass", 5*time.Minute).apply(cfg)
	if len(cfg.redisAddrs) != 1 || cfg.redisPassword != "pass" || cfg.lockTTL != 5*time.Minute {
		t.Errorf("redis = (%v, %q, %s)", cfg.redisAddrs, cfg.redisPassword, cfg.lockTTL)
	}

	WithNATS("nats://localhost:4222", "search").apply(cfg)
	if cfg.natsURL != "nats://localhost:4222" || cfg.natsSubject != "search" {
		t.Errorf("nats = (%q, %q)", cfg.natsURL, cfg.natsSubject)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_Idempotent(t *testing.T) {
	calls := 0
	c := &Client[Hit]{closers: []func(){func() { calls++ }}}
	c.Close()
	c.Close()
	if calls != 1 {
		t.Errorf("closer called %d times, want 1", calls)
	}
}

func TestClient_Close_ReverseOrder(t *testing.T) {
	var order []string
	c := &Client[Hit]{closers: []func(){
		func() { order = append(order, "engine") },
		func() { order = append(order, "lock") },
	}}
	c.Close()
	if len(order) != 2 || order[0] != "lock" || order[1] != "engine" {
		t.Errorf("close order = %v", order)
	}
}

func TestClient_Ping(t *testing.T) {
	c := &Client[Hit]{engine: &mockPinger{}}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	down := errors.New("connection refused")
	c = &Client[Hit]{engine: &mockPinger{err: down}}
	if err := c.Ping(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected wrapped ping error, got %v", err)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", "users", time.Now(), nil)
	obs.observe("test", "users", time.Now(), errors.New("err"))
	obs.swapped("users", SwapResult{Indexed: 1})
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", "users", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("search", "users", time.Now(), errors.New("fail"))
	obs.swapped("users", SwapResult{Indexed: 7, Failed: 2})

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "users", "ok")); got != 1 {
		t.Errorf("ok operations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "users", "error")); got != 1 {
		t.Errorf("error operations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.documents.WithLabelValues("users", "indexed")); got != 7 {
		t.Errorf("indexed documents = %v, want 7", got)
	}
	if got := testutil.ToFloat64(obs.metrics.documents.WithLabelValues("users", "failed")); got != 2 {
		t.Errorf("failed documents = %v, want 2", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}

	second.observe("ping", "", time.Now(), nil)
	if got := testutil.ToFloat64(first.metrics.operations.WithLabelValues("ping", "", "ok")); got != 1 {
		t.Errorf("shared counter = %v, want 1", got)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", "users", time.Now(), nil)
	obs.observe("test.op", "users", time.Now(), errors.New("test error"))
	obs.swapped("users", SwapResult{NewIndex: "users_1"})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("search users: %w", ErrAliasNotFound), "alias_not_found"},
		{fmt.Errorf("hot swap users: %w", ErrSwapInProgress), "busy"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range tests {
		if got := statusOf(tc.err); got != tc.want {
			t.Errorf("statusOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
