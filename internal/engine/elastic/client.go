// Package elastic implements engine.Store on top of go-elasticsearch.
package elastic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/engine"
)

// Compile-time check: Store implements engine.Store.
var _ engine.Store = (*Store)(nil)

const defaultMaxConnsPerHost = 16

// Config holds connection parameters for the engine.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	// MaxConnsPerHost bounds the pool used by searches, existence checks and alias
	// updates. Bulk writes run on a separate pool bounded by their worker
	// count, so a hot swap never starves reads.
	MaxConnsPerHost int
	RequestTimeout  time.Duration
	// Transport overrides the HTTP transport (tests). When set, reads and bulk
	// writes share it and Close does not touch it.
	Transport http.RoundTripper
}

// Store implements engine.Store via go-elasticsearch.
type Store struct {
	es   *elasticsearch.Client
	bulk *elasticsearch.Client

	transports []*http.Transport
	logger     *zap.Logger
	closeOnce  sync.Once
}

// NewStore creates an engine store. Retries are disabled: every call is a
// single request and failures surface to the caller as-is.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("addresses is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{logger: logger}

	readRT, bulkRT := cfg.Transport, cfg.Transport
	if cfg.Transport == nil {
		conns := cfg.MaxConnsPerHost
		if conns <= 0 {
			conns = defaultMaxConnsPerHost
		}
		read := newTransport(conns, cfg.RequestTimeout)
		// No MaxConnsPerHost: NumWorkers of each bulk indexer is the limit.
		bulk := newTransport(0, cfg.RequestTimeout)
		s.transports = []*http.Transport{read, bulk}
		readRT, bulkRT = read, bulk
	}

	var err error
	if s.es, err = newClient(cfg, readRT); err != nil {
		return nil, err
	}
	if s.bulk, err = newClient(cfg, bulkRT); err != nil {
		return nil, err
	}
	return s, nil
}

func newTransport(maxConns int, headerTimeout time.Duration) *http.Transport {
	idle := maxConns
	if idle <= 0 {
		idle = defaultMaxConnsPerHost
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          idle,
		MaxIdleConnsPerHost:   idle,
		MaxConnsPerHost:       maxConns,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
	}
}

func newClient(cfg Config, rt http.RoundTripper) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    rt,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return es, nil
}

// Ping checks connectivity with GET /.
func (s *Store) Ping(ctx context.Context) error {
	resp, err := s.do(engine.OpPing, func() (*esapi.Response, error) {
		return s.es.Info(s.es.Info.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &engine.Error{Op: engine.OpPing, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}

// Close releases pooled connections. Safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		for _, t := range s.transports {
			t.CloseIdleConnections()
		}
	})
}

// WaitForReady polls Ping until the engine responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for engine: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// do runs one esapi call and drains its body.
func (s *Store) do(op string, call func() (*esapi.Response, error)) (*engine.Response, error) {
	res, err := call()
	if err != nil {
		return nil, &engine.Error{Op: op, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &engine.Error{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return &engine.Response{StatusCode: res.StatusCode, Body: body}, nil
}

// status runs a HEAD request and returns only the status code.
func (s *Store) status(op string, call func() (*esapi.Response, error)) (int, error) {
	resp, err := s.do(op, call)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}
