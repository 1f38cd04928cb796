package swapdex

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addresses        []string
	username         string
	password         string
	transport        http.RoundTripper
	maxWriteConns    int
	maxConns         int
	requestTimeout   time.Duration
	readinessTimeout time.Duration

	redisAddrs    []string
	redisPassword string
	lockTTL       time.Duration

	natsURL     string
	natsSubject string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch sets the engine node URLs.
func WithElasticsearch(addresses ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addresses = addresses
	})
}

// WithBasicAuth sets engine credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithTransport overrides the HTTP transport used to reach the engine.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithMaxWriteConnections caps concurrent bulk connections per hot swap.
// Datasets with more partitions are coalesced down to n. Zero, the default,
// means no cap: one connection per partition.
func WithMaxWriteConnections(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxWriteConns = n
	})
}

// WithMaxConnections bounds the connection pool used by searches, alias
// existence checks and index management. Bulk writes use their own pool.
// Default: 16.
func WithMaxConnections(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConns = n
	})
}

// WithRequestTimeout bounds each engine request.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestTimeout = d
	})
}

// WithReadinessTimeout bounds the initial engine readiness wait.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithRedisLock serializes hot swaps across processes through Redis.
// Without it swaps are serialized within this process only.
func WithRedisLock(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
		c.lockTTL = ttl
	})
}

// WithNATS publishes a swap event to <prefix>.<alias>.swapped after every
// successful hot swap.
func WithNATS(url, subjectPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.natsURL = url
		c.natsSubject = subjectPrefix
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
