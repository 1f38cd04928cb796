package swapdex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/codec"
	"github.com/kailas-cloud/swapdex/internal/domain/hit"
	"github.com/kailas-cloud/swapdex/internal/domain/query"
	"github.com/kailas-cloud/swapdex/internal/domain/result"
	"github.com/kailas-cloud/swapdex/internal/engine/elastic"
	"github.com/kailas-cloud/swapdex/internal/events"
	"github.com/kailas-cloud/swapdex/internal/lock"
	redislock "github.com/kailas-cloud/swapdex/internal/lock/redis"
	aliasrepo "github.com/kailas-cloud/swapdex/internal/repository/alias"
	indexrepo "github.com/kailas-cloud/swapdex/internal/repository/index"
	"github.com/kailas-cloud/swapdex/internal/source"
	healthuc "github.com/kailas-cloud/swapdex/internal/usecase/health"
	"github.com/kailas-cloud/swapdex/internal/usecase/hotswap"
	searchuc "github.com/kailas-cloud/swapdex/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type searchUseCase[H any] interface {
	Search(ctx context.Context, alias string, q query.Query) ([]H, error)
}

type swapUseCase interface {
	HotSwap(ctx context.Context, req hotswap.Request) (hotswap.Result, error)
	CreateIndex(
		ctx context.Context, alias, docType string, fields []string, mappings domain.Mappings, refresh bool,
	) (string, bool, error)
	DeleteAlias(ctx context.Context, alias string, refresh bool) (bool, error)
	Resolve(ctx context.Context, alias string) ([]string, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Client is the swapdex SDK entry point. H is the type each search hit is
// decoded into.
type Client[H any] struct {
	engine        pinger
	searchSvc     searchUseCase[H]
	swapSvc       swapUseCase
	healthSvc     healthUseCase
	maxWriteConns int
	obs           *observer

	closeOnce sync.Once
	closers   []func()
}

// NewDefault creates a Client returning id/score hits.
func NewDefault(ctx context.Context, opts ...Option) (*Client[Hit], error) {
	return New[Hit](ctx, hit.Decode, opts...)
}

// New creates a Client that decodes hits with decode and waits until the
// engine answers. The provided context bounds the readiness check.
func New[H any](ctx context.Context, decode Decoder[H], opts ...Option) (*Client[H], error) {
	if decode == nil {
		return nil, errors.New("swapdex: decoder required")
	}
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addresses) == 0 {
		return nil, errors.New("swapdex: engine address required (use WithElasticsearch)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := elastic.NewStore(elastic.Config{
		Addresses:       cfg.addresses,
		Username:        cfg.username,
		Password:        cfg.password,
		MaxConnsPerHost: cfg.maxConns,
		RequestTimeout:  cfg.requestTimeout,
		Transport:       cfg.transport,
	}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("swapdex: create engine store: %w", err)
	}

	c := &Client[H]{
		engine:        store,
		maxWriteConns: cfg.maxWriteConns,
		obs:           obs,
		closers:       []func(){store.Close},
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		c.Close()
		return nil, fmt.Errorf("swapdex: engine not ready: %w", err)
	}

	if err := c.wire(store, decode, cfg); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client[H]) wire(store *elastic.Store, decode Decoder[H], cfg *clientConfig) error {
	var locker lock.Locker = lock.NewLocal()
	var lockPinger healthuc.Pinger
	if len(cfg.redisAddrs) > 0 {
		rl, err := redislock.New(redislock.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
			TTL:      cfg.lockTTL,
		}, zap.NewNop())
		if err != nil {
			return fmt.Errorf("swapdex: create redis lock: %w", err)
		}
		c.closers = append(c.closers, rl.Close)
		locker, lockPinger = rl, rl
	}

	var notifier events.Notifier = events.Nop{}
	if cfg.natsURL != "" {
		n, err := events.Connect(cfg.natsURL, cfg.natsSubject, zap.NewNop())
		if err != nil {
			return fmt.Errorf("swapdex: connect nats: %w", err)
		}
		c.closers = append(c.closers, n.Close)
		notifier = n
	}

	jc := codec.JSON{}
	aliases := aliasrepo.New(store, nil).WithCodec(jc)
	indexes := indexrepo.New(store, nil).WithCodec(jc)

	c.swapSvc = hotswap.New(indexes, aliases, store).
		WithLocker(locker).
		WithNotifier(notifier).
		WithCodec(jc)
	c.searchSvc = searchuc.New[H](aliases, store, result.New[H](result.Decoder[H](decode), jc)).
		WithCompiler(query.NewCompiler(jc))
	c.healthSvc = healthuc.New(store, lockPinger)
	return nil
}

// Close releases all resources. Safe to call more than once.
func (c *Client[H]) Close() {
	c.closeOnce.Do(func() {
		for i := len(c.closers) - 1; i >= 0; i-- {
			c.closers[i]()
		}
	})
}

// Ping checks engine connectivity.
func (c *Client[H]) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err = c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs q against the newest index bound to alias. Engine failures
// yield an empty result; an unbound alias yields ErrAliasNotFound.
func (c *Client[H]) Search(ctx context.Context, alias string, q Query) (hits []H, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", alias, start, err) }()

	hits, err = c.searchSvc.Search(ctx, alias, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", alias, err)
	}
	return hits, nil
}

// HotSwap builds a new index for alias from partitions of records, then
// atomically rebinds alias to it and deletes the indexes it replaced.
func (c *Client[H]) HotSwap(
	ctx context.Context, alias, docType string, partitions [][]Record, opts ...IndexOption,
) (res SwapResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("hotswap", alias, start, err) }()

	ic := indexConfig{maxWriteConns: c.maxWriteConns}
	for _, o := range opts {
		o(&ic)
	}

	out, err := c.swapSvc.HotSwap(ctx, hotswap.Request{
		Alias:               alias,
		DocType:             docType,
		Records:             source.New(partitions...),
		Fields:              ic.fields,
		Mappings:            ic.mappings,
		MaxWriteConnections: ic.maxWriteConns,
		MaxFailed:           ic.maxFailed,
	})
	if err != nil {
		return SwapResult{}, fmt.Errorf("hot swap %s: %w", alias, err)
	}

	res = SwapResult{
		Alias:    alias,
		NewIndex: out.NewIndex,
		Retired:  out.Retired,
		Indexed:  out.Indexed,
		Failed:   out.Failed,
	}
	c.obs.swapped(alias, res)
	return res, nil
}

// CreateIndex creates a fresh index already linked to alias. Created is
// false when an index with the generated name already existed.
func (c *Client[H]) CreateIndex(
	ctx context.Context, alias, docType string, opts ...IndexOption,
) (info IndexInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.create", alias, start, err) }()

	var ic indexConfig
	for _, o := range opts {
		o(&ic)
	}

	name, created, err := c.swapSvc.CreateIndex(ctx, alias, docType, ic.fields, ic.mappings, ic.refresh)
	if err != nil {
		return IndexInfo{}, fmt.Errorf("create index for %s: %w", alias, err)
	}
	return IndexInfo{Name: name, Created: created}, nil
}

// DeleteAlias deletes every index bound to alias. It reports false when the
// alias was unbound or an index vanished before it could be deleted.
func (c *Client[H]) DeleteAlias(ctx context.Context, alias string, refresh bool) (deleted bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("alias.delete", alias, start, err) }()

	deleted, err = c.swapSvc.DeleteAlias(ctx, alias, refresh)
	if err != nil {
		return false, fmt.Errorf("delete alias %s: %w", alias, err)
	}
	return deleted, nil
}

// Resolve lists the indexes bound to alias, sorted. An unbound alias
// yields an empty slice.
func (c *Client[H]) Resolve(ctx context.Context, alias string) (indices []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("alias.resolve", alias, start, err) }()

	indices, err = c.swapSvc.Resolve(ctx, alias)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", alias, err)
	}
	return indices, nil
}
