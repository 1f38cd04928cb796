package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/config"
	"github.com/kailas-cloud/swapdex/internal/domain/codec"
	"github.com/kailas-cloud/swapdex/internal/domain/hit"
	"github.com/kailas-cloud/swapdex/internal/domain/query"
	"github.com/kailas-cloud/swapdex/internal/domain/result"
	"github.com/kailas-cloud/swapdex/internal/engine/elastic"
	"github.com/kailas-cloud/swapdex/internal/events"
	"github.com/kailas-cloud/swapdex/internal/lock"
	redislock "github.com/kailas-cloud/swapdex/internal/lock/redis"
	"github.com/kailas-cloud/swapdex/internal/metrics"
	aliasrepo "github.com/kailas-cloud/swapdex/internal/repository/alias"
	indexrepo "github.com/kailas-cloud/swapdex/internal/repository/index"
	mongosource "github.com/kailas-cloud/swapdex/internal/source/mongo"
	healthuc "github.com/kailas-cloud/swapdex/internal/usecase/health"
	"github.com/kailas-cloud/swapdex/internal/usecase/hotswap"
	searchuc "github.com/kailas-cloud/swapdex/internal/usecase/search"
)

// app is the composition root shared by all commands.
type app struct {
	store   *elastic.Store
	loader  *mongosource.Loader
	swaps   *hotswap.Service
	search  *searchuc.Service[hit.Hit]
	health  *healthuc.Service
	closers []func()
	logger  *zap.Logger
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterSwapMetrics()

	a := &app{logger: logger}

	store, err := elastic.NewStore(elastic.Config{
		Addresses:       cfg.Engine.URLs,
		Username:        cfg.Engine.Username,
		Password:        cfg.Engine.Password,
		MaxConnsPerHost: cfg.Engine.MaxConnections,
		RequestTimeout:  cfg.Engine.RequestTimeout(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	readiness := time.Duration(cfg.Engine.ReadinessTimeoutSec) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		a.Close()
		return nil, fmt.Errorf("engine not ready: %w", err)
	}
	logger.Info("Connected to search engine", zap.Strings("urls", cfg.Engine.URLs))

	// Pass a nil interface, not a typed nil pointer, when the lock is local.
	var lockPinger healthuc.Pinger
	var locker lock.Locker = lock.NewLocal()
	if cfg.Lock.Driver == "redis" {
		rl, err := redislock.New(redislock.Config{
			Addrs:    cfg.Lock.Addrs,
			Username: cfg.Lock.Username,
			Password: cfg.Lock.Password,
			TTL:      cfg.Lock.TTL(),
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create redis lock: %w", err)
		}
		a.closers = append(a.closers, rl.Close)
		locker, lockPinger = rl, rl
	}

	var notifier events.Notifier = events.Nop{}
	if cfg.Events.NATSURL != "" {
		n, err := events.Connect(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		a.closers = append(a.closers, n.Close)
		notifier = n
	}

	if cfg.Source.Enabled() {
		loader, err := mongosource.Connect(ctx, mongosource.Config{
			URI:      cfg.Source.MongoURI,
			Database: cfg.Source.Database,
			Timeout:  time.Duration(cfg.Source.TimeoutSec) * time.Second,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.loader = loader
		a.closers = append(a.closers, func() {
			cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := loader.Close(cctx); err != nil {
				logger.Warn("Failed to disconnect mongo", zap.Error(err))
			}
		})
	}

	c := codec.JSON{}
	indexes := indexrepo.New(store, logger).WithCodec(c)
	aliases := aliasrepo.New(store, logger).WithCodec(c)

	a.swaps = hotswap.New(indexes, aliases, store).
		WithLocker(locker).
		WithNotifier(notifier).
		WithCodec(c).
		WithLogger(logger)
	a.search = searchuc.New[hit.Hit](aliases, store, result.New[hit.Hit](hit.Decode, c)).
		WithCompiler(query.NewCompiler(c)).
		WithLogger(logger)
	a.health = healthuc.New(store, lockPinger)

	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// withApp builds the composition root for short-lived commands.
func withApp(ctx context.Context, opts *rootOptions, fn func(a *app) error) error {
	a, err := newApp(ctx, opts.cfg, opts.logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
