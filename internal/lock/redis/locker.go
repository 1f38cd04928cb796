// Package redis implements lock.Locker on Redis so swaps are serialized
// across processes.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/lock"
)

// Compile-time check: Locker implements lock.Locker.
var _ lock.Locker = (*Locker)(nil)

const (
	keyPrefix       = "swapdex:lock:"
	defaultTTL      = 10 * time.Minute
	defaultInterval = 200 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// renewScript extends the lease only while it still holds our token.
const renewScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	// TTL bounds how long a crashed holder blocks others. A live holder
	// renews the lease every TTL/3, so swaps may outlast it.
	TTL time.Duration
}

// Locker is a SET NX PX lease lock.
type Locker struct {
	client   rueidis.Client
	ttl      time.Duration
	interval time.Duration
	renew    time.Duration
	logger   *zap.Logger
}

// New connects to Redis.
func New(cfg Config, logger *zap.Logger) (*Locker, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return newLocker(client, cfg.TTL, logger), nil
}

func newLocker(c rueidis.Client, ttl time.Duration, logger *zap.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locker{client: c, ttl: ttl, interval: defaultInterval, renew: max(ttl/3, time.Millisecond), logger: logger}
}

// Ping checks connectivity.
func (l *Locker) Ping(ctx context.Context) error {
	if err := l.client.Do(ctx, l.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (l *Locker) Close() {
	l.client.Close()
}

// Acquire polls SET NX until the lease is taken or ctx ends.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		ok, err := l.tryAcquire(ctx, redisKey, token)
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrSwapInProgress, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) tryAcquire(ctx context.Context, key, token string) (bool, error) {
	cmd := l.client.B().Set().Key(key).Value(token).Nx().PxMilliseconds(l.ttl.Milliseconds()).Build()
	err := l.client.Do(ctx, cmd).Error()
	if rueidis.IsRedisNil(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// releaser starts renewing the lease and returns the func that stops
// renewal and deletes the key.
func (l *Locker) releaser(key, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(key, token, stop)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// The caller's ctx may already be done; release on a fresh one.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			cmd := l.client.B().Eval().Script(releaseScript).Numkeys(1).Key(key).Arg(token).Build()
			if err := l.client.Do(ctx, cmd).Error(); err != nil {
				l.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
			}
		})
	}
}

func (l *Locker) keepAlive(key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.renew)
	defer ticker.Stop()
	ttl := strconv.FormatInt(l.ttl.Milliseconds(), 10)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), l.renew)
		cmd := l.client.B().Eval().Script(renewScript).Numkeys(1).Key(key).Arg(token, ttl).Build()
		n, err := l.client.Do(ctx, cmd).AsInt64()
		cancel()
		switch {
		case err != nil:
			// Transient; the next tick retries while the lease is still live.
			l.logger.Warn("Failed to renew lock", zap.String("key", key), zap.Error(err))
		case n == 0:
			l.logger.Error("Lock lease lost", zap.String("key", key))
			return
		}
	}
}
