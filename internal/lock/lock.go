// Package lock serializes hot swaps per alias.
package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/swapdex/internal/domain"
)

// Locker hands out exclusive per-key leases. The returned release func is
// safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Local is an in-process Locker.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocal creates an in-process locker.
func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

// Acquire blocks until key is free or ctx ends. A ctx that ends first yields
// domain.ErrSwapInProgress.
func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSwapInProgress, key, ctx.Err())
	}
}
