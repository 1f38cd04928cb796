package hotswap

import (
	"context"

	"github.com/kailas-cloud/swapdex/internal/engine"
	"github.com/kailas-cloud/swapdex/internal/repository/index"
)

// IndexManager creates and retires physical indexes.
type IndexManager interface {
	CreateIndex(ctx context.Context, spec index.Spec) (bool, error)
	DeleteIndex(ctx context.Context, name string, refresh bool) (bool, error)
	RefreshIndex(ctx context.Context, name string)
}

// AliasManager resolves and atomically swaps alias bindings.
type AliasManager interface {
	Resolve(ctx context.Context, alias string) ([]string, error)
	Swap(ctx context.Context, alias, newIndex string, old []string) error
}

// BulkWriter opens bulk indexers into a physical index.
type BulkWriter interface {
	NewBulkIndexer(index string, workers int) (engine.BulkIndexer, error)
}
