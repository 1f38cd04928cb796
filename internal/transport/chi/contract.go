package chi

import (
	"context"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/hit"
	"github.com/kailas-cloud/swapdex/internal/domain/query"
	"github.com/kailas-cloud/swapdex/internal/source"
	healthuc "github.com/kailas-cloud/swapdex/internal/usecase/health"
	"github.com/kailas-cloud/swapdex/internal/usecase/hotswap"
)

// SearchService runs compiled queries against an alias.
type SearchService interface {
	Search(ctx context.Context, alias string, q query.Query) ([]hit.Hit, error)
}

// SwapService manages the indexes behind an alias.
type SwapService interface {
	HotSwap(ctx context.Context, req hotswap.Request) (hotswap.Result, error)
	CreateIndex(
		ctx context.Context, alias, docType string, fields []string, mappings domain.Mappings, refresh bool,
	) (string, bool, error)
	DeleteAlias(ctx context.Context, alias string, refresh bool) (bool, error)
	Resolve(ctx context.Context, alias string) ([]string, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// SourceLoader reads a bulk source collection.
type SourceLoader interface {
	Load(ctx context.Context, req source.LoadRequest) (source.Dataset, error)
}
