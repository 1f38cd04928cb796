// Package search serves alias-addressed queries.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/query"
	"github.com/kailas-cloud/swapdex/internal/domain/result"
	logpkg "github.com/kailas-cloud/swapdex/internal/logger"
	"github.com/kailas-cloud/swapdex/internal/metrics"
)

// Service resolves an alias, compiles the query and decodes hits into H.
type Service[H any] struct {
	aliases   AliasResolver
	searcher  Searcher
	transform *result.Transformer[H]
	compiler  *query.Compiler
	logger    *zap.Logger
}

// New creates a search service.
func New[H any](aliases AliasResolver, searcher Searcher, transform *result.Transformer[H]) *Service[H] {
	return &Service[H]{
		aliases:   aliases,
		searcher:  searcher,
		transform: transform,
		compiler:  query.NewCompiler(nil),
		logger:    zap.NewNop(),
	}
}

// WithCompiler overrides the query compiler.
func (s *Service[H]) WithCompiler(c *query.Compiler) *Service[H] {
	if c != nil {
		s.compiler = c
	}
	return s
}

// WithLogger sets the logger.
func (s *Service[H]) WithLogger(l *zap.Logger) *Service[H] {
	if l != nil {
		s.logger = l
	}
	return s
}

// Search queries the newest index bound to alias. Engine-side failures, in
// the alias lookup or the search itself, degrade to an empty result. An
// unbound alias is domain.ErrAliasNotFound and an undecodable response is
// domain.ErrDecodeFailure.
func (s *Service[H]) Search(ctx context.Context, alias string, q query.Query) ([]H, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues(alias).Observe(time.Since(start).Seconds())
	}()

	indices, err := s.aliases.Resolve(ctx, alias)
	if err != nil {
		logpkg.FromContext(ctx, s.logger).Warn("Alias lookup failed, returning no hits",
			zap.String("alias", alias), zap.Error(err))
		metrics.SearchRequestsTotal.WithLabelValues(alias, "degraded").Inc()
		return []H{}, nil
	}
	if len(indices) == 0 {
		metrics.SearchRequestsTotal.WithLabelValues(alias, "error").Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrAliasNotFound, alias)
	}
	index := domain.NewestIndex(alias, indices)

	resp, err := s.searcher.Search(ctx, index, []byte(s.compiler.Compile(q)))
	if err != nil || !resp.IsSuccess() {
		fields := []zap.Field{zap.String("alias", alias), zap.String("index", index)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		} else {
			fields = append(fields, zap.Int("status", resp.StatusCode), zap.ByteString("body", resp.Body))
		}
		logpkg.FromContext(ctx, s.logger).Warn("Search failed, returning no hits", fields...)
		metrics.SearchRequestsTotal.WithLabelValues(alias, "degraded").Inc()
		return []H{}, nil
	}

	hits, err := s.transform.Transform(resp.Body)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(alias, "error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrEngine, err)
	}
	metrics.SearchRequestsTotal.WithLabelValues(alias, "ok").Inc()
	return hits, nil
}
