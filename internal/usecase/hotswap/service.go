// Package hotswap rebuilds an alias into a fresh index and cuts readers over
// atomically.
package hotswap

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/codec"
	"github.com/kailas-cloud/swapdex/internal/events"
	"github.com/kailas-cloud/swapdex/internal/lock"
	logpkg "github.com/kailas-cloud/swapdex/internal/logger"
	"github.com/kailas-cloud/swapdex/internal/metrics"
	"github.com/kailas-cloud/swapdex/internal/repository/index"
	"github.com/kailas-cloud/swapdex/internal/source"
)

// Request describes one hot swap.
type Request struct {
	Alias    string
	DocType  string
	Records  source.Dataset
	Fields   []string
	Mappings domain.Mappings
	// MaxWriteConnections caps concurrent bulk connections. Zero keeps the
	// dataset's natural parallelism.
	MaxWriteConnections int
	// MaxFailed is how many records may fail to index before the swap is
	// abandoned. Zero requires every record to land.
	MaxFailed uint64
}

// Result reports what a hot swap did.
type Result struct {
	NewIndex string
	Retired  []string
	Indexed  uint64
	Failed   uint64
}

// Service performs hot swaps and alias-level index management.
type Service struct {
	indexes  IndexManager
	aliases  AliasManager
	bulk     BulkWriter
	locker   lock.Locker
	notifier events.Notifier
	codec    codec.Codec
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a hot-swap service with an in-process lock and no event
// publishing.
func New(indexes IndexManager, aliases AliasManager, bulk BulkWriter) *Service {
	return &Service{
		indexes:  indexes,
		aliases:  aliases,
		bulk:     bulk,
		locker:   lock.NewLocal(),
		notifier: events.Nop{},
		codec:    codec.JSON{},
		now:      time.Now,
		logger:   zap.NewNop(),
	}
}

// WithLocker replaces the per-alias lock (e.g. a Redis lock shared across
// processes).
func (s *Service) WithLocker(l lock.Locker) *Service {
	if l != nil {
		s.locker = l
	}
	return s
}

// WithNotifier sets where swap events are published.
func (s *Service) WithNotifier(n events.Notifier) *Service {
	if n != nil {
		s.notifier = n
	}
	return s
}

// WithCodec overrides the document serializer.
func (s *Service) WithCodec(c codec.Codec) *Service {
	s.codec = codec.OrDefault(c)
	return s
}

// WithClock overrides the clock used for index names.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// HotSwap builds a new unlinked index from req.Records, then repoints the
// alias in one atomic request and deletes the superseded indexes. Swaps on
// the same alias are serialized.
func (s *Service) HotSwap(ctx context.Context, req Request) (Result, error) {
	if req.Alias == "" {
		return Result{}, fmt.Errorf("%w: alias is required", domain.ErrInvalidRequest)
	}

	release, err := s.locker.Acquire(ctx, req.Alias)
	if err != nil {
		metrics.HotSwapTotal.WithLabelValues(req.Alias, "busy").Inc()
		return Result{}, err
	}
	defer release()

	start := time.Now()
	res, err := s.hotSwap(ctx, req)
	metrics.HotSwapDuration.WithLabelValues(req.Alias).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.HotSwapTotal.WithLabelValues(req.Alias, "error").Inc()
		return res, err
	}
	metrics.HotSwapTotal.WithLabelValues(req.Alias, "ok").Inc()
	metrics.BulkDocumentsTotal.WithLabelValues(req.Alias, "indexed").Add(float64(res.Indexed))
	metrics.BulkDocumentsTotal.WithLabelValues(req.Alias, "failed").Add(float64(res.Failed))
	return res, nil
}

func (s *Service) hotSwap(ctx context.Context, req Request) (Result, error) {
	log := logpkg.FromContext(ctx, s.logger).With(zap.String("alias", req.Alias))
	name := domain.NewIndexName(req.Alias, s.now())

	created, err := s.indexes.CreateIndex(ctx, index.Spec{
		Name:     name,
		DocType:  req.DocType,
		Fields:   req.Fields,
		Mappings: req.Mappings,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create index %s: %w", name, err)
	}
	if !created {
		return Result{}, fmt.Errorf("%w: index %s already exists", domain.ErrUnexpectedEngineState, name)
	}

	records := req.Records
	parallelism := records.NumPartitions()
	if req.MaxWriteConnections > 0 && parallelism > req.MaxWriteConnections {
		records = records.Coalesce(req.MaxWriteConnections)
		parallelism = req.MaxWriteConnections
	}
	if parallelism < 1 {
		parallelism = 1
	}

	res := Result{NewIndex: name}
	res.Indexed, res.Failed, err = s.populate(ctx, name, records, parallelism)
	if err != nil {
		s.discard(name, log)
		return Result{}, fmt.Errorf("populate %s: %w", name, err)
	}
	if res.Failed > req.MaxFailed {
		s.discard(name, log)
		metrics.BulkDocumentsTotal.WithLabelValues(req.Alias, "failed").Add(float64(res.Failed))
		return Result{}, fmt.Errorf("%w: populate %s: %d of %d records failed (limit %d)",
			domain.ErrEngine, name, res.Failed, res.Failed+res.Indexed, req.MaxFailed)
	}
	s.indexes.RefreshIndex(ctx, name)
	log.Info("Populated new index",
		zap.String("index", name),
		zap.Int("workers", parallelism),
		zap.Uint64("indexed", res.Indexed),
		zap.Uint64("failed", res.Failed),
	)

	old, err := s.aliases.Resolve(ctx, req.Alias)
	if err != nil {
		s.discard(name, log)
		return Result{}, fmt.Errorf("resolve alias: %w", err)
	}
	if err := s.aliases.Swap(ctx, req.Alias, name, old); err != nil {
		s.discard(name, log)
		return Result{}, err
	}

	res.Retired = s.retire(ctx, name, old, log)

	ev := events.SwapEvent{
		Alias: req.Alias, NewIndex: name, Retired: res.Retired,
		Indexed: res.Indexed, Failed: res.Failed, At: s.now().UTC(),
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		log.Warn("Failed to publish swap event", zap.Error(err))
	}
	log.Info("Hot swap complete", zap.String("index", name), zap.Strings("retired", res.Retired))
	return res, nil
}

// populate feeds every partition into one bulk indexer with `workers`
// connections. Records without an id are counted as failed.
func (s *Service) populate(ctx context.Context, name string, records source.Dataset, workers int) (uint64, uint64, error) {
	bi, err := s.bulk.NewBulkIndexer(name, workers)
	if err != nil {
		return 0, 0, err
	}

	var skipped atomic.Uint64
	g, gctx := errgroup.WithContext(ctx)
	for _, part := range records.Partitions() {
		g.Go(func() error {
			for _, rec := range part {
				id, ok := rec.ID()
				if !ok {
					skipped.Add(1)
					continue
				}
				body, err := s.codec.Marshal(rec)
				if err != nil {
					s.logger.Warn("Skipping unencodable record", zap.String("id", id), zap.Error(err))
					skipped.Add(1)
					continue
				}
				if err := bi.Add(gctx, id, body); err != nil {
					return err
				}
			}
			return nil
		})
	}
	feedErr := g.Wait()
	closeErr := bi.Close(ctx)
	if feedErr != nil {
		return 0, 0, feedErr
	}
	if closeErr != nil {
		return 0, 0, closeErr
	}

	st := bi.Stats()
	return st.Indexed, st.Failed + skipped.Load(), nil
}

// retire deletes superseded indexes. Ones already removed by the swap are
// skipped by the existence check; failures are only logged.
func (s *Service) retire(ctx context.Context, name string, old []string, log *zap.Logger) []string {
	retired := make([]string, 0, len(old))
	for _, o := range old {
		if o == name {
			continue
		}
		if _, err := s.indexes.DeleteIndex(ctx, o, false); err != nil {
			log.Warn("Failed to delete superseded index", zap.String("index", o), zap.Error(err))
		}
		retired = append(retired, o)
	}
	return retired
}

// discard drops a new index that never became visible.
func (s *Service) discard(name string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.indexes.DeleteIndex(ctx, name, false); err != nil {
		log.Warn("Failed to discard new index", zap.String("index", name), zap.Error(err))
	}
}

// CreateIndex creates a fresh index linked to alias right away.
func (s *Service) CreateIndex(
	ctx context.Context, alias, docType string, fields []string, mappings domain.Mappings, refresh bool,
) (string, bool, error) {
	if alias == "" {
		return "", false, fmt.Errorf("%w: alias is required", domain.ErrInvalidRequest)
	}
	name := domain.NewIndexName(alias, s.now())
	created, err := s.indexes.CreateIndex(ctx, index.Spec{
		Name:      name,
		DocType:   docType,
		Fields:    fields,
		Mappings:  mappings,
		Refresh:   refresh,
		LinkAlias: alias,
	})
	if err != nil {
		return "", false, fmt.Errorf("create index %s: %w", name, err)
	}
	return name, created, nil
}

// DeleteAlias deletes every index bound to alias. It reports true only when
// the alias was bound and every index was still present when checked.
func (s *Service) DeleteAlias(ctx context.Context, alias string, refresh bool) (bool, error) {
	indices, err := s.aliases.Resolve(ctx, alias)
	if err != nil {
		return false, fmt.Errorf("resolve alias: %w", err)
	}
	if len(indices) == 0 {
		return false, nil
	}
	all := true
	for _, name := range indices {
		deleted, err := s.indexes.DeleteIndex(ctx, name, refresh)
		if err != nil {
			return false, fmt.Errorf("delete index %s: %w", name, err)
		}
		all = all && deleted
	}
	return all, nil
}

// Resolve returns the indexes currently bound to alias.
func (s *Service) Resolve(ctx context.Context, alias string) ([]string, error) {
	return s.aliases.Resolve(ctx, alias)
}
