package elastic

import (
	"bytes"
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/engine"
)

const defaultFlushBytes = 5 << 20

// NewBulkIndexer opens an esutil bulk indexer writing into index with the
// given number of concurrent workers (one connection each) on the bulk pool.
func (s *Store) NewBulkIndexer(index string, workers int) (engine.BulkIndexer, error) {
	if workers <= 0 {
		workers = 1
	}
	logger := s.logger.With(zap.String("index", index))

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     s.bulk,
		Index:      index,
		NumWorkers: workers,
		FlushBytes: defaultFlushBytes,
		OnError: func(_ context.Context, err error) {
			logger.Warn("Bulk flush failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, &engine.Error{Op: engine.OpBulk, Err: err}
	}
	return &bulkIndexer{bi: bi, logger: logger}, nil
}

type bulkIndexer struct {
	bi     esutil.BulkIndexer
	logger *zap.Logger
}

// Add queues one document for indexing under id. Indexing is an upsert, so
// re-running a failed population is safe.
func (b *bulkIndexer) Add(ctx context.Context, id string, body []byte) error {
	err := b.bi.Add(ctx, esutil.BulkIndexerItem{
		Action:     "index",
		DocumentID: id,
		Body:       bytes.NewReader(body),
		OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err != nil {
				b.logger.Warn("Bulk item failed", zap.String("id", item.DocumentID), zap.Error(err))
				return
			}
			b.logger.Warn("Bulk item rejected",
				zap.String("id", item.DocumentID),
				zap.Int("status", res.Status),
				zap.String("type", res.Error.Type),
				zap.String("reason", res.Error.Reason),
			)
		},
	})
	if err != nil {
		return &engine.Error{Op: engine.OpBulk, Err: fmt.Errorf("add %s: %w", id, err)}
	}
	return nil
}

// Close flushes pending documents and waits for workers.
func (b *bulkIndexer) Close(ctx context.Context) error {
	if err := b.bi.Close(ctx); err != nil {
		return &engine.Error{Op: engine.OpBulk, Err: err}
	}
	return nil
}

func (b *bulkIndexer) Stats() engine.BulkStats {
	st := b.bi.Stats()
	return engine.BulkStats{
		Added:   st.NumAdded,
		Indexed: st.NumFlushed,
		Failed:  st.NumFailed,
	}
}
