// Package index manages the lifecycle of physical engine indexes.
package index

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/codec"
	"github.com/kailas-cloud/swapdex/internal/engine"
	"github.com/kailas-cloud/swapdex/internal/metrics"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	IndexStatus(ctx context.Context, index string) (int, error)
	CreateIndex(ctx context.Context, index string, body []byte) (*engine.Response, error)
	DeleteIndex(ctx context.Context, index string) (*engine.Response, error)
	RefreshIndex(ctx context.Context, index string) (*engine.Response, error)
}

// Spec describes an index to create.
type Spec struct {
	Name     string
	DocType  string
	Fields   []string
	Mappings domain.Mappings
	Refresh  bool
	// LinkAlias binds the index to this alias at creation. Empty keeps the
	// index unlinked.
	LinkAlias string
}

// Repo creates, deletes and refreshes physical indexes.
type Repo struct {
	store  store
	codec  codec.Codec
	logger *zap.Logger
}

// New creates an index repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, codec: codec.JSON{}, logger: logger}
}

// WithCodec overrides the payload serializer.
func (r *Repo) WithCodec(c codec.Codec) *Repo {
	r.codec = codec.OrDefault(c)
	return r
}

// IndexExists checks the index. Any status other than 200/404 is
// domain.ErrUnexpectedEngineState.
func (r *Repo) IndexExists(ctx context.Context, name string) (bool, error) {
	code, err := r.store.IndexStatus(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	switch code {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: HEAD /%s returned %d", domain.ErrUnexpectedEngineState, name, code)
	}
}

// CreateIndex creates the index unless it already exists. An existing index
// is never touched and yields false. A failed creation call is logged and
// still reports true; callers needing confirmation must check again.
func (r *Repo) CreateIndex(ctx context.Context, spec Spec) (bool, error) {
	exists, err := r.IndexExists(ctx, spec.Name)
	if err != nil {
		return false, err
	}
	if exists {
		r.logger.Warn("Index already exists, not creating", zap.String("index", spec.Name))
		return false, nil
	}

	body, err := r.codec.Marshal(BuildPayload(spec))
	if err != nil {
		return false, fmt.Errorf("encode mapping for %s: %w", spec.Name, err)
	}

	resp, err := r.store.CreateIndex(ctx, spec.Name, body)
	switch {
	case err != nil:
		r.softFailure("create_index", spec.Name, 0, err)
	case !resp.IsSuccess():
		r.softFailure("create_index", spec.Name, resp.StatusCode, nil)
	case spec.Refresh:
		r.RefreshIndex(ctx, spec.Name)
	}
	return true, nil
}

// DeleteIndex deletes the index if present. Returns false when it was already
// absent. A failed delete call is logged, not returned.
func (r *Repo) DeleteIndex(ctx context.Context, name string, refresh bool) (bool, error) {
	exists, err := r.IndexExists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	resp, err := r.store.DeleteIndex(ctx, name)
	switch {
	case err != nil:
		r.softFailure("delete_index", name, 0, err)
	case !resp.IsSuccess():
		r.softFailure("delete_index", name, resp.StatusCode, nil)
	case refresh:
		r.RefreshIndex(ctx, name)
	}
	return true, nil
}

// RefreshIndex forces recent writes to become searchable. Failures are only
// logged.
func (r *Repo) RefreshIndex(ctx context.Context, name string) {
	resp, err := r.store.RefreshIndex(ctx, name)
	if err != nil {
		r.softFailure("refresh_index", name, 0, err)
		return
	}
	if !resp.IsSuccess() {
		r.softFailure("refresh_index", name, resp.StatusCode, nil)
	}
}

func (r *Repo) softFailure(op, index string, status int, err error) {
	fields := []zap.Field{zap.String("op", op), zap.String("index", index)}
	if status != 0 {
		fields = append(fields, zap.Int("status", status))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	r.logger.Warn("Engine call failed", fields...)
	metrics.EngineSoftFailuresTotal.WithLabelValues(op).Inc()
}
