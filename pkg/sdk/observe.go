package swapdex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	documents  *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swapdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type, alias and status.",
		}, []string{"operation", "alias", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "swapdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		}, []string{"operation"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swapdex",
			Subsystem: "sdk",
			Name:      "hotswap_documents_total",
			Help:      "Documents written by hot swaps, by alias and result.",
		}, []string{"alias", "result"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.documents); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("swapdex: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("swapdex: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op, alias string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, alias, statusOf(err)).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("Operation failed", "op", op, "alias", alias, "duration", dur, "error", err)
		return
	}
	o.logger.Debug("Operation completed", "op", op, "alias", alias, "duration", dur)
}

// statusOf maps an operation error to the status label.
func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAliasNotFound):
		return "alias_not_found"
	case errors.Is(err, ErrSwapInProgress):
		return "busy"
	default:
		return "error"
	}
}

// swapped records the outcome of a successful hot swap.
func (o *observer) swapped(alias string, res SwapResult) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.documents.WithLabelValues(alias, "indexed").Add(float64(res.Indexed))
		o.metrics.documents.WithLabelValues(alias, "failed").Add(float64(res.Failed))
	}
	if o.logger != nil {
		o.logger.Info("Hot swap complete",
			"alias", alias,
			"index", res.NewIndex,
			"retired", res.Retired,
			"indexed", res.Indexed,
			"failed", res.Failed,
		)
	}
}
