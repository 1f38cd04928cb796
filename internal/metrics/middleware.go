package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds by route",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		},
		[]string{"method", "route", "code"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class",
		},
		[]string{"method", "route", "code"},
	)

	aliasRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_alias_requests_total",
			Help:      "HTTP requests addressed to an alias",
		},
		[]string{"alias", "route", "code"},
	)

	httpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal, aliasRequestsTotal, httpRequestsInFlight)
}

// Middleware records request duration and counts per chi route. Requests
// under /aliases/{alias} are also counted per alias. Hot swaps can run for
// minutes, hence the long histogram tail.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			route, alias := routeOf(r)
			code := statusClass(sw.status)

			httpRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
			if alias != "" {
				aliasRequestsTotal.WithLabelValues(alias, route, code).Inc()
			}
		})
	}
}

// routeOf returns the matched route pattern and the alias URL parameter.
// Unmatched requests share the "unmatched" route so that scanners cannot
// inflate label cardinality.
func routeOf(r *http.Request) (route, alias string) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched", ""
	}
	route = rctx.RoutePattern()
	if route == "" {
		return "unmatched", ""
	}
	return route, rctx.URLParam("alias")
}

// statusClass folds a status code into 2xx/3xx/4xx/5xx.
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
