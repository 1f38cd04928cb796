package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/domain/query"
	"github.com/kailas-cloud/swapdex/internal/source"
	healthuc "github.com/kailas-cloud/swapdex/internal/usecase/health"
	"github.com/kailas-cloud/swapdex/internal/usecase/hotswap"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the swapdex HTTP API.
type Server struct {
	search        SearchService
	swaps         SwapService
	health        HealthService
	loader        SourceLoader
	partitions    int
	maxWriteConns int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, swaps SwapService, health HealthService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		swaps:  swaps,
		health: health,
		logger: logger,
	}
	// Order matters: search wraps decode failures in ErrEngine.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrAliasNotFound, http.StatusNotFound, ErrorCodeAliasNotFound),
		sentinelHandler(domain.ErrSwapInProgress, http.StatusConflict, ErrorCodeSwapInProgress),
		sentinelHandler(domain.ErrAliasSwapFailed, http.StatusBadGateway, ErrorCodeAliasSwapFailed),
		sentinelHandler(domain.ErrDecodeFailure, http.StatusBadGateway, ErrorCodeDecodeFailure),
		sentinelHandler(domain.ErrUnexpectedEngineState, http.StatusBadGateway, ErrorCodeUnexpectedEngineState),
		sentinelHandler(domain.ErrEngine, http.StatusBadGateway, ErrorCodeEngineError),
	}
	return s
}

// WithLoader enables hot swaps from a source collection.
func (s *Server) WithLoader(l SourceLoader, partitions int) *Server {
	s.loader = l
	s.partitions = partitions
	return s
}

// WithMaxWriteConnections sets the bulk connection cap used when a hot-swap
// request doesn't set one.
func (s *Server) WithMaxWriteConnections(n int) *Server {
	s.maxWriteConns = n
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/aliases/{alias}", func(r chi.Router) {
		r.Get("/", s.ResolveAlias)
		r.Delete("/", s.DeleteAlias)
		r.Post("/_search", s.Search)
		r.Post("/indices", s.CreateIndex)
		r.Post("/_hotswap", s.HotSwap)
	})
}

// ResolveAlias handles GET /aliases/{alias}.
func (s *Server) ResolveAlias(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	indices, err := s.swaps.Resolve(r.Context(), alias)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if len(indices) == 0 {
		writeError(w, http.StatusNotFound, ErrorCodeAliasNotFound, "alias not found")
		return
	}
	writeJSON(w, http.StatusOK, AliasResponse{Alias: alias, Indices: indices})
}

// DeleteAlias handles DELETE /aliases/{alias}.
func (s *Server) DeleteAlias(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")

	var refresh bool
	if err := runtime.BindQueryParameter("form", true, false, "refresh", r.URL.Query(), &refresh); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid refresh parameter: "+err.Error())
		return
	}

	deleted, err := s.swaps.DeleteAlias(r.Context(), alias, refresh)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteAliasResponse{Alias: alias, Deleted: deleted})
}

// defaultPageSize applies when a search body omits size.
const defaultPageSize = 10

// Search handles POST /aliases/{alias}/_search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := query.Query{Size: defaultPageSize}
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if q.Size < 0 || q.From < 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "size and from must not be negative")
		return
	}

	hits, err := s.search.Search(r.Context(), chi.URLParam(r, "alias"), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]HitResponse, len(hits))
	for i, h := range hits {
		items[i] = HitResponse{ID: h.ID, Score: h.Score}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Total: len(items)})
}

// CreateIndex handles POST /aliases/{alias}/indices.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var refresh bool
	if err := runtime.BindQueryParameter("form", true, false, "refresh", r.URL.Query(), &refresh); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid refresh parameter: "+err.Error())
		return
	}

	var req CreateIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.DocType == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "doc_type is required")
		return
	}

	name, created, err := s.swaps.CreateIndex(
		r.Context(), chi.URLParam(r, "alias"), req.DocType, req.Fields, req.Mappings, refresh,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, CreateIndexResponse{Index: name, Created: created})
}

// HotSwap handles POST /aliases/{alias}/_hotswap.
func (s *Server) HotSwap(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")

	var req HotSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.DocType == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "doc_type is required")
		return
	}

	records, err := s.records(r, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	maxConns := req.MaxWriteConnections
	if maxConns <= 0 {
		maxConns = s.maxWriteConns
	}

	res, err := s.swaps.HotSwap(r.Context(), hotswap.Request{
		Alias:               alias,
		DocType:             req.DocType,
		Records:             records,
		Fields:              req.Fields,
		Mappings:            req.Mappings,
		MaxWriteConnections: maxConns,
		MaxFailed:           req.MaxFailed,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	retired := res.Retired
	if retired == nil {
		retired = []string{}
	}
	writeJSON(w, http.StatusOK, HotSwapResponse{
		Alias:    alias,
		NewIndex: res.NewIndex,
		Retired:  retired,
		Indexed:  res.Indexed,
		Failed:   res.Failed,
	})
}

// records picks inline records, falling back to the configured loader.
func (s *Server) records(r *http.Request, req HotSwapRequest) (source.Dataset, error) {
	partitions := req.Partitions
	if partitions <= 0 {
		partitions = s.partitions
	}
	if len(req.Records) > 0 || req.Collection == "" {
		return source.FromRecords(req.Records, partitions), nil
	}
	if s.loader == nil {
		return source.Dataset{}, fmt.Errorf("%w: no source configured for collection %q",
			domain.ErrInvalidRequest, req.Collection)
	}
	ds, err := s.loader.Load(r.Context(), source.LoadRequest{
		Collection: req.Collection,
		IDField:    req.IDField,
		Partitions: partitions,
	})
	if err != nil {
		return source.Dataset{}, fmt.Errorf("load %s: %w", req.Collection, err)
	}
	return ds, nil
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrAliasNotFound,
		domain.ErrSwapInProgress,
		domain.ErrAliasSwapFailed,
		domain.ErrDecodeFailure,
		domain.ErrUnexpectedEngineState,
		domain.ErrEngine,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("Domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, msg)
}
