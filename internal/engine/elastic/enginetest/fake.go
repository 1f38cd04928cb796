// Package enginetest provides an in-memory engine speaking the subset of the
// Elasticsearch REST API swapdex uses, for tests.
package enginetest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
)

const defaultSize = 10

type index struct {
	body map[string]any
	docs map[string]map[string]any
	// order keeps insertion order so hits are stable.
	order []string
}

type fault struct {
	method, path string
	status       int
}

// Server is an in-memory engine behind an httptest.Server.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	indices map[string]*index
	aliases map[string]map[string]struct{}
	faults  []fault
	calls   []string
}

// New starts a fake engine. Callers must Close it.
func New() *Server {
	s := &Server{
		indices: make(map[string]*index),
		aliases: make(map[string]map[string]struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Fail makes every request matching method and path answer with status until
// Reset is called.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{method: method, path: path, status: status})
}

// Reset clears injected faults.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = nil
}

// Calls returns "METHOD /path" for every request received.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Indices returns the sorted names of existing indices.
func (s *Server) Indices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.indices))
	for name := range s.indices {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Bound returns the sorted indices the alias points at.
func (s *Server) Bound(alias string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.aliases[alias])
}

// CreationBody returns the decoded PUT body an index was created with.
func (s *Server) CreationBody(name string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indices[name]; ok {
		return idx.body
	}
	return nil
}

// DocCount returns the number of documents in an index.
func (s *Server) DocCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indices[name]; ok {
		return len(idx.docs)
	}
	return 0
}

// Document returns a stored source document.
func (s *Server) Document(name, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indices[name]
	if !ok {
		return nil, false
	}
	doc, ok := idx.docs[id]
	return doc, ok
}

// AddIndex creates an index directly, bypassing HTTP.
func (s *Server) AddIndex(name string, aliases ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[name] = &index{body: map[string]any{}, docs: map[string]map[string]any{}}
	for _, a := range aliases {
		s.bind(a, name)
	}
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, r.Method+" "+r.URL.Path)
	for _, f := range s.faults {
		if f.method == r.Method && f.path == r.URL.Path {
			writeError(w, f.status, "injected_fault")
			return
		}
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/":
		writeJSON(w, http.StatusOK, map[string]any{
			"name":    "fake",
			"tagline": "You Know, for Search",
			"version": map[string]any{"number": "8.15.0", "build_flavor": "default"},
		})
	case r.URL.Path == "/_aliases" && r.Method == http.MethodPost:
		s.updateAliases(w, body)
	case parts[0] == "_alias" && len(parts) == 2:
		s.alias(w, r.Method, parts[1])
	case parts[0] == "_bulk":
		s.bulk(w, "", body)
	case len(parts) == 1:
		s.index(w, r.Method, parts[0], body)
	case len(parts) == 2 && parts[1] == "_refresh":
		s.refresh(w, parts[0])
	case len(parts) == 2 && parts[1] == "_search":
		s.search(w, parts[0], body)
	case len(parts) == 2 && parts[1] == "_bulk":
		s.bulk(w, parts[0], body)
	default:
		writeError(w, http.StatusBadRequest, "unsupported_operation_exception")
	}
}

func (s *Server) index(w http.ResponseWriter, method, name string, body []byte) {
	_, exists := s.indices[name]
	switch method {
	case http.MethodHead:
		if exists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		if exists {
			writeError(w, http.StatusBadRequest, "resource_already_exists_exception")
			return
		}
		var payload map[string]any
		if len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, "parse_exception")
				return
			}
		}
		s.indices[name] = &index{body: payload, docs: map[string]map[string]any{}}
		if aliases, ok := payload["aliases"].(map[string]any); ok {
			for a := range aliases {
				s.bind(a, name)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "index": name})
	case http.MethodDelete:
		if !exists {
			writeError(w, http.StatusNotFound, "index_not_found_exception")
			return
		}
		delete(s.indices, name)
		for a := range s.aliases {
			s.unbind(a, name)
		}
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

func (s *Server) refresh(w http.ResponseWriter, name string) {
	if _, ok := s.resolve(name); !ok {
		writeError(w, http.StatusNotFound, "index_not_found_exception")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"_shards": map[string]any{"failed": 0}})
}

func (s *Server) alias(w http.ResponseWriter, method, alias string) {
	bound := s.aliases[alias]
	if len(bound) == 0 {
		if method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":  fmt.Sprintf("alias [%s] missing", alias),
			"status": http.StatusNotFound,
		})
		return
	}
	if method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	out := make(map[string]any, len(bound))
	for name := range bound {
		out[name] = map[string]any{"aliases": map[string]any{alias: map[string]any{}}}
	}
	writeJSON(w, http.StatusOK, out)
}

type aliasAction struct {
	Add         *aliasTarget `json:"add"`
	Remove      *aliasTarget `json:"remove"`
	RemoveIndex *aliasTarget `json:"remove_index"`
}

type aliasTarget struct {
	Index string `json:"index"`
	Alias string `json:"alias"`
}

// updateAliases validates every action before applying any of them.
func (s *Server) updateAliases(w http.ResponseWriter, body []byte) {
	var req struct {
		Actions []aliasAction `json:"actions"`
	}
	if err := json.Unmarshal(body, &req); err != nil || len(req.Actions) == 0 {
		writeError(w, http.StatusBadRequest, "action_request_validation_exception")
		return
	}
	for _, a := range req.Actions {
		for _, t := range []*aliasTarget{a.Add, a.Remove, a.RemoveIndex} {
			if t == nil {
				continue
			}
			if _, ok := s.indices[t.Index]; !ok {
				writeError(w, http.StatusNotFound, "index_not_found_exception")
				return
			}
		}
	}
	for _, a := range req.Actions {
		switch {
		case a.Add != nil:
			s.bind(a.Add.Alias, a.Add.Index)
		case a.Remove != nil:
			s.unbind(a.Remove.Alias, a.Remove.Index)
		case a.RemoveIndex != nil:
			delete(s.indices, a.RemoveIndex.Index)
			for alias := range s.aliases {
				s.unbind(alias, a.RemoveIndex.Index)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}

func (s *Server) bulk(w http.ResponseWriter, defaultIndex string, body []byte) {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	var items []map[string]any
	hasErrors := false
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var meta map[string]struct {
			Index string `json:"_index"`
			ID    string `json:"_id"`
		}
		if err := json.Unmarshal(line, &meta); err != nil {
			writeError(w, http.StatusBadRequest, "parse_exception")
			return
		}
		if !sc.Scan() {
			writeError(w, http.StatusBadRequest, "parse_exception")
			return
		}
		var doc map[string]any
		if err := json.Unmarshal(sc.Bytes(), &doc); err != nil {
			writeError(w, http.StatusBadRequest, "parse_exception")
			return
		}

		for action, m := range meta {
			name := m.Index
			if name == "" {
				name = defaultIndex
			}
			idx, ok := s.indices[name]
			if !ok {
				hasErrors = true
				items = append(items, map[string]any{action: map[string]any{
					"_index": name, "_id": m.ID, "status": http.StatusNotFound,
					"error": map[string]any{"type": "index_not_found_exception", "reason": "no such index"},
				}})
				continue
			}
			if _, seen := idx.docs[m.ID]; !seen {
				idx.order = append(idx.order, m.ID)
			}
			idx.docs[m.ID] = doc
			items = append(items, map[string]any{action: map[string]any{
				"_index": name, "_id": m.ID, "status": http.StatusCreated, "result": "created",
			}})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"took": 1, "errors": hasErrors, "items": items})
}

type searchRequest struct {
	Size  *int `json:"size"`
	From  int  `json:"from"`
	Query struct {
		Bool struct {
			Should  []map[string]map[string]any `json:"should"`
			Must    []map[string]map[string]any `json:"must"`
			MustNot []map[string]map[string]any `json:"must_not"`
		} `json:"bool"`
	} `json:"query"`
}

// search evaluates every clause as "field value is one of values",
// regardless of the clause name.
func (s *Server) search(w http.ResponseWriter, target string, body []byte) {
	names, ok := s.resolve(target)
	if !ok {
		writeError(w, http.StatusNotFound, "index_not_found_exception")
		return
	}
	var req searchRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "parsing_exception")
			return
		}
	}
	size := defaultSize
	if req.Size != nil {
		size = *req.Size
	}

	var hits []map[string]any
	for _, name := range names {
		idx := s.indices[name]
		for _, id := range idx.order {
			doc := idx.docs[id]
			score, ok := evaluate(doc, req)
			if !ok {
				continue
			}
			hits = append(hits, map[string]any{
				"_index": name, "_id": id, "_score": score, "_source": doc,
			})
		}
	}
	total := len(hits)
	if req.From < len(hits) {
		hits = hits[req.From:]
	} else {
		hits = nil
	}
	if size < len(hits) {
		hits = hits[:size]
	}
	if hits == nil {
		hits = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"took": 1,
		"hits": map[string]any{
			"total": map[string]any{"value": total, "relation": "eq"},
			"hits":  hits,
		},
	})
}

func evaluate(doc map[string]any, req searchRequest) (float64, bool) {
	b := req.Query.Bool
	for _, c := range b.Must {
		if !matches(doc, c) {
			return 0, false
		}
	}
	for _, c := range b.MustNot {
		if matches(doc, c) {
			return 0, false
		}
	}
	score := 1.0
	matched := 0
	for _, c := range b.Should {
		if matches(doc, c) {
			matched++
			score += boostOf(c)
		}
	}
	if len(b.Should) > 0 && len(b.Must) == 0 && matched == 0 {
		return 0, false
	}
	return score, true
}

func matches(doc map[string]any, clause map[string]map[string]any) bool {
	for _, inner := range clause {
		for field, raw := range inner {
			if field == "boost" {
				continue
			}
			values, _ := raw.([]any)
			got := fmt.Sprint(doc[field])
			for _, v := range values {
				if fmt.Sprint(v) == got {
					return true
				}
			}
			return false
		}
	}
	return false
}

func boostOf(clause map[string]map[string]any) float64 {
	for _, inner := range clause {
		if b, ok := inner["boost"].(float64); ok {
			return b
		}
	}
	return 1
}

// resolve maps an index or alias name to concrete indices.
func (s *Server) resolve(name string) ([]string, bool) {
	if _, ok := s.indices[name]; ok {
		return []string{name}, true
	}
	if bound := s.aliases[name]; len(bound) > 0 {
		return sortedKeys(bound), true
	}
	return nil, false
}

func (s *Server) bind(alias, name string) {
	if s.aliases[alias] == nil {
		s.aliases[alias] = make(map[string]struct{})
	}
	s.aliases[alias][name] = struct{}{}
}

func (s *Server) unbind(alias, name string) {
	delete(s.aliases[alias], name)
	if len(s.aliases[alias]) == 0 {
		delete(s.aliases, alias)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ string) {
	writeJSON(w, status, map[string]any{
		"error":  map[string]any{"type": typ, "reason": typ},
		"status": status,
	})
}
