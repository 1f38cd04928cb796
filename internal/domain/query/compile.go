package query

import (
	"sort"

	"github.com/kailas-cloud/swapdex/internal/domain/codec"
)

const emptyQuery = "{}"

// Compiler turns a Query into the engine DSL using an explicit codec.
type Compiler struct {
	codec codec.Codec
}

// NewCompiler creates a compiler. A nil codec selects JSON.
func NewCompiler(c codec.Codec) *Compiler {
	return &Compiler{codec: codec.OrDefault(c)}
}

// Compile renders q with the default JSON codec.
func Compile(q Query) string {
	return NewCompiler(nil).Compile(q)
}

type dsl struct {
	Size  int          `json:"size"`
	From  int          `json:"from"`
	Query dslQuery     `json:"query"`
	Sort  []sortClause `json:"sort"`
}

type dslQuery struct {
	Bool dslBool `json:"bool"`
}

type dslBool struct {
	Should  []map[string]map[string]any `json:"should"`
	Must    []map[string]map[string]any `json:"must"`
	MustNot []map[string]map[string]any `json:"must_not"`
}

type sortClause map[string]sortOrder

type sortOrder struct {
	Order        string `json:"order"`
	UnmappedType string `json:"unmapped_type,omitempty"`
}

// Compile renders q. An empty query compiles to "{}", which the engine treats
// as match-all. Compile never fails.
func (c *Compiler) Compile(q Query) string {
	if q.IsEmpty() {
		return emptyQuery
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = DefaultSortField
	}

	body := dsl{
		Size: q.Size,
		From: q.From,
		Query: dslQuery{Bool: dslBool{
			Should:  flatten(q.Should),
			Must:    flatten(q.Must),
			MustNot: flatten(q.MustNot),
		}},
		Sort: []sortClause{
			{"_score": {Order: "desc"}},
			{sortBy: {Order: "desc", UnmappedType: "double"}},
		},
	}

	out, err := c.codec.Marshal(body)
	if err != nil {
		return emptyQuery
	}
	return string(out)
}

// flatten emits one {clause: {name: values[, boost]}} object per matcher.
// Clause names are visited in sorted order so output is deterministic.
func flatten(clauses Clauses) []map[string]map[string]any {
	out := make([]map[string]map[string]any, 0, len(clauses))
	names := make([]string, 0, len(clauses))
	for name := range clauses {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, clause := range names {
		for _, m := range clauses[clause] {
			values := m.Values
			if values == nil {
				values = []string{}
			}
			inner := map[string]any{m.Name: values}
			if m.Boost != nil {
				inner["boost"] = *m.Boost
			}
			out = append(out, map[string]map[string]any{clause: inner})
		}
	}
	return out
}
