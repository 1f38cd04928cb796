// Package query describes structured search queries and compiles them into
// the engine's JSON DSL.
package query

// DefaultSortField is the secondary sort field used when SortBy is empty.
const DefaultSortField = "updated_at"

// Matcher matches a named field against a list of values.
type Matcher struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	Boost  *float64 `json:"boost,omitempty"`
}

// NewMatcher creates a matcher without boost.
func NewMatcher(name string, values ...string) Matcher {
	return Matcher{Name: name, Values: values}
}

// WithBoost returns a copy of m with the boost set.
func (m Matcher) WithBoost(b float64) Matcher {
	m.Boost = &b
	return m
}

// Clauses maps a clause name (terms, match, ...) to its matchers.
type Clauses map[string][]Matcher

// Query is an engine-agnostic search request.
type Query struct {
	Should  Clauses `json:"should,omitempty"`
	Must    Clauses `json:"must,omitempty"`
	MustNot Clauses `json:"must_not,omitempty"`
	Size    int     `json:"size"`
	From    int     `json:"from"`
	SortBy  string  `json:"sort_by,omitempty"`
}

// IsEmpty reports whether the query carries no clauses at all.
func (q *Query) IsEmpty() bool {
	return len(q.Should) == 0 && len(q.Must) == 0 && len(q.MustNot) == 0
}

// Add appends a matcher to the named clause, allocating the map on demand.
func (c *Clauses) Add(clause string, m Matcher) {
	if *c == nil {
		*c = make(Clauses)
	}
	(*c)[clause] = append((*c)[clause], m)
}
