package swapdex

import "github.com/kailas-cloud/swapdex/internal/domain/query"

// Query is a boolean search request addressed to an alias.
type Query = query.Query

// Matcher restricts one field to a set of values.
type Matcher = query.Matcher

// DefaultSortField is the secondary sort key after _score.
const DefaultSortField = query.DefaultSortField

// Match builds a matcher for field name against values.
func Match(name string, values ...string) Matcher {
	return query.NewMatcher(name, values...)
}

// Compile renders q as the engine's JSON search body. Useful for debugging
// and for callers that talk to the engine directly.
func Compile(q Query) string {
	return query.Compile(q)
}

// QueryBuilder is a fluent builder for Query.
type QueryBuilder struct {
	q Query
}

// NewQuery starts an empty query.
func NewQuery() *QueryBuilder {
	return &QueryBuilder{}
}

// Should adds optional matchers under clause (e.g. "terms", "match").
func (b *QueryBuilder) Should(clause string, matchers ...Matcher) *QueryBuilder {
	for _, m := range matchers {
		b.q.Should.Add(clause, m)
	}
	return b
}

// Must adds required matchers under clause.
func (b *QueryBuilder) Must(clause string, matchers ...Matcher) *QueryBuilder {
	for _, m := range matchers {
		b.q.Must.Add(clause, m)
	}
	return b
}

// MustNot adds excluding matchers under clause.
func (b *QueryBuilder) MustNot(clause string, matchers ...Matcher) *QueryBuilder {
	for _, m := range matchers {
		b.q.MustNot.Add(clause, m)
	}
	return b
}

// Size sets the page size. It is sent as is, so leaving it zero on a
// non-empty query returns no hits.
func (b *QueryBuilder) Size(n int) *QueryBuilder {
	b.q.Size = n
	return b
}

// From sets the page offset.
func (b *QueryBuilder) From(n int) *QueryBuilder {
	b.q.From = n
	return b
}

// SortBy sets the secondary sort field. Default: updated_at.
func (b *QueryBuilder) SortBy(field string) *QueryBuilder {
	b.q.SortBy = field
	return b
}

// Build returns the query.
func (b *QueryBuilder) Build() Query {
	return b.q
}
