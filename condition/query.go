package condition

import (
	"time"

	"github.com/estore/estore/internal/lru"
	"github.com/estore/estore/value"
)

// Query is a parsed, cacheable condition: the repository's select_by_query
// and the Adapter contract pass this type around instead of raw text so a
// hot query path only pays the parse cost once.
type Query struct {
	text string
	root Node
}

// Text returns the original query text the Query was parsed from.
func (q *Query) Text() string { return q.text }

// Root returns the parsed AST.
func (q *Query) Root() Node { return q.root }

// Eval evaluates the query against row, a row of table, using rowID for the
// #ID pseudo-field and resolver to cross reference fields.
func (q *Query) Eval(table string, row value.Record, rowID value.Value, resolver Resolver, params Params) (bool, error) {
	if q.root == nil {
		return true, nil
	}
	return Eval(q.root, table, row, rowID, resolver, params)
}

// cache holds parsed queries keyed by their exact source text, trading a
// bounded amount of memory for skipping re-lexing/re-parsing identical
// queries issued repeatedly by the same caller (e.g. a paginated scan).
var cache = lru.NewLRU[string, *Query](512, nil, 30*time.Minute)

// Compile parses text into a Query, consulting the package-level cache
// first. An empty string compiles to a Query that matches every row.
func Compile(text string) (*Query, error) {
	if text == "" {
		return &Query{text: text}, nil
	}
	if q, ok := cache.Get(text); ok {
		return q, nil
	}
	root, err := Parse(text)
	if err != nil {
		return nil, err
	}
	q := &Query{text: text, root: root}
	cache.Add(text, q)
	return q, nil
}

// FromNode wraps a hand-built AST node as a Query, the escape hatch for a
// caller that composes And/Or/Group/Compare nodes programmatically instead
// of writing query text (the same role clause.Expr plays next to gorm's
// query builder). The Query's Text() renders root's own Text(), so it still
// round-trips through Compile.
func FromNode(root Node) *Query {
	if root == nil {
		return &Query{}
	}
	return &Query{text: root.Text(), root: root}
}
