// Package query evaluates XPath 1.0 expressions against projected trees.
package query

import (
	"errors"
	"fmt"

	"github.com/antchfx/xpath"

	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// ErrInvalidQuery is returned when an expression does not compile.
var ErrInvalidQuery = errors.New("invalid query")

// Error wraps a compile failure with the offending expression.
type Error struct {
	Expr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid query %q: %v", e.Expr, e.Err)
}

// Unwrap returns ErrInvalidQuery and the engine error.
func (e *Error) Unwrap() []error {
	return []error{ErrInvalidQuery, e.Err}
}

// Query is a compiled, reusable path expression.
type Query struct {
	expr *xpath.Expr
	raw  string
}

// Compile parses expr.
func Compile(expr string) (*Query, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, &Error{Expr: expr, Err: err}
	}
	return &Query{expr: compiled, raw: expr}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Query {
	q, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return q
}

// String returns the source expression.
func (q *Query) String() string {
	return q.raw
}

// Select evaluates the query with context as the context node and returns
// the matched tree nodes in engine order without duplicates. Matches that
// are not tree nodes (attributes, the document node) are skipped.
func (q *Query) Select(context *tree.Node, text *source.Text) []*tree.Node {
	iter := q.expr.Select(NewNavigator(context, text))
	return collect(iter)
}

// Evaluate evaluates the query and returns a float64, string, bool, or a
// []*tree.Node for node-set results.
func (q *Query) Evaluate(context *tree.Node, text *source.Text) any {
	switch v := q.expr.Evaluate(NewNavigator(context, text)).(type) {
	case *xpath.NodeIterator:
		return collect(v)
	default:
		return v
	}
}

func collect(iter *xpath.NodeIterator) []*tree.Node {
	var out []*tree.Node
	seen := make(map[*tree.Node]struct{})
	for iter.MoveNext() {
		nav, ok := iter.Current().(*Navigator)
		if !ok {
			continue
		}
		n := nav.Current()
		if n == nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Select compiles expr and evaluates it against context.
func Select(context *tree.Node, text *source.Text, expr string) ([]*tree.Node, error) {
	q, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return q.Select(context, text), nil
}
