package refactor

import (
	"fmt"

	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/pattern"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// MapFunc computes new text for a node from its current text.
type MapFunc func(text string, n *tree.Node) string

// TryMapFunc is a MapFunc that can fail.
type TryMapFunc func(text string, n *tree.Node) (string, error)

// PrependMap records, for every member, an insertion of fn(text, node)
// immediately before the node.
func (sel *Selection) PrependMap(fn MapFunc) error {
	return sel.record(edit.Prepend, func(text string, n *tree.Node) (string, error) {
		return fn(text, n), nil
	})
}

// PrependTry is PrependMap with a fallible function.
func (sel *Selection) PrependTry(fn TryMapFunc) error {
	return sel.record(edit.Prepend, fn)
}

// SubstituteMap records, for every member, a replacement of the node's
// text with fn(text, node).
func (sel *Selection) SubstituteMap(fn MapFunc) error {
	return sel.record(edit.Substitute, func(text string, n *tree.Node) (string, error) {
		return fn(text, n), nil
	})
}

// SubstituteTry is SubstituteMap with a fallible function.
func (sel *Selection) SubstituteTry(fn TryMapFunc) error {
	return sel.record(edit.Substitute, fn)
}

// Substitute records, for every member, a replacement of the node's text
// with the result of replacing matches of expr by repl. count limits the
// replacements per node; zero means all.
func (sel *Selection) Substitute(expr, repl string, count int, flags pattern.Flags) error {
	re, err := pattern.Compile(expr, repl, pattern.Options{
		Count:        count,
		Flags:        flags,
		MatchTimeout: sel.session.matchTimeout,
	})
	if err != nil {
		return err
	}
	return sel.SubstituteWith(re)
}

// SubstituteWith records, for every member, a replacement of the node's
// text with r.Replace(text).
func (sel *Selection) SubstituteWith(r pattern.Replacer) error {
	return sel.record(edit.Substitute, func(text string, _ *tree.Node) (string, error) {
		return r.Replace(text)
	})
}

// record computes every edit first and only then appends them, so a
// failing member leaves the pending edits untouched.
func (sel *Selection) record(kind edit.Kind, fn TryMapFunc) error {
	if err := sel.check(); err != nil {
		return err
	}

	s := sel.session
	b := edit.NewBuilder()
	for _, n := range sel.nodes {
		sp, err := s.Span(n)
		if err != nil {
			return err
		}
		text := s.text.SpanText(sp)
		out, err := fn(text, n)
		if err != nil {
			return fmt.Errorf("%s %s: %w", kind, n, err)
		}
		if kind == edit.Prepend {
			b.Prepend(sp.Begin, sp.End, out)
		} else {
			b.Substitute(sp.Begin, sp.End, out)
		}
	}

	s.record(b)
	return nil
}
