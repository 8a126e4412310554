package refactor

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/query"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// Selection is an ordered set of nodes from one session generation.
// Selections are immutable; every operation returns a new one.
type Selection struct {
	session    *Session
	generation int
	nodes      []*tree.Node
}

func (s *Session) selection(nodes []*tree.Node) *Selection {
	return &Selection{session: s, generation: s.generation, nodes: nodes}
}

// Nodes returns a copy of the selected nodes in order.
func (sel *Selection) Nodes() []*tree.Node {
	return slices.Clone(sel.nodes)
}

// Len returns the number of selected nodes.
func (sel *Selection) Len() int {
	return len(sel.nodes)
}

// At returns the i-th node.
func (sel *Selection) At(i int) *tree.Node {
	return sel.nodes[i]
}

// IDs returns the ids of the selected nodes in order.
func (sel *Selection) IDs() []int {
	ids := make([]int, len(sel.nodes))
	for i, n := range sel.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Session returns the session that produced the selection.
func (sel *Selection) Session() *Session {
	return sel.session
}

func (sel *Selection) check() error {
	if sel.generation != sel.session.generation {
		return &StaleError{
			Session:    sel.session.id.String(),
			Generation: sel.generation,
			Current:    sel.session.generation,
		}
	}
	return nil
}

func (sel *Selection) compatible(other *Selection) error {
	if err := sel.check(); err != nil {
		return err
	}
	if other.session != sel.session {
		return fmt.Errorf("selection from session %s: %w", other.session.id, ErrStaleReference)
	}
	return other.check()
}

func (sel *Selection) with(nodes []*tree.Node) *Selection {
	return &Selection{session: sel.session, generation: sel.generation, nodes: nodes}
}

// Select evaluates path with each member as the context node and
// concatenates the results in member order. Duplicates are kept.
func (sel *Selection) Select(path string) (*Selection, error) {
	if err := sel.check(); err != nil {
		return nil, err
	}

	q, err := query.Compile(path)
	if err != nil {
		return nil, err
	}

	var out []*tree.Node
	for _, n := range sel.nodes {
		out = append(out, q.Select(n, sel.session.text)...)
	}

	sel.session.logger.Debug("selected",
		logging.FieldQuery, path,
		logging.FieldMatches, len(out),
	)
	return sel.with(out), nil
}

// Filter keeps the nodes for which pred returns true, in order.
func (sel *Selection) Filter(pred func(*tree.Node) bool) (*Selection, error) {
	if err := sel.check(); err != nil {
		return nil, err
	}

	var out []*tree.Node
	for _, n := range sel.nodes {
		if pred(n) {
			out = append(out, n)
		}
	}
	return sel.with(out), nil
}

// Find collects, for each member in order, the member and its real
// descendants for which pred returns true, in document order. Results are
// concatenated and duplicates are kept, like Select.
func (sel *Selection) Find(pred func(*tree.Node) bool) (*Selection, error) {
	if err := sel.check(); err != nil {
		return nil, err
	}

	var out []*tree.Node
	for _, n := range sel.nodes {
		out = append(out, tree.FindAll(n, pred)...)
	}
	return sel.with(out), nil
}

// Map replaces every node with fn(node). The result must be a node of the
// same tree.
func (sel *Selection) Map(fn func(*tree.Node) *tree.Node) (*Selection, error) {
	if err := sel.check(); err != nil {
		return nil, err
	}

	out := make([]*tree.Node, 0, len(sel.nodes))
	for _, n := range sel.nodes {
		mapped := fn(n)
		if mapped == nil || mapped.Tree() != sel.session.tree {
			return nil, fmt.Errorf("map %s: %w", n, ErrInvalidMapping)
		}
		out = append(out, mapped)
	}
	return sel.with(out), nil
}

// Union returns the members of sel followed by the members of other that
// sel does not contain. Duplicates are removed, first occurrence wins.
func (sel *Selection) Union(other *Selection) (*Selection, error) {
	if err := sel.compatible(other); err != nil {
		return nil, err
	}
	seen := make(map[*tree.Node]struct{}, len(sel.nodes)+len(other.nodes))
	out := make([]*tree.Node, 0, len(sel.nodes)+len(other.nodes))
	for _, n := range slices.Concat(sel.nodes, other.nodes) {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return sel.with(out), nil
}

// Intersection returns the members of sel also in other, in sel's order
// without duplicates.
func (sel *Selection) Intersection(other *Selection) (*Selection, error) {
	if err := sel.compatible(other); err != nil {
		return nil, err
	}
	return sel.with(sel.keep(other, true)), nil
}

// Difference returns the members of sel not in other, in sel's order
// without duplicates.
func (sel *Selection) Difference(other *Selection) (*Selection, error) {
	if err := sel.compatible(other); err != nil {
		return nil, err
	}
	return sel.with(sel.keep(other, false)), nil
}

func (sel *Selection) keep(other *Selection, present bool) []*tree.Node {
	in := make(map[*tree.Node]struct{}, len(other.nodes))
	for _, n := range other.nodes {
		in[n] = struct{}{}
	}
	seen := make(map[*tree.Node]struct{}, len(sel.nodes))
	var out []*tree.Node
	for _, n := range sel.nodes {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := in[n]; ok == present {
			out = append(out, n)
		}
	}
	return out
}

// Sort returns the members in document order, duplicates kept.
func (sel *Selection) Sort() *Selection {
	out := slices.Clone(sel.nodes)
	slices.SortStableFunc(out, func(a, b *tree.Node) int {
		return a.Order - b.Order
	})
	return sel.with(out)
}

// Texts returns the source text of every member.
func (sel *Selection) Texts() ([]string, error) {
	if err := sel.check(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(sel.nodes))
	for _, n := range sel.nodes {
		text, err := sel.session.TextOf(n)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// Dump writes one line per member: its index, kind and id, and its text,
// or ??? when the node has no text.
func (sel *Selection) Dump(w io.Writer) error {
	for i, n := range sel.nodes {
		text, err := sel.session.TextOf(n)
		if err != nil {
			text = "???"
		}
		if _, err := fmt.Fprintf(w, ">%d: %s %s<\n", i, n, text); err != nil {
			return err
		}
	}
	return nil
}

// DumpXML writes the projected subtree of every member.
func (sel *Selection) DumpXML(w io.Writer) error {
	for _, n := range sel.nodes {
		if err := tree.WriteXML(w, n); err != nil {
			return err
		}
	}
	return nil
}

// String summarizes the selection for logs.
func (sel *Selection) String() string {
	parts := make([]string, len(sel.nodes))
	for i, n := range sel.nodes {
		parts[i] = n.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
