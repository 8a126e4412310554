package recipes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// Definition is a named function found by BuildIndex.
type Definition struct {
	ID        int
	Kind      string
	Name      string
	Qualified string
	Line      int
	Column    int
}

// Call is a call site found by BuildIndex. Caller is the id of the
// enclosing function, or 0 at module level.
type Call struct {
	ID     int
	Name   string
	Callee string
	Caller int
	Line   int
	Column int
}

// Index lists the definitions and call sites of one file.
type Index struct {
	Path        string
	Language    string
	Definitions []Definition
	Calls       []Call
}

// BuildIndex extracts function definitions, qualified through enclosing
// scopes, and call sites with their enclosing function.
func BuildIndex(s *refactor.Session) (*Index, error) {
	d, ok := DialectFor(s.Language())
	if !ok {
		return nil, fmt.Errorf("index on %s: %w", s.Language(), ErrUnsupportedLanguage)
	}

	idx := &Index{Path: s.Source().Path, Language: s.Language()}

	for _, n := range s.Tree().Nodes() {
		switch {
		case d.isFunction(n.Kind):
			name, _ := n.Attr("name")
			if name == "" {
				continue
			}
			start := n.Start()
			idx.Definitions = append(idx.Definitions, Definition{
				ID:        n.ID,
				Kind:      n.Kind,
				Name:      name,
				Qualified: qualify(d, n, name),
				Line:      start.Line + 1,
				Column:    start.Column,
			})
		case n.Kind == d.Call:
			call, err := callOf(s, d, n)
			if err != nil {
				return nil, err
			}
			if call != nil {
				idx.Calls = append(idx.Calls, *call)
			}
		}
	}

	return idx, nil
}

func qualify(d Dialect, n *tree.Node, name string) string {
	names := []string{name}
	for p := n.Parent; p != nil; p = p.Parent {
		if !d.isScope(p.Kind) {
			continue
		}
		if scope, _ := p.Attr("name"); scope != "" {
			names = append(names, scope)
		}
	}
	slices.Reverse(names)
	return strings.Join(names, ".")
}

func callOf(s *refactor.Session, d Dialect, n *tree.Node) (*Call, error) {
	callee := n.Child(d.CalleeSlot)
	if callee == nil || callee.IsContainer() {
		return nil, nil //nolint:nilnil // call without a plain callee
	}

	text, err := s.TextOf(callee)
	if err != nil {
		return nil, err
	}

	name := text
	if slot, ok := d.Members[callee.Kind]; ok {
		if member, _ := callee.Attr(slot); member != "" {
			name = member
		}
	}

	call := &Call{
		ID:     n.ID,
		Name:   name,
		Callee: text,
		Line:   n.Start().Line + 1,
		Column: n.Start().Column,
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if d.isFunction(p.Kind) {
			call.Caller = p.ID
			break
		}
	}
	return call, nil
}
