package tree

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

// ErrProjectorInvariant is returned when a parsed tree breaks a rule the
// projector depends on.
var ErrProjectorInvariant = errors.New("projector invariant violated")

// InvariantError describes the offending parsed node.
type InvariantError struct {
	Kind   string
	Slot   string
	Reason string
}

func (e *InvariantError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("%s.%s: %s", e.Kind, e.Slot, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap returns ErrProjectorInvariant.
func (e *InvariantError) Unwrap() error {
	return ErrProjectorInvariant
}

// Tree is the projection of one parse. Ids are unique within a tree and
// form the contiguous range [FirstID, NextID).
type Tree struct {
	// Root is the projection of the parsed root node.
	Root *Node

	first int
	byID  []*Node
	order []*Node
}

// Project builds a tree from a parsed root in strict post-order: every
// child is projected, and numbered, before its parent. Ids start at 1.
// kinds may be nil to skip kind classification checks.
func Project(root *syntax.Node, kinds *syntax.KindTable) (*Tree, error) {
	return ProjectFrom(root, kinds, 1)
}

// ProjectFrom is Project with ids starting at first, so that successive
// parses owned by one caller never share an id.
func ProjectFrom(root *syntax.Node, kinds *syntax.KindTable, first int) (*Tree, error) {
	if root == nil {
		return nil, &InvariantError{Kind: "<nil>", Reason: "nil root"}
	}
	if first < 1 {
		return nil, &InvariantError{Kind: root.Kind, Reason: fmt.Sprintf("first id %d is below 1", first)}
	}

	t := &Tree{first: first}
	p := projector{tree: t, kinds: kinds}

	rootNode, err := p.project(root, "")
	if err != nil {
		return nil, err
	}
	t.Root = rootNode
	t.link(rootNode, nil)

	return t, nil
}

type projector struct {
	tree  *Tree
	kinds *syntax.KindTable
}

func (p *projector) project(n *syntax.Node, slot string) (*Node, error) {
	if err := p.check(n); err != nil {
		return nil, err
	}

	var children []*Node
	var empty []Attr
	for _, s := range n.Slots {
		switch s.Arity {
		case syntax.SlotSingle:
			if s.Node == nil {
				return nil, &InvariantError{Kind: n.Kind, Slot: s.Name, Reason: "single slot holds nil"}
			}
			child, err := p.project(s.Node, s.Name)
			if err != nil {
				return nil, err
			}
			children = append(children, child)

		case syntax.SlotList:
			members := make([]*Node, 0, len(s.Nodes))
			for i, item := range s.Nodes {
				if item == nil {
					return nil, &InvariantError{
						Kind:   n.Kind,
						Slot:   s.Name,
						Reason: fmt.Sprintf("list entry %d is nil", i),
					}
				}
				child, err := p.project(item, s.Name)
				if err != nil {
					return nil, err
				}
				members = append(members, child)
			}
			children = append(children, &Node{
				Kind:     ContainerPrefix + s.Name,
				Slot:     s.Name,
				Children: members,
				tree:     p.tree,
			})

		case syntax.SlotEmpty:
			empty = append(empty, Attr{Name: s.Name})

		default:
			return nil, &InvariantError{Kind: n.Kind, Slot: s.Name, Reason: "unknown slot arity"}
		}
	}

	id := p.tree.first + len(p.tree.byID)
	node := &Node{
		ID:       id,
		Kind:     n.Kind,
		Children: children,
		Slot:     slot,
		Source:   n,
		tree:     p.tree,
	}

	attrs := make([]Attr, 0, len(n.Fields)+len(n.Attrs)+len(empty)+1)
	for _, f := range n.Fields {
		attrs = append(attrs, Attr(f))
	}
	for _, f := range n.Attrs {
		attrs = append(attrs, Attr(f))
	}
	attrs = append(attrs, empty...)
	node.Attrs = append(attrs, Attr{Name: AttrID, Value: strconv.Itoa(id)})

	p.tree.byID = append(p.tree.byID, node)
	return node, nil
}

func (p *projector) check(n *syntax.Node) error {
	if n.Kind == "" {
		return &InvariantError{Kind: "<empty>", Reason: "node has no kind"}
	}
	if n.Span != nil && n.Span.End < n.Span.Begin {
		return &InvariantError{Kind: n.Kind, Reason: "span end precedes begin"}
	}
	if p.kinds == nil {
		return nil
	}

	class, ok := p.kinds.Class(n.Kind)
	if !ok {
		return &InvariantError{
			Kind:   n.Kind,
			Reason: fmt.Sprintf("kind is not part of the %s grammar", p.kinds.Language()),
		}
	}
	if class == syntax.Structural && n.Span != nil {
		return &InvariantError{Kind: n.Kind, Reason: "structural kind carries a span"}
	}
	return nil
}

// link fills parent pointers and document order after the post-order build.
func (t *Tree) link(n, parent *Node) {
	n.Parent = parent
	n.Order = len(t.order)
	t.order = append(t.order, n)
	for i, c := range n.Children {
		c.sibling = i
		t.link(c, n)
	}
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id int) *Node {
	if id < t.first || id >= t.NextID() {
		return nil
	}
	return t.byID[id-t.first]
}

// FirstID is the lowest id in the tree.
func (t *Tree) FirstID() int {
	return t.first
}

// NextID is one past the highest id in the tree.
func (t *Tree) NextID() int {
	return t.first + len(t.byID)
}

// Lookup returns the parsed node behind id.
func (t *Tree) Lookup(id int) (*syntax.Node, bool) {
	n := t.Node(id)
	if n == nil {
		return nil, false
	}
	return n.Source, true
}

// Len returns the number of real (id-carrying) nodes.
func (t *Tree) Len() int {
	return len(t.byID)
}

// Nodes returns every real node in document order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, t.Len())
	for _, n := range t.order {
		if !n.IsContainer() {
			out = append(out, n)
		}
	}
	return out
}
