// Package tree projects parsed syntax nodes into a uniform, queryable tree
// where every real node carries a stable numeric id and its position
// attributes.
package tree

import (
	"strconv"

	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

// ContainerPrefix starts the kind of every synthetic list container.
const ContainerPrefix = "_"

// AttrID is the attribute that carries a node's id.
const AttrID = "id"

// Attr is one ordered name/value attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is a projected tree node. Real nodes wrap exactly one parsed node
// and have a positive ID. Containers group the members of a list slot;
// they have ID 0 and no Source.
type Node struct {
	// ID is unique within the tree. Children always have smaller ids than
	// their parent.
	ID int

	// Kind is the grammar kind, or "_" + slot name for containers.
	Kind string

	// Attrs are the stringified scalar fields, then the structural
	// attributes, then empty slot markers, then the id.
	Attrs []Attr

	// Children are the projected child slots in grammar order.
	Children []*Node

	// Parent is nil for the root.
	Parent *Node

	// Slot is the name of the parent slot this node occupies.
	Slot string

	// Source is the parsed node this node wraps.
	Source *syntax.Node

	// Order is the node's position in a pre-order walk of the tree.
	Order int

	sibling int
	tree    *Tree
}

// Tree returns the tree the node belongs to.
func (n *Node) Tree() *Tree {
	return n.tree
}

// SiblingIndex returns the node's position among its parent's children.
func (n *Node) SiblingIndex() int {
	return n.sibling
}

// IsContainer reports whether the node is a synthetic list container.
func (n *Node) IsContainer() bool {
	return n.Source == nil
}

// Attr returns an attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Span returns the source span of the node, if it has one.
func (n *Node) Span() (source.Span, bool) {
	if n.Source == nil || n.Source.Span == nil {
		return source.Span{}, false
	}
	return *n.Source.Span, true
}

// Start returns the zero-based start point of a real node.
func (n *Node) Start() source.Point {
	if n.Source == nil {
		return source.Point{}
	}
	return n.Source.Start
}

// Child returns the first child occupying slot name, or nil. For list
// slots the container is returned.
func (n *Node) Child(slot string) *Node {
	for _, c := range n.Children {
		if c.Slot == slot {
			return c
		}
	}
	return nil
}

// Ancestor returns the closest ancestor of the given kind, or nil.
func (n *Node) Ancestor(kind string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

// String identifies the node for logs.
func (n *Node) String() string {
	if n.IsContainer() {
		return n.Kind
	}
	return n.Kind + "#" + strconv.Itoa(n.ID)
}
