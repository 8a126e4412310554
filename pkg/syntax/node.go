// Package syntax defines the parser-neutral node shape every grammar
// adapter produces before projection.
package syntax

import "github.com/yaklabco/treewrite/pkg/source"

// Field is a named scalar value on a node.
type Field struct {
	Name  string
	Value string
}

// Arity tells how many nodes a slot holds.
type Arity int

const (
	// SlotSingle holds exactly one node.
	SlotSingle Arity = iota
	// SlotList holds an ordered, possibly empty, list of nodes.
	SlotList
	// SlotEmpty is an optional slot with nothing in it.
	SlotEmpty
)

// String returns the arity name.
func (a Arity) String() string {
	switch a {
	case SlotSingle:
		return "single"
	case SlotList:
		return "list"
	case SlotEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Slot is a named child position.
type Slot struct {
	Name  string
	Arity Arity
	Node  *Node
	Nodes []*Node
}

// Node is a parsed syntax node. Fields hold scalar values in grammar
// order, Attrs hold positional attributes, and Slots hold children.
// Span is nil for nodes that have no contiguous source text.
type Node struct {
	Kind   string
	Fields []Field
	Attrs  []Field
	Slots  []Slot
	Span   *source.Span
	Start  source.Point
	End    source.Point
}

// Field returns the value of a scalar field and whether it was set.
func (n *Node) Field(name string) (string, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Slot returns the named slot, or nil.
func (n *Node) Slot(name string) *Slot {
	for i := range n.Slots {
		if n.Slots[i].Name == name {
			return &n.Slots[i]
		}
	}
	return nil
}

// Children returns every child node in slot order.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, slot := range n.Slots {
		switch slot.Arity {
		case SlotSingle:
			out = append(out, slot.Node)
		case SlotList:
			out = append(out, slot.Nodes...)
		case SlotEmpty:
		}
	}
	return out
}

// HasSpan reports whether the node carries source text.
func (n *Node) HasSpan() bool {
	return n.Span != nil
}
