package query

import (
	"github.com/antchfx/xpath"

	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// AttrSlot is the attribute exposing the parent slot a node occupies.
const AttrSlot = "slot"

// Navigator walks a projected tree for the XPath engine. The document
// node sits above the tree root. Element values are node source text.
type Navigator struct {
	root *tree.Node
	text *source.Text

	// cur is nil while positioned on the document node.
	cur  *tree.Node
	attr int
}

var _ xpath.NodeNavigator = (*Navigator)(nil)

// NewNavigator returns a navigator positioned on n.
func NewNavigator(n *tree.Node, text *source.Text) *Navigator {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	return &Navigator{root: root, text: text, cur: n, attr: -1}
}

// Current returns the tree node the navigator is on, or nil for the
// document node and attributes.
func (nav *Navigator) Current() *tree.Node {
	if nav.attr >= 0 {
		return nil
	}
	return nav.cur
}

func (nav *Navigator) attrs() []tree.Attr {
	if nav.cur == nil || nav.cur.IsContainer() {
		return nil
	}
	if nav.cur.Slot == "" {
		return nav.cur.Attrs
	}
	out := make([]tree.Attr, len(nav.cur.Attrs), len(nav.cur.Attrs)+1)
	copy(out, nav.cur.Attrs)
	return append(out, tree.Attr{Name: AttrSlot, Value: nav.cur.Slot})
}

// NodeType implements xpath.NodeNavigator.
func (nav *Navigator) NodeType() xpath.NodeType {
	switch {
	case nav.cur == nil:
		return xpath.RootNode
	case nav.attr >= 0:
		return xpath.AttributeNode
	default:
		return xpath.ElementNode
	}
}

// LocalName implements xpath.NodeNavigator.
func (nav *Navigator) LocalName() string {
	if nav.cur == nil {
		return ""
	}
	if nav.attr >= 0 {
		return nav.attrs()[nav.attr].Name
	}
	return nav.cur.Kind
}

// Prefix implements xpath.NodeNavigator. Trees have no namespaces.
func (nav *Navigator) Prefix() string {
	return ""
}

// Value implements xpath.NodeNavigator.
func (nav *Navigator) Value() string {
	switch {
	case nav.cur == nil:
		return nav.text.String()
	case nav.attr >= 0:
		return nav.attrs()[nav.attr].Value
	}
	sp, ok := nav.cur.Span()
	if !ok {
		return ""
	}
	return nav.text.SpanText(sp)
}

// Copy implements xpath.NodeNavigator.
func (nav *Navigator) Copy() xpath.NodeNavigator {
	clone := *nav
	return &clone
}

// MoveToRoot implements xpath.NodeNavigator.
func (nav *Navigator) MoveToRoot() {
	nav.cur = nil
	nav.attr = -1
}

// MoveToParent implements xpath.NodeNavigator.
func (nav *Navigator) MoveToParent() bool {
	switch {
	case nav.attr >= 0:
		nav.attr = -1
		return true
	case nav.cur == nil:
		return false
	}
	nav.cur = nav.cur.Parent
	return true
}

// MoveToNextAttribute implements xpath.NodeNavigator.
func (nav *Navigator) MoveToNextAttribute() bool {
	if nav.cur == nil || nav.attr+1 >= len(nav.attrs()) {
		return false
	}
	nav.attr++
	return true
}

// MoveToChild implements xpath.NodeNavigator.
func (nav *Navigator) MoveToChild() bool {
	if nav.attr >= 0 {
		return false
	}
	if nav.cur == nil {
		nav.cur = nav.root
		return true
	}
	if len(nav.cur.Children) == 0 {
		return false
	}
	nav.cur = nav.cur.Children[0]
	return true
}

// MoveToFirst implements xpath.NodeNavigator.
func (nav *Navigator) MoveToFirst() bool {
	if nav.attr >= 0 || nav.cur == nil || nav.cur.Parent == nil {
		return false
	}
	nav.cur = nav.cur.Parent.Children[0]
	return true
}

// MoveToNext implements xpath.NodeNavigator.
func (nav *Navigator) MoveToNext() bool {
	if nav.attr >= 0 || nav.cur == nil || nav.cur.Parent == nil {
		return false
	}
	siblings := nav.cur.Parent.Children
	next := nav.cur.SiblingIndex() + 1
	if next >= len(siblings) {
		return false
	}
	nav.cur = siblings[next]
	return true
}

// MoveToPrevious implements xpath.NodeNavigator.
func (nav *Navigator) MoveToPrevious() bool {
	if nav.attr >= 0 || nav.cur == nil || nav.cur.Parent == nil {
		return false
	}
	prev := nav.cur.SiblingIndex() - 1
	if prev < 0 {
		return false
	}
	nav.cur = nav.cur.Parent.Children[prev]
	return true
}

// MoveTo implements xpath.NodeNavigator.
func (nav *Navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*Navigator)
	if !ok || o.root != nav.root {
		return false
	}
	nav.cur = o.cur
	nav.attr = o.attr
	return true
}
