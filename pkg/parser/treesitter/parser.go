// Package treesitter adapts tree-sitter grammars to the parser-neutral
// syntax tree.
//
// Mapping rules:
//   - every named tree-sitter node becomes a syntax.Node of the same kind;
//   - an anonymous token that occupies a named field (an operator, say)
//     becomes a scalar field holding the token text;
//   - named children are grouped by field: one child gives a single slot,
//     several give a list slot; children without a field go to the
//     "children" list slot;
//   - a leaf node gets a "text" field, and a leaf occupying a field is also
//     copied onto its parent as a scalar field of that name;
//   - every node carries "line", "column", "end_line" and "end_column"
//     attributes, with 1-based lines and 0-based byte columns.
package treesitter

import (
	"context"
	"fmt"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

// ChildrenSlot holds named children that occupy no field.
const ChildrenSlot = "children"

// Parser parses one language.
type Parser struct {
	grammar *Grammar
}

// New returns a parser for the named language.
func New(language string) (*Parser, error) {
	g, err := Lookup(language)
	if err != nil {
		return nil, err
	}
	return &Parser{grammar: g}, nil
}

// MustNew is like New but panics on an unknown language.
func MustNew(language string) *Parser {
	p, err := New(language)
	if err != nil {
		panic(err)
	}
	return p
}

// Language returns the grammar name.
func (p *Parser) Language() string {
	return p.grammar.name
}

// Kinds returns the grammar's kind table.
func (p *Parser) Kinds() *syntax.KindTable {
	return p.grammar.Kinds()
}

// Parse parses text. A tree containing error or missing nodes is rejected
// with a *syntax.ParseError locating the first one.
func (p *Parser) Parse(ctx context.Context, text *source.Text) (*syntax.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content := []byte(text.String())

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.grammar.language)

	parsed, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter %s: %w", p.grammar.name, err)
	}
	defer parsed.Close()

	root := parsed.RootNode()
	if root.HasError() {
		return nil, p.parseError(root, text, content)
	}

	c := converter{grammar: p.grammar, text: text, content: content}
	return c.convert(root)
}

func (p *Parser) parseError(root *sitter.Node, text *source.Text, content []byte) error {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}

	start := bad.StartPoint()
	detail := ""
	switch {
	case bad.IsMissing():
		detail = "missing " + strconv.Quote(bad.Type())
	default:
		snippet := bad.Content(content)
		if len(snippet) > 20 {
			snippet = snippet[:20] + "..."
		}
		detail = strconv.Quote(snippet)
	}

	return &syntax.ParseError{
		Language: p.grammar.name,
		Path:     text.Path,
		Line:     int(start.Row),
		Column:   int(start.Column),
		Detail:   detail,
	}
}

// firstError returns the first error or missing node in document order,
// descending only into subtrees that contain one.
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsMissing() || n.Type() == "ERROR" {
		return n
	}
	for i := range int(n.ChildCount()) {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

type converter struct {
	grammar *Grammar
	text    *source.Text
	content []byte
}

func (c *converter) convert(n *sitter.Node) (*syntax.Node, error) {
	start := point(n.StartPoint())
	end := point(n.EndPoint())
	span, err := c.text.Index().Span(start, end)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", n.Type(), start, err)
	}

	out := &syntax.Node{
		Kind:  n.Type(),
		Span:  &span,
		Start: start,
		End:   end,
	}

	count := int(n.ChildCount())
	if count == 0 {
		out.Fields = append(out.Fields, syntax.Field{Name: "text", Value: c.text.SpanText(span)})
	}

	var order []string
	groups := make(map[string][]*syntax.Node)
	for i := range count {
		child := n.Child(i)
		if child == nil {
			continue
		}
		field := n.FieldNameForChild(i)

		if !child.IsNamed() {
			if field != "" {
				setField(out, field, child.Content(c.content))
			}
			continue
		}

		converted, err := c.convert(child)
		if err != nil {
			return nil, err
		}

		slot := field
		if slot == "" {
			slot = ChildrenSlot
		} else if child.ChildCount() == 0 {
			setField(out, field, child.Content(c.content))
		}
		if _, seen := groups[slot]; !seen {
			order = append(order, slot)
		}
		groups[slot] = append(groups[slot], converted)
	}

	for _, name := range order {
		nodes := groups[name]
		if len(nodes) == 1 && name != ChildrenSlot {
			out.Slots = append(out.Slots, syntax.Slot{Name: name, Arity: syntax.SlotSingle, Node: nodes[0]})
			continue
		}
		out.Slots = append(out.Slots, syntax.Slot{Name: name, Arity: syntax.SlotList, Nodes: nodes})
	}
	for _, name := range c.grammar.optional[out.Kind] {
		if _, present := groups[name]; !present {
			out.Slots = append(out.Slots, syntax.Slot{Name: name, Arity: syntax.SlotEmpty})
		}
	}

	out.Attrs = []syntax.Field{
		{Name: "line", Value: strconv.Itoa(start.Line + 1)},
		{Name: "column", Value: strconv.Itoa(start.Column)},
		{Name: "end_line", Value: strconv.Itoa(end.Line + 1)},
		{Name: "end_column", Value: strconv.Itoa(end.Column)},
	}
	return out, nil
}

// setField records the first value seen for a field name.
func setField(n *syntax.Node, name, value string) {
	if _, ok := n.Field(name); ok {
		return
	}
	n.Fields = append(n.Fields, syntax.Field{Name: name, Value: value})
}

func point(p sitter.Point) source.Point {
	return source.Point{Line: int(p.Row), Column: int(p.Column)}
}
