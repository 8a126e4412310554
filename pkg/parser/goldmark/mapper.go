package goldmark

import (
	"fmt"
	"strconv"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

// Node kinds. Textual kinds carry the span of their own source segments;
// structural kinds (inline containers, lists, quotes) are assembled from
// pieces that are not contiguous in the source and never carry a span.
const (
	KindDocument        = "document"
	KindHeading         = "heading"
	KindParagraph       = "paragraph"
	KindList            = "list"
	KindListItem        = "list_item"
	KindBlockquote      = "blockquote"
	KindFencedCodeBlock = "fenced_code_block"
	KindCodeBlock       = "code_block"
	KindThematicBreak   = "thematic_break"
	KindHTMLBlock       = "html_block"
	KindText            = "text"
	KindEmphasis        = "emphasis"
	KindCodeSpan        = "code_span"
	KindLink            = "link"
	KindImage           = "image"
	KindAutoLink        = "auto_link"
	KindRawHTML         = "raw_html"
	KindString          = "string"
	KindStrikethrough   = "strikethrough"
	KindTaskCheckBox    = "task_checkbox"
	KindTable           = "table"
	KindTableHeader     = "table_header"
	KindTableRow        = "table_row"
	KindTableCell       = "table_cell"
	KindOther           = "other"
)

// ChildrenSlot holds the children of every container node.
const ChildrenSlot = "children"

//nolint:gochecknoglobals // closed kind table, read-only
var markdownKinds = syntax.NewKindTable(Language, map[string]syntax.Class{
	KindDocument:        syntax.Structural,
	KindHeading:         syntax.Textual,
	KindParagraph:       syntax.Textual,
	KindList:            syntax.Structural,
	KindListItem:        syntax.Structural,
	KindBlockquote:      syntax.Structural,
	KindFencedCodeBlock: syntax.Textual,
	KindCodeBlock:       syntax.Textual,
	KindThematicBreak:   syntax.Structural,
	KindHTMLBlock:       syntax.Textual,
	KindText:            syntax.Textual,
	KindEmphasis:        syntax.Structural,
	KindCodeSpan:        syntax.Structural,
	KindLink:            syntax.Structural,
	KindImage:           syntax.Structural,
	KindAutoLink:        syntax.Structural,
	KindRawHTML:         syntax.Textual,
	KindString:          syntax.Structural,
	KindStrikethrough:   syntax.Structural,
	KindTaskCheckBox:    syntax.Structural,
	KindTable:           syntax.Structural,
	KindTableHeader:     syntax.Structural,
	KindTableRow:        syntax.Structural,
	KindTableCell:       syntax.Structural,
	KindOther:           syntax.Structural,
})

// mapper converts a goldmark AST into syntax nodes.
type mapper struct {
	src     *source.Text
	content []byte
}

func newMapper(src *source.Text, content []byte) *mapper {
	return &mapper{src: src, content: content}
}

func (m *mapper) mapNode(gm ast.Node) (*syntax.Node, error) {
	node := &syntax.Node{Kind: kindOf(gm)}
	node.Fields = m.fields(gm)

	class, _ := markdownKinds.Class(node.Kind)
	if class == syntax.Textual {
		if begin, end := m.byteRange(gm); begin >= 0 && end >= begin {
			if err := m.setSpan(node, begin, end); err != nil {
				return nil, err
			}
		}
	}

	if gm.HasChildren() {
		var children []*syntax.Node
		for child := gm.FirstChild(); child != nil; child = child.NextSibling() {
			mapped, err := m.mapNode(child)
			if err != nil {
				return nil, err
			}
			children = append(children, mapped)
		}
		node.Slots = []syntax.Slot{{Name: ChildrenSlot, Arity: syntax.SlotList, Nodes: children}}
	}

	return node, nil
}

func (m *mapper) setSpan(node *syntax.Node, begin, end int) error {
	idx := m.src.Index()
	start, err := idx.Point(begin)
	if err != nil {
		return fmt.Errorf("%s start: %w", node.Kind, err)
	}
	stop, err := idx.Point(end)
	if err != nil {
		return fmt.Errorf("%s end: %w", node.Kind, err)
	}

	node.Span = &source.Span{Begin: begin, End: end}
	node.Start, node.End = start, stop
	node.Attrs = []syntax.Field{
		{Name: "line", Value: strconv.Itoa(start.Line + 1)},
		{Name: "column", Value: strconv.Itoa(start.Column)},
		{Name: "end_line", Value: strconv.Itoa(stop.Line + 1)},
		{Name: "end_column", Value: strconv.Itoa(stop.Column)},
	}
	return nil
}

func kindOf(gm ast.Node) string {
	switch gm.(type) {
	case *ast.Document:
		return KindDocument
	case *ast.Heading:
		return KindHeading
	case *ast.Paragraph, *ast.TextBlock:
		return KindParagraph
	case *ast.List:
		return KindList
	case *ast.ListItem:
		return KindListItem
	case *ast.Blockquote:
		return KindBlockquote
	case *ast.FencedCodeBlock:
		return KindFencedCodeBlock
	case *ast.CodeBlock:
		return KindCodeBlock
	case *ast.ThematicBreak:
		return KindThematicBreak
	case *ast.HTMLBlock:
		return KindHTMLBlock
	case *ast.Text:
		return KindText
	case *ast.Emphasis:
		return KindEmphasis
	case *ast.CodeSpan:
		return KindCodeSpan
	case *ast.Link:
		return KindLink
	case *ast.Image:
		return KindImage
	case *ast.AutoLink:
		return KindAutoLink
	case *ast.RawHTML:
		return KindRawHTML
	case *ast.String:
		return KindString
	case *east.Strikethrough:
		return KindStrikethrough
	case *east.TaskCheckBox:
		return KindTaskCheckBox
	case *east.Table:
		return KindTable
	case *east.TableHeader:
		return KindTableHeader
	case *east.TableRow:
		return KindTableRow
	case *east.TableCell:
		return KindTableCell
	default:
		return KindOther
	}
}

func (m *mapper) fields(gm ast.Node) []syntax.Field {
	switch n := gm.(type) {
	case *ast.Heading:
		return []syntax.Field{{Name: "level", Value: strconv.Itoa(n.Level)}}
	case *ast.List:
		fields := []syntax.Field{
			{Name: "ordered", Value: strconv.FormatBool(n.IsOrdered())},
			{Name: "tight", Value: strconv.FormatBool(n.IsTight)},
			{Name: "marker", Value: string(n.Marker)},
		}
		if n.IsOrdered() {
			fields = append(fields, syntax.Field{Name: "start", Value: strconv.Itoa(n.Start)})
		}
		return fields
	case *ast.FencedCodeBlock:
		info := ""
		if n.Info != nil {
			info = string(n.Info.Segment.Value(m.content))
		}
		return []syntax.Field{
			{Name: "info", Value: info},
			{Name: "language", Value: string(n.Language(m.content))},
		}
	case *ast.Text:
		return []syntax.Field{
			{Name: "value", Value: string(n.Segment.Value(m.content))},
			{Name: "soft_break", Value: strconv.FormatBool(n.SoftLineBreak())},
			{Name: "hard_break", Value: strconv.FormatBool(n.HardLineBreak())},
		}
	case *ast.Emphasis:
		return []syntax.Field{{Name: "level", Value: strconv.Itoa(n.Level)}}
	case *ast.Link:
		return []syntax.Field{
			{Name: "destination", Value: string(n.Destination)},
			{Name: "title", Value: string(n.Title)},
		}
	case *ast.Image:
		return []syntax.Field{
			{Name: "destination", Value: string(n.Destination)},
			{Name: "title", Value: string(n.Title)},
		}
	case *ast.AutoLink:
		return []syntax.Field{{Name: "url", Value: string(n.URL(m.content))}}
	case *ast.String:
		return []syntax.Field{{Name: "value", Value: string(n.Value)}}
	case *east.TaskCheckBox:
		return []syntax.Field{{Name: "checked", Value: strconv.FormatBool(n.IsChecked)}}
	case *east.TableCell:
		return []syntax.Field{{Name: "alignment", Value: n.Alignment.String()}}
	default:
		return nil
	}
}

// byteRange returns the contiguous source range a textual node covers:
// the first to last line segment of a block, or the segments of an inline.
func (m *mapper) byteRange(gm ast.Node) (int, int) {
	switch n := gm.(type) {
	case *ast.Text:
		return n.Segment.Start, n.Segment.Stop
	case *ast.RawHTML:
		begin, end := -1, -1
		for i := range n.Segments.Len() {
			seg := n.Segments.At(i)
			if begin == -1 || seg.Start < begin {
				begin = seg.Start
			}
			end = max(end, seg.Stop)
		}
		return begin, end
	}

	if gm.Type() != ast.TypeBlock {
		return -1, -1
	}
	lines := gm.Lines()
	if lines == nil || lines.Len() == 0 {
		return -1, -1
	}
	return lines.At(0).Start, lines.At(lines.Len() - 1).Stop
}
