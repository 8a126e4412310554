package refactor_test

import (
	"context"
	"strings"

	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

// wordParser is a tiny grammar for exercising sessions without a real
// language: a document holds one line node per non-empty line, each line
// holds its space-separated words, and every line also gets a span-less
// "note" child. Text containing "!!" does not parse.
type wordParser struct{}

func (wordParser) Language() string { return "words" }

func (wordParser) Kinds() *syntax.KindTable {
	return syntax.NewKindTable("words", map[string]syntax.Class{
		"document": syntax.Textual,
		"line":     syntax.Textual,
		"word":     syntax.Textual,
		"note":     syntax.Structural,
	})
}

func (wordParser) Parse(_ context.Context, text *source.Text) (*syntax.Node, error) {
	content := text.String()
	if i := strings.Index(content, "!!"); i >= 0 {
		point, _ := text.Index().Point(i)
		return nil, &syntax.ParseError{Language: "words", Line: point.Line, Column: point.Column}
	}

	var lines []*syntax.Node
	offset := 0
	for _, raw := range strings.SplitAfter(content, "\n") {
		body := strings.TrimSuffix(raw, "\n")
		if strings.TrimSpace(body) != "" {
			lines = append(lines, parseLine(body, offset))
		}
		offset += len(raw)
	}

	return &syntax.Node{
		Kind:  "document",
		Slots: []syntax.Slot{{Name: "lines", Arity: syntax.SlotList, Nodes: lines}},
		Span:  &source.Span{Begin: 0, End: len(content)},
	}, nil
}

func parseLine(body string, offset int) *syntax.Node {
	var words []*syntax.Node
	pos := 0
	for _, w := range strings.Fields(body) {
		at := strings.Index(body[pos:], w) + pos
		words = append(words, &syntax.Node{
			Kind:   "word",
			Fields: []syntax.Field{{Name: "value", Value: w}},
			Span:   &source.Span{Begin: offset + at, End: offset + at + len(w)},
		})
		pos = at + len(w)
	}

	first := strings.Index(body, strings.TrimLeft(body, " "))
	return &syntax.Node{
		Kind: "line",
		Slots: []syntax.Slot{
			{Name: "words", Arity: syntax.SlotList, Nodes: words},
			{Name: "note", Arity: syntax.SlotSingle, Node: &syntax.Node{Kind: "note"}},
		},
		Span: &source.Span{Begin: offset + first, End: offset + len(body)},
	}
}
