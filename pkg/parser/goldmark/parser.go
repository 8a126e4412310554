// Package goldmark adapts the goldmark Markdown parser to the
// parser-neutral syntax tree.
package goldmark

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

// Language is the name the parser reports.
const Language = "markdown"

// Markdown flavors.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Parser parses Markdown with goldmark.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a parser for the given flavor. Unknown flavors fall back to
// CommonMark.
func New(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Language returns "markdown".
func (p *Parser) Language() string {
	return Language
}

// Kinds returns the Markdown kind table.
func (p *Parser) Kinds() *syntax.KindTable {
	return markdownKinds
}

// Parse converts Markdown into a syntax tree. Markdown has no invalid
// input, so Parse only fails on cancellation or an inconsistent mapping.
func (p *Parser) Parse(ctx context.Context, src *source.Text) (*syntax.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	content := []byte(src.String())
	reader := text.NewReader(content)
	doc := p.md.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	m := newMapper(src, content)
	return m.mapNode(doc)
}

func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option
	if flavor == FlavorGFM {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}
	return goldmark.New(opts...)
}
