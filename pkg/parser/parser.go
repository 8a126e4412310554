// Package parser resolves a language name to the parser that handles it.
package parser

import (
	"fmt"

	"github.com/yaklabco/treewrite/pkg/langdetect"
	"github.com/yaklabco/treewrite/pkg/parser/goldmark"
	"github.com/yaklabco/treewrite/pkg/parser/treesitter"
	"github.com/yaklabco/treewrite/pkg/refactor"
)

// For returns the parser for language. flavor selects the Markdown
// flavor and is ignored for code.
func For(language, flavor string) (refactor.Parser, error) {
	if language == langdetect.Markdown {
		return goldmark.New(flavor), nil
	}
	p, err := treesitter.New(language)
	if err != nil {
		return nil, fmt.Errorf("no parser for %q: %w", language, err)
	}
	return p, nil
}

// Languages lists every language For accepts, sorted.
func Languages() []string {
	return langdetect.Supported()
}
