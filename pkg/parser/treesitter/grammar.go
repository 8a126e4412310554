package treesitter

import (
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

// Language names.
const (
	Python     = "python"
	JavaScript = "javascript"
	TypeScript = "typescript"
	Rust       = "rust"
	Go         = "go"
)

// Grammar is a tree-sitter language plus the kind table derived from its
// symbol table.
type Grammar struct {
	name     string
	language *sitter.Language

	// optional lists, per kind, fields that may be absent. An absent
	// optional field is projected as an empty slot.
	optional map[string][]string

	kindsOnce sync.Once
	kinds     *syntax.KindTable
}

// Name returns the language name.
func (g *Grammar) Name() string {
	return g.name
}

// Kinds classifies every regular (named) symbol of the grammar as
// textual. Anonymous symbols never become nodes: they are folded into
// their parent as scalar fields.
func (g *Grammar) Kinds() *syntax.KindTable {
	g.kindsOnce.Do(func() {
		classes := make(map[string]syntax.Class)
		for i := range g.language.SymbolCount() {
			sym := sitter.Symbol(i)
			if g.language.SymbolType(sym) == sitter.SymbolTypeRegular {
				classes[g.language.SymbolName(sym)] = syntax.Textual
			}
		}
		// Produced by error recovery; parses containing it are rejected
		// before projection, but the kind is part of every grammar.
		classes["ERROR"] = syntax.Textual
		g.kinds = syntax.NewKindTable(g.name, classes)
	})
	return g.kinds
}

//nolint:gochecknoglobals // grammar registry, read-only after init
var grammars = map[string]*Grammar{
	Python: {
		name:     Python,
		language: python.GetLanguage(),
		optional: map[string][]string{
			"function_definition": {"return_type", "type_parameters"},
			"class_definition":    {"superclasses", "type_parameters"},
			"if_statement":        {"alternative"},
		},
	},
	JavaScript: {
		name:     JavaScript,
		language: javascript.GetLanguage(),
		optional: map[string][]string{
			"class_declaration": {"superclass"},
		},
	},
	TypeScript: {
		name:     TypeScript,
		language: typescript.GetLanguage(),
		optional: map[string][]string{
			"function_declaration": {"return_type", "type_parameters"},
			"method_definition":    {"return_type", "type_parameters"},
		},
	},
	Rust: {
		name:     Rust,
		language: rust.GetLanguage(),
		optional: map[string][]string{
			"function_item": {"return_type", "type_parameters"},
		},
	},
	Go: {
		name:     Go,
		language: golang.GetLanguage(),
		optional: map[string][]string{
			"function_declaration": {"result", "type_parameters"},
			"method_declaration":   {"result"},
		},
	},
}

// Lookup returns the grammar registered under name.
func Lookup(name string) (*Grammar, error) {
	g, ok := grammars[name]
	if !ok {
		return nil, fmt.Errorf("unknown tree-sitter language %q (known: %v)", name, Languages())
	}
	return g, nil
}

// Languages returns the registered language names, sorted.
func Languages() []string {
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
