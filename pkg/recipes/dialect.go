package recipes

import (
	"slices"

	"github.com/yaklabco/treewrite/pkg/parser/treesitter"
)

// Dialect names the node kinds the index recipe looks for in one grammar.
type Dialect struct {
	// Functions are the kinds that define a callable with a "name" field.
	Functions []string

	// Scopes are other named kinds that contribute to qualified names.
	Scopes []string

	// Call is the call-site kind and CalleeSlot the slot holding the callee.
	Call       string
	CalleeSlot string

	// Members maps member-access kinds to the slot naming the member.
	Members map[string]string
}

//nolint:gochecknoglobals // static grammar conventions
var dialects = map[string]Dialect{
	treesitter.Python: {
		Functions:  []string{"function_definition"},
		Scopes:     []string{"class_definition"},
		Call:       "call",
		CalleeSlot: "function",
		Members:    map[string]string{"attribute": "attribute"},
	},
	treesitter.JavaScript: {
		Functions:  []string{"function_declaration", "generator_function_declaration", "method_definition"},
		Scopes:     []string{"class_declaration"},
		Call:       "call_expression",
		CalleeSlot: "function",
		Members:    map[string]string{"member_expression": "property"},
	},
	treesitter.TypeScript: {
		Functions:  []string{"function_declaration", "generator_function_declaration", "method_definition"},
		Scopes:     []string{"class_declaration", "interface_declaration"},
		Call:       "call_expression",
		CalleeSlot: "function",
		Members:    map[string]string{"member_expression": "property"},
	},
	treesitter.Go: {
		Functions:  []string{"function_declaration", "method_declaration"},
		Call:       "call_expression",
		CalleeSlot: "function",
		Members:    map[string]string{"selector_expression": "field"},
	},
	treesitter.Rust: {
		Functions:  []string{"function_item"},
		Scopes:     []string{"mod_item", "trait_item"},
		Call:       "call_expression",
		CalleeSlot: "function",
		Members: map[string]string{
			"field_expression":  "field",
			"scoped_identifier": "name",
		},
	},
}

// DialectFor returns the index conventions for a language.
func DialectFor(language string) (Dialect, bool) {
	d, ok := dialects[language]
	return d, ok
}

func (d Dialect) isFunction(kind string) bool {
	return slices.Contains(d.Functions, kind)
}

func (d Dialect) isScope(kind string) bool {
	return d.isFunction(kind) || slices.Contains(d.Scopes, kind)
}
