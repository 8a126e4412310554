package plan

import (
	"strings"
	"text/template"

	"github.com/yaklabco/treewrite/pkg/tree"
)

// Node is the data a step template is executed with.
type Node struct {
	// Text is the node's source text.
	Text string
	// Indent is the leading whitespace of the node's first line.
	Indent string
	Kind   string
	ID     int
	// Line is 1-based; Column is a 0-based byte column.
	Line   int
	Column int

	node *tree.Node
}

// Attr returns the named attribute of the node, or "".
func (n Node) Attr(name string) string {
	v, _ := n.node.Attr(name)
	return v
}

//nolint:gochecknoglobals // template helpers
var templateFuncs = template.FuncMap{
	"upper":      strings.ToUpper,
	"lower":      strings.ToLower,
	"trim":       strings.TrimSpace,
	"trimPrefix": func(prefix, s string) string { return strings.TrimPrefix(s, prefix) },
	"trimSuffix": func(suffix, s string) string { return strings.TrimSuffix(s, suffix) },
	"replace":    func(old, repl, s string) string { return strings.ReplaceAll(s, old, repl) },
}

func newTemplate(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
}

func render(t *template.Template, data Node) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
