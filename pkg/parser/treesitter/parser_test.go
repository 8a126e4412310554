package treesitter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/parser/treesitter"
	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/tree"
)

func parse(t *testing.T, language, text string) (*tree.Tree, *source.Text) {
	t.Helper()

	p, err := treesitter.New(language)
	require.NoError(t, err)

	src := source.NewText("", text)
	root, err := p.Parse(context.Background(), src)
	require.NoError(t, err)

	projected, err := tree.Project(root, p.Kinds())
	require.NoError(t, err)
	return projected, src
}

func spanText(t *testing.T, src *source.Text, n *tree.Node) string {
	t.Helper()

	sp, ok := n.Span()
	require.True(t, ok, "%s has no span", n)
	return src.SpanText(sp)
}

func TestPythonFunction(t *testing.T) {
	t.Parallel()

	projected, src := parse(t, treesitter.Python, "def f(x):\n    return x\n")

	assert.Equal(t, "module", projected.Root.Kind)

	found := tree.FindAll(projected.Root, tree.OfKind("function_definition"))
	require.NotEmpty(t, found)
	fn := found[0]
	assert.Equal(t, "def f(x):\n    return x", spanText(t, src, fn))

	name, ok := fn.Attr("name")
	require.True(t, ok)
	assert.Equal(t, "f", name)

	line, _ := fn.Attr("line")
	column, _ := fn.Attr("column")
	endLine, _ := fn.Attr("end_line")
	assert.Equal(t, "1", line)
	assert.Equal(t, "0", column)
	assert.Equal(t, "2", endLine)

	rt, ok := fn.Attr("return_type")
	require.True(t, ok, "absent optional field is projected as an empty attribute")
	assert.Empty(t, rt)

	params := fn.Child("parameters")
	require.NotNil(t, params)
	assert.Equal(t, "(x)", spanText(t, src, params))

	container := params.Child(treesitter.ChildrenSlot)
	require.NotNil(t, container)
	assert.Equal(t, "_children", container.Kind)
	require.Len(t, container.Children, 1)
	assert.Equal(t, "x", spanText(t, src, container.Children[0]))

	text, ok := container.Children[0].Attr("text")
	require.True(t, ok)
	assert.Equal(t, "x", text)

	assert.Greater(t, fn.ID, params.ID)
	assert.Greater(t, projected.Root.ID, fn.ID)
}

func TestAnonymousFieldTokensBecomeScalars(t *testing.T) {
	t.Parallel()

	projected, src := parse(t, treesitter.JavaScript, "let total = price + tax;\n")

	found := tree.FindAll(projected.Root, tree.OfKind("binary_expression"))
	require.NotEmpty(t, found)
	bin := found[0]
	assert.Equal(t, "price + tax", spanText(t, src, bin))

	op, ok := bin.Attr("operator")
	require.True(t, ok)
	assert.Equal(t, "+", op)

	left, _ := bin.Attr("left")
	right, _ := bin.Attr("right")
	assert.Equal(t, "price", left)
	assert.Equal(t, "tax", right)

	for _, n := range projected.Nodes() {
		assert.NotEqual(t, "+", n.Kind, "anonymous tokens never become nodes")
	}
}

func TestParseErrorRejectsWholeInput(t *testing.T) {
	t.Parallel()

	p := treesitter.MustNew(treesitter.Python)
	_, err := p.Parse(context.Background(), source.NewText("bad.py", "def f(:\n    pass\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, syntax.ErrParse))

	var perr *syntax.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "python", perr.Language)
	assert.Equal(t, "bad.py", perr.Path)
	assert.Equal(t, 0, perr.Line)
}

func TestParseHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := treesitter.MustNew(treesitter.Rust)
	_, err := p.Parse(ctx, source.NewText("", "fn main() {}\n"))
	require.Error(t, err)
}

func TestKindTable(t *testing.T) {
	t.Parallel()

	for _, language := range treesitter.Languages() {
		p := treesitter.MustNew(language)
		kinds := p.Kinds()
		assert.Equal(t, language, kinds.Language())
		assert.Positive(t, kinds.Len(), language)
	}

	kinds := treesitter.MustNew(treesitter.Python).Kinds()
	for _, kind := range []string{"module", "function_definition", "identifier", "call"} {
		class, ok := kinds.Class(kind)
		require.True(t, ok, kind)
		assert.Equal(t, syntax.Textual, class)
	}
	_, ok := kinds.Class("def")
	assert.False(t, ok, "anonymous tokens are not node kinds")
}

func TestUnknownLanguage(t *testing.T) {
	t.Parallel()

	_, err := treesitter.New("cobol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cobol")
	assert.Panics(t, func() { treesitter.MustNew("cobol") })
	assert.Equal(t, []string{"go", "javascript", "python", "rust", "typescript"}, treesitter.Languages())
}

func TestEveryLanguageParses(t *testing.T) {
	t.Parallel()

	samples := map[string]string{
		treesitter.Python:     "x = 1\n",
		treesitter.JavaScript: "const x = 1;\n",
		treesitter.TypeScript: "const x: number = 1;\n",
		treesitter.Rust:       "fn main() { let x = 1; }\n",
		treesitter.Go:         "package main\n\nfunc main() {}\n",
	}

	for language, text := range samples {
		t.Run(language, func(t *testing.T) {
			t.Parallel()

			projected, src := parse(t, language, text)
			for _, n := range projected.Nodes() {
				sp, ok := n.Span()
				require.True(t, ok)
				assert.LessOrEqual(t, sp.End, src.Len())
			}
		})
	}
}
