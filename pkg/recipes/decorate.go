package recipes

import (
	"context"

	"github.com/yaklabco/treewrite/pkg/parser/treesitter"
	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// Decorate adds decorator on its own line above every Python function
// definition, indented like the definition, and returns the rewritten
// text. The result is not reparsed, so a decorator that does not parse is
// written as given.
func Decorate(_ context.Context, s *refactor.Session, decorator string) (string, error) {
	if err := requireLanguage(s, "decorate", treesitter.Python); err != nil {
		return "", err
	}

	funcs, err := s.Root().Find(tree.OfKind("function_definition"))
	if err != nil {
		return "", err
	}

	src := s.Source()
	err = funcs.PrependMap(func(_ string, n *tree.Node) string {
		sp, _ := n.Span()
		return decorator + "\n" + src.Indentation(sp.Begin)
	})
	if err != nil {
		return "", err
	}

	return s.Execute()
}
