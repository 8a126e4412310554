package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/pkg/parser/treesitter"
	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// Annotation describes the types to add to one Python function.
type Annotation struct {
	// Function is the name of the function(s) to annotate.
	Function string

	// Args types positional parameters in order, self included.
	Args []string

	// Kwargs types the remaining parameters by name. Splat parameters are
	// looked up without their stars.
	Kwargs map[string]string

	// Returns is the return type; empty leaves the return type alone.
	Returns string
}

// AnnotateParams adds type annotations to every function named
// a.Function. The return type is written in a first pass, the session is
// reloaded, and the parameters are annotated in a second pass. Parameters
// that already carry a type keep it, and parameters with no type given
// are left untouched.
func AnnotateParams(ctx context.Context, s *refactor.Session, a Annotation) (string, error) {
	if err := requireLanguage(s, "annotate", treesitter.Python); err != nil {
		return "", err
	}
	if !isIdentifier(a.Function) {
		return "", fmt.Errorf("function %q: %w", a.Function, ErrInvalidName)
	}

	funcs, err := selectFunctions(s, a.Function)
	if err != nil {
		return "", err
	}

	if a.Returns != "" {
		if err := annotateReturn(funcs, a.Returns); err != nil {
			return "", err
		}
		if _, err := s.Commit(ctx); err != nil {
			return "", fmt.Errorf("return type pass: %w", err)
		}

		if funcs, err = selectFunctions(s, a.Function); err != nil {
			return "", err
		}
	}

	replacements := make(map[*tree.Node]string)
	for _, fn := range funcs.Nodes() {
		if err := planParams(s, fn, a, replacements); err != nil {
			return "", err
		}
	}

	params, err := funcs.Select(`*[@slot="parameters"]/_children/*`)
	if err != nil {
		return "", err
	}
	params, err = params.Filter(func(n *tree.Node) bool {
		_, ok := replacements[n]
		return ok
	})
	if err != nil {
		return "", err
	}
	err = params.SubstituteMap(func(_ string, n *tree.Node) string {
		return replacements[n]
	})
	if err != nil {
		return "", err
	}

	out, err := s.Execute()
	if err != nil {
		return "", fmt.Errorf("parameter pass: %w", err)
	}
	return out, nil
}

func selectFunctions(s *refactor.Session, name string) (*refactor.Selection, error) {
	funcs, err := s.Select(fmt.Sprintf(`//function_definition[@name="%s"]`, name))
	if err != nil {
		return nil, err
	}
	if funcs.Len() == 0 {
		return nil, fmt.Errorf("function %q: %w", name, ErrFunctionNotFound)
	}
	return funcs, nil
}

// annotateReturn appends the return type after the parameter list, or
// replaces the existing return type.
func annotateReturn(funcs *refactor.Selection, returns string) error {
	bare, err := funcs.Filter(func(n *tree.Node) bool { return n.Child("return_type") == nil })
	if err != nil {
		return err
	}
	params, err := bare.Map(func(n *tree.Node) *tree.Node { return n.Child("parameters") })
	if err != nil {
		return err
	}
	err = params.SubstituteMap(func(text string, _ *tree.Node) string {
		return text + " -> " + returns
	})
	if err != nil {
		return err
	}

	typed, err := funcs.Filter(func(n *tree.Node) bool { return n.Child("return_type") != nil })
	if err != nil {
		return err
	}
	existing, err := typed.Map(func(n *tree.Node) *tree.Node { return n.Child("return_type") })
	if err != nil {
		return err
	}
	return existing.SubstituteMap(func(string, *tree.Node) string { return returns })
}

// planParams computes the new text of each parameter of fn that gets a
// type.
func planParams(s *refactor.Session, fn *tree.Node, a Annotation, out map[*tree.Node]string) error {
	params := fn.Child("parameters")
	if params == nil {
		return nil
	}
	list := params.Child(treesitter.ChildrenSlot)
	if list == nil {
		return nil
	}

	position := 0
	positional := func(name string) string {
		defer func() { position++ }()
		if position < len(a.Args) {
			return a.Args[position]
		}
		return a.Kwargs[name]
	}

	for _, p := range list.Children {
		text, err := s.TextOf(p)
		if err != nil {
			return err
		}

		switch p.Kind {
		case "identifier":
			if typ := positional(text); typ != "" {
				out[p] = text + ": " + typ
			}
		case "default_parameter":
			name, _ := p.Attr("name")
			typ := positional(name)
			if typ == "" {
				continue
			}
			value, err := s.TextOf(p.Child("value"))
			if err != nil {
				return err
			}
			out[p] = name + ": " + typ + " = " + value
		case "typed_parameter", "typed_default_parameter":
			position++
		case "list_splat_pattern", "dictionary_splat_pattern":
			if typ := a.Kwargs[strings.TrimLeft(text, "*")]; typ != "" {
				out[p] = text + ": " + typ
			}
		}
	}
	return nil
}
