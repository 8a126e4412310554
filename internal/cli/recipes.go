package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/treewrite/pkg/parser/treesitter"
	"github.com/yaklabco/treewrite/pkg/recipes"
	"github.com/yaklabco/treewrite/pkg/refactor"
)

func newDecorateCommand() *cobra.Command {
	flags := &rewriteFlags{}
	var decorator string

	cmd := &cobra.Command{
		Use:   "decorate [paths...]",
		Short: "Add a decorator line above every Python function",
		Long: `Add a decorator line above every Python function definition.

The decorator is written on its own line, indented like the function it
decorates. Methods and nested functions are decorated too.

Examples:
  treewrite decorate --decorator @traced src/
  treewrite decorate --decorator "@lru_cache(maxsize=None)" --dry-run app.py`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if decorator == "" {
				return fmt.Errorf("%w: --decorator is required", ErrUsage)
			}
			return runRewrite(cmd, args, flags, func(ctx context.Context, s *refactor.Session) (string, error) {
				return recipes.Decorate(ctx, s, decorator)
			})
		},
	}

	cmd.Flags().StringVar(&decorator, "decorator", "", "decorator text, including the @")
	addRewriteFlags(cmd, flags, treesitter.Python)

	return cmd
}

func newAnnotateCommand() *cobra.Command {
	flags := &rewriteFlags{}
	annotation := recipes.Annotation{}

	cmd := &cobra.Command{
		Use:   "annotate [paths...]",
		Short: "Add type annotations to a Python function",
		Long: `Add type annotations to every Python function with the given name.

Positional parameters are typed in order from --args, the rest by name
from --kwarg. Parameters that already have a type, or for which no type is
given, are left alone. --returns adds a return annotation.

Examples:
  treewrite annotate --func add --args int,int --returns int math.py
  treewrite annotate --func handler --args self --kwarg request=Request,timeout=float src/`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if annotation.Function == "" {
				return fmt.Errorf("%w: --func is required", ErrUsage)
			}
			return runRewrite(cmd, args, flags, func(ctx context.Context, s *refactor.Session) (string, error) {
				out, err := recipes.AnnotateParams(ctx, s, annotation)
				if errors.Is(err, recipes.ErrFunctionNotFound) {
					// Files without the function are left as they are.
					return s.Source().String(), nil
				}
				return out, err
			})
		},
	}

	cmd.Flags().StringVar(&annotation.Function, "func", "", "name of the function to annotate")
	cmd.Flags().StringSliceVar(&annotation.Args, "args", nil, "types of the positional parameters, in order")
	cmd.Flags().StringToStringVar(&annotation.Kwargs, "kwarg", nil, "types of parameters by name (name=type)")
	cmd.Flags().StringVar(&annotation.Returns, "returns", "", "return type")
	addRewriteFlags(cmd, flags, treesitter.Python)

	return cmd
}
