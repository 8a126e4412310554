package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/plan"
)

func newApplyCommand() *cobra.Command {
	flags := &rewriteFlags{}
	var planPath string

	cmd := &cobra.Command{
		Use:   "apply --plan FILE [paths...]",
		Short: "Run a rewrite plan over files",
		Long: `Run a YAML rewrite plan over files.

A plan is a list of passes. Each pass is a list of steps that select nodes
and prepend to them, replace them or run a regular-expression substitution
inside them. All edits of a pass are collated together; the next pass sees
the rewritten and reparsed text. A plan that names a language only
processes files of that language.

Examples:
  treewrite apply --plan rename.yml src/
  treewrite apply --plan rename.yml --check .`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if planPath == "" {
				return fmt.Errorf("%w: --plan is required", ErrUsage)
			}
			p, err := plan.Load(planPath)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrConfig, err)
			}
			logging.Default().Debug("plan loaded",
				logging.FieldPlan, planPath,
				logging.FieldLanguage, p.Language,
			)

			if p.Language != "" && !cmd.Flags().Changed("language") {
				flags.language = p.Language
			}
			return runRewrite(cmd, args, flags, p.Apply)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to the plan file")
	addRewriteFlags(cmd, flags, config.LanguageAuto)

	return cmd
}
