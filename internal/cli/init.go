package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/treewrite/internal/configloader"
	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/fsutil"
)

type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new treewrite configuration file",
		Long: `Create a .treewrite.yml configuration file in the current directory
with the defaults written out and commented.

When the file exists, init asks before overwriting it if run in a
terminal, and refuses otherwise unless --force is given.

Examples:
  treewrite init                     Create .treewrite.yml
  treewrite init --output ci.yml     Write to a custom file path
  treewrite init --force             Overwrite without asking`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ProjectConfigFiles[0], "output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil && !flags.force {
		if !configloader.IsInteractive() {
			return fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrUsage, flags.output)
		}
		ok, err := configloader.Confirm(cmd.ErrOrStderr(), cmd.InOrStdin(),
			fmt.Sprintf("%s exists. Overwrite?", flags.output), false)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("kept existing configuration file", logging.FieldPath, flags.output)
			return nil
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	// The template must load cleanly before it is written.
	if _, err := config.FromYAML([]byte(config.DefaultTemplate)); err != nil {
		return fmt.Errorf("default template: %w", err)
	}

	if err := fsutil.WriteAtomic(commandContext(cmd), absPath, []byte(config.DefaultTemplate),
		fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("customize your configuration by editing the file")

	return nil
}
