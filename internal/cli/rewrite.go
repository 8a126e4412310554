package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/treewrite/internal/configloader"
	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/reporter"
	"github.com/yaklabco/treewrite/pkg/runner"
)

// rewriteFlags are shared by every command that rewrites files.
type rewriteFlags struct {
	dryRun    bool
	check     bool
	noBackups bool
	jobs      int
	ignore    []string
	language  string
	flavor    string
	format    string
	compact   bool
}

func addRewriteFlags(cmd *cobra.Command, flags *rewriteFlags, defaultLanguage string) {
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the rewrites as a diff without writing")
	cmd.Flags().BoolVar(&flags.check, "check", false, "fail if any file would be rewritten; never writes")
	cmd.Flags().BoolVar(&flags.noBackups, "no-backups", false, "disable backup creation")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringVar(&flags.language, "language", defaultLanguage,
		"grammar to use for every file, or auto to detect per file")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "gfm", "Markdown flavor: commonmark, gfm")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, diff")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "write JSON without indentation")
}

// cliConfig turns the flags that were set into a config override. The
// language default of a recipe command counts as set.
func (f *rewriteFlags) cliConfig(cmd *cobra.Command) *config.Config {
	cfg := &config.Config{
		DryRun:    f.dryRun,
		Check:     f.check,
		NoBackups: f.noBackups,
		Jobs:      f.jobs,
		Ignore:    f.ignore,
	}
	if cmd.Flags().Changed("language") || f.language != config.LanguageAuto {
		cfg.Language = f.language
	}
	if cmd.Flags().Changed("flavor") {
		cfg.Flavor = config.Flavor(f.flavor)
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(f.format)
	}
	return cfg
}

// loadConfig resolves the configuration for cmd with override applied on
// top of files and environment.
func loadConfig(cmd *cobra.Command, override *config.Config) (*config.Config, string, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    override,
	})
	if err != nil {
		return nil, "", errors.Join(ErrConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldLanguage, cfg.Language,
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldJobs, cfg.Jobs,
	)
	return cfg, workDir, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logging.Default())
}

// runRewrite applies transform to every file under args and reports the
// outcome.
func runRewrite(cmd *cobra.Command, args []string, flags *rewriteFlags, transform runner.Transform) error {
	logger := logging.Default()

	cfg, workDir, err := loadConfig(cmd, flags.cliConfig(cmd))
	if err != nil {
		return err
	}

	opts := runner.OptionsFromConfig(cfg, args)
	opts.WorkingDir = workDir
	popts := runner.PipelineOptionsFromConfig(cfg)

	logger.Debug("starting rewrite run",
		logging.FieldPaths, opts.Paths,
		logging.FieldWorkingDir, opts.WorkingDir,
		logging.FieldJobs, opts.Jobs,
	)

	ctx := commandContext(cmd)
	result, err := runner.New(runner.NewPipeline()).Run(ctx, opts, transform, popts)
	if err != nil {
		return errors.Join(errors.New("rewrite run failed"), err)
	}

	logger.Debug("rewrite run finished",
		logging.FieldRunID, result.RunID,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesModified, result.Stats.FilesChanged,
		logging.FieldEditsApplied, result.Stats.EditsApplied,
	)

	if err := report(cmd, cfg, workDir, flags, result, popts.DryRun); err != nil {
		return err
	}
	return resultError(result, cfg.Check)
}

func report(cmd *cobra.Command, cfg *config.Config, workDir string, flags *rewriteFlags,
	result *runner.Result, dryRun bool,
) error {
	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	// A plain dry run shows what it would do.
	if cfg.DryRun && !cfg.Check && format == reporter.FormatText && !cmd.Flags().Changed("format") {
		format = reporter.FormatDiff
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       colorMode,
		ShowSummary: true,
		DryRun:      dryRun,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(commandContext(cmd), result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}
	return nil
}
