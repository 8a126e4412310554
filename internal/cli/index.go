package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/internal/ui/pretty"
	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/fsutil"
	"github.com/yaklabco/treewrite/pkg/recipes"
	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/runner"
	"github.com/yaklabco/treewrite/pkg/store"
)

type indexFlags struct {
	db       string
	callers  string
	jobs     int
	ignore   []string
	language string
}

// indexedFile is one row of the index summary.
type indexedFile struct {
	path        string
	language    string
	definitions int
	calls       int
}

func newIndexCommand() *cobra.Command {
	flags := &indexFlags{}

	cmd := &cobra.Command{
		Use:   "index --db FILE [paths...]",
		Short: "Index function definitions and call sites into SQLite",
		Long: `Index function definitions and call sites into a SQLite database.

Definitions are stored with names qualified through their enclosing
classes and functions; calls are stored with the function they appear in.
Re-indexing a file replaces its previous rows. Files are never modified.

Examples:
  treewrite index --db code.sqlite src/
  treewrite index --db code.sqlite --callers connect .`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.db == "" {
				return fmt.Errorf("%w: --db is required", ErrUsage)
			}
			return runIndex(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.db, "db", "", "path of the SQLite database to write")
	cmd.Flags().StringVar(&flags.callers, "callers", "", "after indexing, list the call sites of this function")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringVar(&flags.language, "language", config.LanguageAuto,
		"grammar to use for every file, or auto to detect per file")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string, flags *indexFlags) error {
	override := &config.Config{Jobs: flags.jobs, Ignore: flags.ignore}
	if cmd.Flags().Changed("language") {
		override.Language = flags.language
	}
	cfg, workDir, err := loadConfig(cmd, override)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	db, err := store.Open(ctx, flags.db)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var (
		mu      sync.Mutex
		indexed []indexedFile
	)
	transform := func(ctx context.Context, s *refactor.Session) (string, error) {
		text := s.Source().String()
		if _, ok := recipes.DialectFor(s.Language()); !ok {
			logging.FromContext(ctx).Debug("language has no index dialect",
				logging.FieldPath, s.Source().Path,
				logging.FieldLanguage, s.Language())
			return text, nil
		}

		idx, err := recipes.BuildIndex(s)
		if err != nil {
			return "", err
		}
		idx.Path = relativePath(workDir, idx.Path)

		mu.Lock()
		defer mu.Unlock()
		if err := db.AddIndex(ctx, idx, fsutil.Digest([]byte(text))); err != nil {
			return "", err
		}
		indexed = append(indexed, indexedFile{
			path:        idx.Path,
			language:    idx.Language,
			definitions: len(idx.Definitions),
			calls:       len(idx.Calls),
		})
		return text, nil
	}

	opts := runner.OptionsFromConfig(cfg, args)
	opts.WorkingDir = workDir
	popts := runner.PipelineOptionsFromConfig(cfg)
	popts.DryRun = true

	result, err := runner.New(runner.NewPipeline()).Run(ctx, opts, transform, popts)
	if err != nil {
		return fmt.Errorf("index run failed: %w", err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))

	for _, outcome := range result.Files {
		if outcome.Error != nil {
			fmt.Fprint(cmd.ErrOrStderr(), styles.FormatFileError(relativePath(workDir, outcome.Path), outcome.Error))
		}
	}

	if err := writeIndexSummary(out, styles, indexed, flags.db); err != nil {
		return err
	}

	if flags.callers != "" {
		callers, err := db.CallersOf(ctx, flags.callers)
		if err != nil {
			return err
		}
		table := pretty.Table{Headers: []string{"LOCATION", "CALLER", "CALLEE"}}
		for _, c := range callers {
			caller := c.Function
			if caller == "" {
				caller = "<module>"
			}
			table.Rows = append(table.Rows, []string{
				fmt.Sprintf("%s:%d:%d", c.Path, c.Line, c.Column),
				caller,
				c.Callee,
			})
		}
		if _, err := fmt.Fprintf(out, "\n%s", styles.Format(table)); err != nil {
			return err
		}
	}

	return resultError(result, false)
}

func writeIndexSummary(w io.Writer, styles *pretty.Styles, indexed []indexedFile, db string) error {
	table := pretty.Table{Headers: []string{"FILE", "LANGUAGE", "DEFINITIONS", "CALLS"}}
	definitions, calls := 0, 0
	slices.SortFunc(indexed, func(a, b indexedFile) int { return strings.Compare(a.path, b.path) })
	for _, f := range indexed {
		table.Rows = append(table.Rows, []string{
			f.path, f.language, strconv.Itoa(f.definitions), strconv.Itoa(f.calls),
		})
		definitions += f.definitions
		calls += f.calls
	}

	if len(indexed) > 0 {
		if _, err := io.WriteString(w, styles.Format(table)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n", styles.Success.Render(fmt.Sprintf("Indexed %s and %s from %s into %s",
		pretty.Plural(definitions, "definition"), pretty.Plural(calls, "call"),
		pretty.Plural(len(indexed), "file"), db)))
	return err
}

func relativePath(workDir, path string) string {
	if workDir == "" {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
