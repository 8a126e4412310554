package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/internal/ui/pretty"
	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/parser"
	"github.com/yaklabco/treewrite/pkg/query"
	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/runner"
	"github.com/yaklabco/treewrite/pkg/tree"
)

type queryFlags struct {
	eval      bool
	xml       bool
	noContext bool
	format    string
	language  string
	flavor    string
	ignore    []string
}

// queryMatch is one selected node in JSON output. Nodes without a source
// span have no position and no text.
type queryMatch struct {
	Path      string `json:"path"`
	ID        int    `json:"id"`
	Kind      string `json:"kind"`
	Line      int    `json:"line,omitempty"`
	Column    int    `json:"column,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
	EndColumn int    `json:"end_column,omitempty"`
	Text      string `json:"text"`
}

// queryValue is the result of a non-node expression in JSON output.
type queryValue struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type queryOutput struct {
	Matches []queryMatch `json:"matches"`
	Values  []queryValue `json:"values,omitempty"`
}

func newQueryCommand() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "query <expression> [paths...]",
		Short: "Select nodes with a path expression",
		Long: `Select syntax nodes with a path expression and print them.

Every node is an element named after its kind, scalar fields are
attributes, and child slots are nested elements. Nodes are printed with
their position and source line.

Examples:
  treewrite query '//function_definition' src/
  treewrite query '//call[identifier[@slot="function"]="print"]' app.py
  treewrite query --eval 'count(//function_definition)' app.py
  treewrite query --xml '/' app.py`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], args[1:], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.eval, "eval", false, "evaluate the expression; it may yield a number, string or boolean")
	cmd.Flags().BoolVar(&flags.xml, "xml", false, "dump the selected subtrees as XML")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().StringVar(&flags.language, "language", config.LanguageAuto,
		"grammar to use for every file, or auto to detect per file")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "gfm", "Markdown flavor: commonmark, gfm")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")

	return cmd
}

func runQuery(cmd *cobra.Command, expr string, paths []string, flags *queryFlags) error {
	if _, err := query.Compile(expr); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if flags.format != string(config.FormatText) && flags.format != string(config.FormatJSON) {
		return fmt.Errorf("%w: unknown format %q; valid formats: text, json", ErrUsage, flags.format)
	}
	if flags.xml && flags.format == string(config.FormatJSON) {
		return fmt.Errorf("%w: --xml cannot be combined with --format json", ErrUsage)
	}

	override := &config.Config{Ignore: flags.ignore}
	if cmd.Flags().Changed("language") {
		override.Language = flags.language
	}
	if cmd.Flags().Changed("flavor") {
		override.Flavor = config.Flavor(flags.flavor)
	}
	cfg, workDir, err := loadConfig(cmd, override)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	opts := runner.OptionsFromConfig(cfg, paths)
	opts.WorkingDir = workDir
	targets, err := runner.Discover(ctx, opts)
	if err != nil {
		return err
	}
	sessionOpts := runner.PipelineOptionsFromConfig(cfg).SessionOptions

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	out := cmd.OutOrStdout()
	q := &queryPrinter{
		out:       out,
		styles:    pretty.NewStyles(pretty.IsColorEnabled(colorMode, out)),
		workDir:   workDir,
		noContext: flags.noContext,
		output:    &queryOutput{Matches: []queryMatch{}},
	}

	failed := 0
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("query cancelled: %w", err)
		}

		display := q.display(target.Path)
		if err := q.queryFile(cmd, target, cfg, sessionOpts, expr, flags); err != nil {
			failed++
			fmt.Fprint(cmd.ErrOrStderr(), q.styles.FormatFileError(display, err))
			logging.Default().Debug("query failed", logging.FieldPath, display, logging.FieldError, err)
		}
	}

	if flags.format == string(config.FormatJSON) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(q.output); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	}

	if failed > 0 {
		return ErrFilesFailed
	}
	return nil
}

type queryPrinter struct {
	out       io.Writer
	styles    *pretty.Styles
	workDir   string
	noContext bool
	output    *queryOutput
}

func (q *queryPrinter) queryFile(cmd *cobra.Command, target runner.Target, cfg *config.Config,
	sessionOpts []refactor.Option, expr string, flags *queryFlags,
) error {
	p, err := parser.For(target.Language, string(cfg.Flavor))
	if err != nil {
		return err
	}
	s, err := refactor.Load(commandContext(cmd), p, target.Path, sessionOpts...)
	if err != nil {
		return err
	}
	asJSON := flags.format == string(config.FormatJSON)

	if !flags.eval {
		sel, err := s.Select(expr)
		if err != nil {
			return err
		}
		if flags.xml {
			return sel.DumpXML(q.out)
		}
		return q.matches(s, target.Path, sel, asJSON)
	}

	v, err := s.Evaluate(expr)
	if err != nil {
		return err
	}
	if sel, ok := v.(*refactor.Selection); ok {
		if flags.xml {
			return sel.DumpXML(q.out)
		}
		return q.matches(s, target.Path, sel, asJSON)
	}

	if asJSON {
		q.output.Values = append(q.output.Values, queryValue{Path: q.display(target.Path), Value: v})
		return nil
	}
	_, err = fmt.Fprintf(q.out, "%s: %v\n", q.styles.FilePath.Render(q.display(target.Path)), v)
	return err
}

func (q *queryPrinter) matches(s *refactor.Session, path string, sel *refactor.Selection, asJSON bool) error {
	display := q.display(path)
	for _, n := range sel.Nodes() {
		m := q.match(s, display, n)
		if asJSON {
			q.output.Matches = append(q.output.Matches, m)
			continue
		}

		if _, err := io.WriteString(q.out, q.styles.FormatMatch(display, m.Line, m.Column, m.Kind, m.Text)); err != nil {
			return err
		}
		if q.noContext || m.Line == 0 {
			continue
		}
		line, err := s.Source().Line(m.Line - 1)
		if err != nil {
			continue
		}
		first, _, _ := strings.Cut(m.Text, "\n")
		if _, err := io.WriteString(q.out, q.styles.FormatSourceContext(line, m.Column-1, len(first))); err != nil {
			return err
		}
	}
	return nil
}

// match describes n with a 1-based line and column.
func (q *queryPrinter) match(s *refactor.Session, display string, n *tree.Node) queryMatch {
	m := queryMatch{Path: display, ID: n.ID, Kind: n.Kind}
	text, err := s.TextOf(n)
	if err != nil {
		return m
	}
	m.Text = text
	m.Line, m.Column = n.Start().Line+1, n.Start().Column+1
	if n.Source != nil {
		m.EndLine, m.EndColumn = n.Source.End.Line+1, n.Source.End.Column+1
	}
	return m
}

func (q *queryPrinter) display(path string) string {
	return relativePath(q.workDir, path)
}
