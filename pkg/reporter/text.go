package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/treewrite/internal/ui/pretty"
	"github.com/yaklabco/treewrite/pkg/runner"
)

// TextReporter writes one status line per changed, skipped or failed file,
// followed by a summary.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to process."))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		path := r.opts.displayPath(file.Path)
		if file.Error != nil {
			fmt.Fprint(r.bw, r.styles.FormatFileError(path, file.Error))
			continue
		}
		if status, changed, ok := r.status(file.Result); ok {
			fmt.Fprint(r.bw, r.styles.FormatFileStatus(path, status, changed))
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.DryRun))
	}
	return result.Stats.FilesChanged, nil
}

func (r *TextReporter) status(res *runner.FileResult) (string, bool, bool) {
	switch {
	case res == nil || !res.Changed:
		return "", false, false
	case res.Skipped:
		return "skipped, " + res.SkipReason, false, true
	}

	detail := fmt.Sprintf(" (%s", pretty.Plural(res.Edits, "edit"))
	if res.Passes > 1 {
		detail += fmt.Sprintf(", %d passes", res.Passes)
	}
	detail += ")"

	if r.opts.DryRun || !res.Written {
		return "would rewrite" + detail, true, true
	}
	return "rewritten" + detail, true, true
}
