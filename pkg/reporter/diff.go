package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/treewrite/internal/ui/pretty"
	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/runner"
)

// DiffReporter prints a git-style unified diff for every changed file and
// a diffstat line at the end.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	var files, additions, deletions int
	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprint(r.bw, r.styles.FormatFileError(r.opts.displayPath(file.Path), file.Error))
			continue
		}
		if file.Result == nil || !file.Result.Diff.HasChanges() {
			continue
		}

		d := file.Result.Diff
		files++
		additions += d.Additions
		deletions += d.Deletions
		r.writeDiff(r.opts.displayPath(d.Path), d)
	}

	if files > 0 && r.opts.ShowSummary {
		r.writeStat(files, additions, deletions)
	}
	return files, nil
}

func (r *DiffReporter) writeDiff(path string, d *edit.Diff) {
	path = strings.TrimPrefix(path, "/")
	fmt.Fprintln(r.bw, r.styles.DiffHeader.Render(fmt.Sprintf("diff --git a/%s b/%s", path, path)))
	fmt.Fprintln(r.bw, r.styles.DiffRemove.Render("--- a/"+path))
	fmt.Fprintln(r.bw, r.styles.DiffAdd.Render("+++ b/"+path))

	for _, h := range d.Hunks {
		fmt.Fprintln(r.bw, r.styles.DiffHunk.Render(
			fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)))
		for _, line := range h.Lines {
			fmt.Fprintln(r.bw, r.lineStyle(line.Kind).Render(marker(line.Kind)+line.Content))
		}
	}
	fmt.Fprintln(r.bw)
}

func (r *DiffReporter) lineStyle(kind edit.LineKind) lipgloss.Style {
	switch kind {
	case edit.LineAdd:
		return r.styles.DiffAdd
	case edit.LineRemove:
		return r.styles.DiffRemove
	default:
		return r.styles.DiffContext
	}
}

func marker(kind edit.LineKind) string {
	switch kind {
	case edit.LineAdd:
		return "+"
	case edit.LineRemove:
		return "-"
	default:
		return " "
	}
}

// writeStat writes "N files changed, A insertions(+), D deletions(-)".
func (r *DiffReporter) writeStat(files, additions, deletions int) {
	parts := []string{pretty.Plural(files, "file") + " changed"}
	if additions > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(pretty.Plural(additions, "insertion")+"(+)"))
	}
	if deletions > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(pretty.Plural(deletions, "deletion")+"(-)"))
	}
	fmt.Fprintln(r.bw, strings.Join(parts, ", "))
}
