package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/pkg/runner"
)

// Plural formats n with word, adding an "s" unless n is 1.
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// FormatSummaryOneLine formats run statistics as a single line, e.g.
// "2 files rewritten (5 edits), 1 error, 10 files checked". In dry-run mode
// changed files are reported as "would rewrite".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, dryRun bool) string {
	var parts []string

	switch {
	case stats.FilesChanged == 0:
		parts = append(parts, s.Success.Render("Nothing to rewrite"))
	case dryRun:
		parts = append(parts, s.Warning.Render(Plural(stats.FilesChanged, "file")+" would be rewritten")+
			s.Dim.Render(fmt.Sprintf(" (%s)", Plural(stats.EditsApplied, "edit"))))
	default:
		parts = append(parts, s.Success.Render(Plural(stats.FilesWritten, "file")+" rewritten")+
			s.Dim.Render(fmt.Sprintf(" (%s)", Plural(stats.EditsApplied, "edit"))))
	}

	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(Plural(stats.FilesErrored, "error")))
	}
	parts = append(parts, s.Dim.Render(Plural(stats.FilesProcessed, "file")+" checked"))

	return strings.Join(parts, ", ") + "\n"
}
