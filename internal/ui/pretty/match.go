package pretty

import (
	"fmt"
	"strings"
)

const contextIndent = "    "

// FormatMatch formats one query match as "path:line:col kind text". Text
// spanning several lines is cut at the first newline.
func (s *Styles) FormatMatch(path string, line, column int, kind, text string) string {
	first, _, multi := strings.Cut(text, "\n")
	if multi {
		first += s.Dim.Render(" ...")
	}

	loc := fmt.Sprintf(":%d:%d", line, column)
	if line == 0 {
		loc = ""
	}
	return fmt.Sprintf("%s%s %s %s\n",
		s.FilePath.Render(path),
		s.Location.Render(loc),
		s.Kind.Render(kind),
		first,
	)
}

// FormatSourceContext renders a source line with a caret under the byte
// column (0-based) and a run of tildes to the end of the match, clipped to
// the line.
func (s *Styles) FormatSourceContext(line string, column, width int) string {
	column = min(max(column, 0), len(line))
	width = min(max(width, 1), max(len(line)-column, 1))

	var b strings.Builder
	b.WriteString(contextIndent + s.SourceLine.Render(line) + "\n")

	// Tabs are kept in the padding so the caret lines up under them.
	var pad strings.Builder
	for _, r := range line[:column] {
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	b.WriteString(contextIndent + pad.String() + s.Caret.Render("^"+strings.Repeat("~", width-1)) + "\n")
	return b.String()
}

// FormatFileStatus formats the outcome of processing one file.
func (s *Styles) FormatFileStatus(path, status string, changed bool) string {
	style := s.Unchanged
	if changed {
		style = s.Changed
	}
	return s.FilePath.Render(path) + ": " + style.Render(status) + "\n"
}

// FormatFileError formats a per-file failure.
func (s *Styles) FormatFileError(path string, err error) string {
	return s.FilePath.Render(path) + ": " + s.Error.Render(fmt.Sprintf("error: %v", err)) + "\n"
}
