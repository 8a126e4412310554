package pretty

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const (
	columnGap   = 2
	minColWidth = 4
	ellipsis    = "…"
)

// Table renders rows under a header, sizing columns to their content.
// When the total exceeds MaxWidth the last column is truncated.
type Table struct {
	Headers  []string
	Rows     [][]string
	MaxWidth int
}

// Format renders the table with s.
func (s *Styles) Format(t Table) string {
	if len(t.Headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
		}
	}

	if t.MaxWidth > 0 {
		total := (len(widths) - 1) * columnGap
		for _, w := range widths {
			total += w
		}
		if over := total - t.MaxWidth; over > 0 {
			last := len(widths) - 1
			widths[last] = max(widths[last]-over, minColWidth)
		}
	}

	var b strings.Builder
	s.writeRow(&b, t.Headers, widths, s.TableHeader)

	total := (len(widths) - 1) * columnGap
	for _, w := range widths {
		total += w
	}
	b.WriteString(s.TableBorder.Render(strings.Repeat("─", total)) + "\n")

	for _, row := range t.Rows {
		s.writeRow(&b, row, widths, style())
	}
	return b.String()
}

func (s *Styles) writeRow(b *strings.Builder, cells []string, widths []int, style lipgloss.Style) {
	gap := strings.Repeat(" ", columnGap)
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = truncate(cells[i], w)
		}
		if i > 0 {
			b.WriteString(gap)
		}
		b.WriteString(style.Render(cell))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", w-utf8.RuneCountInString(cell)))
		}
	}
	b.WriteString("\n")
}

func truncate(str string, width int) string {
	if utf8.RuneCountInString(str) <= width {
		return str
	}
	runes := []rune(str)
	return string(runes[:width-1]) + ellipsis
}
