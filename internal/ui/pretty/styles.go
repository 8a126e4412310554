// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style

	// Match and status lines
	FilePath   lipgloss.Style
	Location   lipgloss.Style
	Kind       lipgloss.Style
	Changed    lipgloss.Style
	Unchanged  lipgloss.Style
	SourceLine lipgloss.Style
	Caret      lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	Success lipgloss.Style
	Failure lipgloss.Style

	TableHeader lipgloss.Style
	TableBorder lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// style returns an empty style that leaves tabs alone, so rendered source
// and diff lines keep their bytes.
func style() lipgloss.Style {
	return lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
}

// NewStyles creates a new Styles with the given color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		return newNoColorStyles()
	}
	return newColorStyles()
}

func newColorStyles() *Styles {
	return &Styles{
		Error:   style().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: style().Foreground(lipgloss.Color("11")).Bold(true),

		FilePath:   style().Bold(true),
		Location:   style().Foreground(lipgloss.Color("8")),
		Kind:       style().Foreground(lipgloss.Color("13")),
		Changed:    style().Foreground(lipgloss.Color("10")),
		Unchanged:  style().Foreground(lipgloss.Color("8")),
		SourceLine: style().Foreground(lipgloss.Color("7")),
		Caret:      style().Foreground(lipgloss.Color("14")),

		DiffHeader:  style().Bold(true),
		DiffHunk:    style().Foreground(lipgloss.Color("14")),
		DiffAdd:     style().Foreground(lipgloss.Color("10")),
		DiffRemove:  style().Foreground(lipgloss.Color("9")),
		DiffContext: style().Foreground(lipgloss.Color("8")),

		Success: style().Foreground(lipgloss.Color("10")).Bold(true),
		Failure: style().Foreground(lipgloss.Color("9")).Bold(true),

		TableHeader: style().Bold(true).Foreground(lipgloss.Color("7")),
		TableBorder: style().Foreground(lipgloss.Color("8")),

		Dim:  style().Foreground(lipgloss.Color("8")),
		Bold: style().Bold(true),
	}
}

func newNoColorStyles() *Styles {
	plain := style()
	return &Styles{
		Error:       plain,
		Warning:     plain,
		FilePath:    plain,
		Location:    plain,
		Kind:        plain,
		Changed:     plain,
		Unchanged:   plain,
		SourceLine:  plain,
		Caret:       plain,
		DiffHeader:  plain,
		DiffHunk:    plain,
		DiffAdd:     plain,
		DiffRemove:  plain,
		DiffContext: plain,
		Success:     plain,
		Failure:     plain,
		TableHeader: plain,
		TableBorder: plain,
		Dim:         plain,
		Bold:        plain,
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
