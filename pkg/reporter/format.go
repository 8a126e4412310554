package reporter

import (
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/pkg/config"
)

// Format selects a reporter. Its values are the configured output formats.
type Format = config.OutputFormat

// Output formats supported by the reporter.
const (
	FormatText = config.FormatText
	FormatJSON = config.FormatJSON
	FormatDiff = config.FormatDiff
)

// ParseFormat parses a format name. The empty name selects text.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if !f.IsValid() {
		return "", fmt.Errorf("unknown format %q; valid formats: text, json, diff", name)
	}
	return f, nil
}
