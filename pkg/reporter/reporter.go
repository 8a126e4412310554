// Package reporter renders runner results as text, JSON or unified diffs.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/treewrite/pkg/runner"
)

// Reporter formats and writes run results.
type Reporter interface {
	// Report writes output for result and returns the number of files
	// that were, or would be, rewritten.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates the Reporter for opts.Format, text when unset. A nil Writer
// writes to standard output.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	switch opts.Format {
	case FormatText, "":
		return NewTextReporter(opts), nil
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
}
