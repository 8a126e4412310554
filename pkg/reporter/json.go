package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/treewrite/pkg/runner"
)

// jsonVersion is bumped whenever the JSON layout changes incompatibly.
const jsonVersion = "1"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	RunID   string           `json:"runId"`
	DryRun  bool             `json:"dryRun"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's outcome.
type JSONFileResult struct {
	Path       string `json:"path"`
	Language   string `json:"language"`
	Digest     string `json:"sha256,omitempty"`
	Changed    bool   `json:"changed"`
	Written    bool   `json:"written"`
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skipReason,omitempty"`
	Edits      int    `json:"edits"`
	Passes     int    `json:"passes"`
	Additions  int    `json:"additions,omitempty"`
	Deletions  int    `json:"deletions,omitempty"`
	Diff       string `json:"diff,omitempty"`
	Error      string `json:"error,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered int `json:"filesDiscovered"`
	FilesProcessed  int `json:"filesProcessed"`
	FilesChanged    int `json:"filesChanged"`
	FilesWritten    int `json:"filesWritten"`
	FilesSkipped    int `json:"filesSkipped"`
	FilesErrored    int `json:"filesErrored"`
	EditsApplied    int `json:"editsApplied"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.FilesChanged, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: jsonVersion,
		DryRun:  r.opts.DryRun,
		Files:   make([]JSONFileResult, 0),
	}
	if result == nil {
		return output
	}

	output.RunID = result.RunID
	output.Summary = JSONSummary(result.Stats)

	for _, file := range result.Files {
		fr := JSONFileResult{
			Path:     r.opts.displayPath(file.Path),
			Language: file.Language,
		}
		if file.Error != nil {
			fr.Error = file.Error.Error()
		}
		if res := file.Result; res != nil {
			fr.Digest = res.Digest
			fr.Changed = res.Changed
			fr.Written = res.Written
			fr.Skipped = res.Skipped
			fr.SkipReason = res.SkipReason
			fr.Edits = res.Edits
			fr.Passes = res.Passes
			if res.Diff != nil {
				fr.Additions = res.Diff.Additions
				fr.Deletions = res.Diff.Deletions
				fr.Diff = res.Diff.String()
			}
		}
		output.Files = append(output.Files, fr)
	}

	return output
}
