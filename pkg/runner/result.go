package runner

import "github.com/yaklabco/treewrite/pkg/edit"

// FileResult describes what the pipeline did to one file.
type FileResult struct {
	Path     string
	Language string

	// Digest is the hex SHA-256 of the content that was read.
	Digest string

	// Passes counts the collations the transform ran.
	Passes int

	// Edits counts the edits collated across all passes.
	Edits int

	// Changed is true when the transform produced different text.
	Changed bool

	// Diff is set when Changed.
	Diff *edit.Diff

	Written       bool
	BackupCreated bool

	// Skipped is set when the file changed on disk during processing.
	Skipped    bool
	SkipReason string
}

// FileOutcome pairs a target with its result or error.
type FileOutcome struct {
	Path     string
	Language string
	Result   *FileResult
	Error    error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesChanged    int
	FilesWritten    int
	FilesSkipped    int
	FilesErrored    int
	EditsApplied    int
}

// Result is the overall runner result.
type Result struct {
	// RunID identifies the run in logs and machine-readable reports.
	RunID string

	// Files holds one outcome per discovered file, ordered by path.
	Files []FileOutcome

	Stats Stats
}

// HasChanges reports whether any file was, or in dry-run mode would be,
// rewritten.
func (r *Result) HasChanges() bool {
	return r != nil && r.Stats.FilesChanged > 0
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

// Errors returns the per-file errors in path order.
func (r *Result) Errors() []error {
	var errs []error
	for _, f := range r.Files {
		if f.Error != nil {
			errs = append(errs, f.Error)
		}
	}
	return errs
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	res := outcome.Result
	if res == nil {
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.EditsApplied += res.Edits
	if res.Changed {
		r.Stats.FilesChanged++
	}
	if res.Written {
		r.Stats.FilesWritten++
	}
	if res.Skipped {
		r.Stats.FilesSkipped++
	}
}
