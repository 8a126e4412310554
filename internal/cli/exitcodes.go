package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/treewrite/internal/configloader"
	"github.com/yaklabco/treewrite/pkg/fsutil"
	"github.com/yaklabco/treewrite/pkg/runner"
)

// Exit codes for treewrite.
const (
	// ExitSuccess indicates the command completed and nothing is pending.
	ExitSuccess = 0

	// ExitChanges indicates --check found files that would be rewritten.
	ExitChanges = 1

	// ExitFilesFailed indicates at least one file could not be processed.
	ExitFilesFailed = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates a configuration or plan file error.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrChangesPending signals that --check found pending rewrites.
	ErrChangesPending = errors.New("rewrites pending")

	// ErrFilesFailed signals that some files failed; details were reported.
	ErrFilesFailed = errors.New("some files could not be processed")

	// ErrUsage marks command-line usage errors.
	ErrUsage = errors.New("invalid usage")

	// ErrConfig marks configuration and plan file errors.
	ErrConfig = errors.New("configuration error")
)

// ExitCodeFromResult determines the exit code for a finished run.
func ExitCodeFromResult(result *runner.Result, check bool) int {
	switch {
	case result == nil:
		return ExitSuccess
	case result.HasErrors():
		return ExitFilesFailed
	case check && result.HasChanges():
		return ExitChanges
	default:
		return ExitSuccess
	}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var validation *configloader.ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrChangesPending):
		return ExitChanges
	case errors.Is(err, ErrFilesFailed):
		return ExitFilesFailed
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig), errors.As(err, &validation):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound), errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// IsSignal reports whether err only carries an exit status and has already
// been reported to the user.
func IsSignal(err error) bool {
	return errors.Is(err, ErrChangesPending) || errors.Is(err, ErrFilesFailed)
}

// resultError converts a finished run into the error that carries its exit
// status.
func resultError(result *runner.Result, check bool) error {
	switch ExitCodeFromResult(result, check) {
	case ExitFilesFailed:
		return ErrFilesFailed
	case ExitChanges:
		return ErrChangesPending
	default:
		return nil
	}
}
