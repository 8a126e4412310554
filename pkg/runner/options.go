// Package runner applies a structural rewrite to many files concurrently,
// with the same read, check, backup and atomic-write discipline for each.
package runner

import (
	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/fsutil"
	"github.com/yaklabco/treewrite/pkg/refactor"
)

// Options controls discovery and the worker pool.
type Options struct {
	// Paths are the files or directories to process. Defaults to ".".
	Paths []string

	// WorkingDir resolves relative Paths and anchors ignore patterns.
	// Defaults to the process working directory.
	WorkingDir string

	// Language forces one grammar for every file. Empty or "auto" detects
	// the language per file.
	Language string

	// Extensions maps a language to extra extensions parsed with it.
	Extensions map[string][]string

	// Ignore holds gitignore-style patterns relative to WorkingDir.
	Ignore []string

	// Gitignore makes discovery honor .gitignore files found while walking.
	Gitignore bool

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs bounds the number of files processed at once. 0 or negative
	// means runtime.NumCPU().
	Jobs int
}

// OptionsFromConfig builds discovery options from a resolved config.
func OptionsFromConfig(cfg *config.Config, paths []string) Options {
	return Options{
		Paths:      paths,
		Language:   cfg.Language,
		Extensions: cfg.Extensions,
		Ignore:     cfg.Ignore,
		Gitignore:  cfg.Gitignore,
		Jobs:       cfg.Jobs,
	}
}

// PipelineOptions controls what happens to a file once it is rewritten.
type PipelineOptions struct {
	// DryRun computes the diff but never writes.
	DryRun bool

	// Flavor selects the Markdown flavor.
	Flavor string

	// Backups controls sidecar backups of rewritten files.
	Backups fsutil.Backups

	// SessionOptions are passed to every session the pipeline opens.
	SessionOptions []refactor.Option
}

// PipelineOptionsFromConfig builds pipeline options from a resolved config.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	opts := PipelineOptions{
		DryRun:  cfg.DryRun || cfg.Check,
		Flavor:  string(cfg.Flavor),
		Backups: fsutil.Backups{Mode: fsutil.BackupNone},
	}
	if cfg.BackupsEnabled() {
		opts.Backups.Mode = fsutil.BackupMode(cfg.Backups.Mode)
	}
	if cfg.Pattern.MatchTimeout > 0 {
		opts.SessionOptions = append(opts.SessionOptions, refactor.WithMatchTimeout(cfg.Pattern.MatchTimeout))
	}
	return opts
}
