package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/fsutil"
	"github.com/yaklabco/treewrite/pkg/parser"
	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/source"
)

// Transform rewrites the text held by a session and returns the result.
// Returning the session's unchanged text means there is nothing to write.
type Transform func(ctx context.Context, s *refactor.Session) (string, error)

// ParserFunc resolves a language to its parser.
type ParserFunc func(language, flavor string) (refactor.Parser, error)

// Pipeline processes one file at a time:
//  1. Read and snapshot the file.
//  2. Parse it and run the transform.
//  3. Diff the result; stop here when unchanged or in dry-run mode.
//  4. Back up the original if enabled.
//  5. Replace the file atomically, unless it changed on disk meanwhile.
type Pipeline struct {
	Parsers ParserFunc
}

// NewPipeline returns a pipeline using the built-in parsers.
func NewPipeline() *Pipeline {
	return &Pipeline{Parsers: parser.For}
}

// ProcessFile runs transform over target.
func (p *Pipeline) ProcessFile(
	ctx context.Context,
	target Target,
	transform Transform,
	opts PipelineOptions,
) (*FileResult, error) {
	ctx = logging.WithFields(ctx, logging.FieldPath, target.Path, logging.FieldLanguage, target.Language)
	logger := logging.FromContext(ctx)
	result := &FileResult{Path: target.Path, Language: target.Language}

	content, snap, err := fsutil.ReadFile(ctx, target.Path)
	if err != nil {
		return nil, err
	}
	result.Digest = snap.Digest()

	lp, err := p.Parsers(target.Language, opts.Flavor)
	if err != nil {
		return nil, err
	}

	before := string(content)
	s, err := refactor.Open(ctx, lp, source.NewText(target.Path, before), opts.SessionOptions...)
	if err != nil {
		return nil, err
	}

	after, err := transform(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target.Path, err)
	}
	result.Passes = s.Passes()
	result.Edits = s.Applied()

	if after == before {
		logger.Debug("unchanged", logging.FieldEdits, result.Edits)
		return result, nil
	}
	result.Changed = true
	result.Diff = edit.GenerateDiff(target.Path, before, after)

	if opts.DryRun {
		return result, nil
	}

	saved, err := opts.Backups.Save(ctx, snap, content)
	if err != nil {
		return nil, err
	}
	result.BackupCreated = saved

	if err := fsutil.Replace(ctx, snap, []byte(after)); err != nil {
		if errors.Is(err, fsutil.ErrModified) {
			result.Skipped = true
			result.SkipReason = "file modified during processing"
			logger.Warn("skipped", logging.FieldReason, result.SkipReason)
			return result, nil
		}
		return nil, err
	}
	result.Written = true

	logger.Debug("rewrote file", logging.FieldEdits, result.Edits, logging.FieldGeneration, s.Generation())
	return result, nil
}
