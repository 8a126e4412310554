package runner

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/treewrite/internal/logging"
)

// Runner discovers files and feeds them through a Pipeline.
type Runner struct {
	Pipeline *Pipeline
}

// New creates a Runner with the given pipeline.
func New(pipeline *Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers files under opts.Paths and transforms them concurrently,
// at most opts.Jobs at a time. Each file gets its own session, so a
// failure in one file is recorded in its outcome and does not stop the
// others. Outcomes are returned in path order.
func (r *Runner) Run(ctx context.Context, opts Options, transform Transform, popts PipelineOptions) (*Result, error) {
	logger := logging.FromContext(ctx)

	targets, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID: uuid.NewString(),
		Files: make([]FileOutcome, 0, len(targets)),
	}
	result.Stats.FilesDiscovered = len(targets)
	logger.Debug("discovered files", logging.FieldRunID, result.RunID, logging.FieldFilesDiscovered, len(targets))

	if len(targets) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	outcomes := make([]FileOutcome, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := FileOutcome{Path: target.Path, Language: target.Language}
			outcome.Result, outcome.Error = r.Pipeline.ProcessFile(gctx, target, transform, popts)
			outcomes[i] = outcome
			return nil
		})
	}
	_ = g.Wait() // workers only fail on cancellation, checked below

	for _, outcome := range outcomes {
		if outcome.Path == "" {
			continue
		}
		result.accumulate(outcome)
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}

	logger.Debug("run complete",
		logging.FieldRunID, result.RunID,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesModified, result.Stats.FilesChanged,
		logging.FieldFilesErrored, result.Stats.FilesErrored,
		logging.FieldEditsApplied, result.Stats.EditsApplied,
	)
	return result, nil
}
