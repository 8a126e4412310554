package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/fsutil"
	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/runner"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// renameX renames every identifier x to y.
func renameX(ctx context.Context, s *refactor.Session) (string, error) {
	sel, err := s.Select(`//identifier[.="x"]`)
	if err != nil {
		return "", err
	}
	if err := sel.SubstituteMap(func(string, *tree.Node) string { return "y" }); err != nil {
		return "", err
	}
	return s.Commit(ctx)
}

func read(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestRunRewritesFiles(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.py":      "x = 1\nprint(x)\n",
		"b.py":      "z = 2\n",
		"c.go":      "package c\n\nvar x = 1\n",
		"broken.py": "def f(:\n",
		"docs/r.md": "# title\n",
	})

	r := runner.New(runner.NewPipeline())
	result, err := r.Run(context.Background(),
		runner.Options{WorkingDir: root, Jobs: 2},
		renameX,
		runner.PipelineOptions{Backups: fsutil.Backups{Mode: fsutil.BackupSidecar}},
	)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 5, result.Stats.FilesDiscovered)
	assert.Equal(t, 4, result.Stats.FilesProcessed)
	assert.Equal(t, 1, result.Stats.FilesErrored)
	assert.Equal(t, 2, result.Stats.FilesChanged)
	assert.Equal(t, 2, result.Stats.FilesWritten)
	assert.Equal(t, 3, result.Stats.EditsApplied)
	assert.True(t, result.HasChanges())
	assert.True(t, result.HasErrors())
	require.Len(t, result.Errors(), 1)
	assert.Contains(t, result.Errors()[0].Error(), "broken.py")

	assert.Equal(t, "y = 1\nprint(y)\n", read(t, filepath.Join(root, "a.py")))
	assert.Equal(t, "z = 2\n", read(t, filepath.Join(root, "b.py")))
	assert.Equal(t, "package c\n\nvar y = 1\n", read(t, filepath.Join(root, "c.go")))
	assert.Equal(t, "x = 1\nprint(x)\n", read(t, filepath.Join(root, "a.py"+fsutil.BackupSuffix)))
	assert.NoFileExists(t, filepath.Join(root, "b.py"+fsutil.BackupSuffix))

	paths := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	assert.IsNonDecreasing(t, paths)

	a := result.Files[0]
	require.NoError(t, a.Error)
	assert.Equal(t, 1, a.Result.Passes)
	require.NotNil(t, a.Result.Diff)
	assert.Equal(t, 2, a.Result.Diff.Additions)
}

func TestRunDryRunLeavesFilesAlone(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})

	result, err := runner.New(runner.NewPipeline()).Run(context.Background(),
		runner.Options{WorkingDir: root},
		renameX,
		runner.PipelineOptions{DryRun: true, Backups: fsutil.Backups{Mode: fsutil.BackupSidecar}},
	)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	res := result.Files[0].Result
	assert.True(t, res.Changed)
	assert.False(t, res.Written)
	assert.Contains(t, res.Diff.String(), "+y = 1")
	assert.Equal(t, "x = 1\n", read(t, filepath.Join(root, "a.py")))
	assert.NoFileExists(t, filepath.Join(root, "a.py"+fsutil.BackupSuffix))
}

func TestRunSkipsFilesModifiedDuringProcessing(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})
	path := filepath.Join(root, "a.py")

	interfering := func(ctx context.Context, s *refactor.Session) (string, error) {
		if err := os.WriteFile(path, []byte("x = 1000\n"), 0o644); err != nil {
			return "", err
		}
		return renameX(ctx, s)
	}

	result, err := runner.New(runner.NewPipeline()).Run(context.Background(),
		runner.Options{WorkingDir: root}, interfering, runner.PipelineOptions{})
	require.NoError(t, err)

	res := result.Files[0].Result
	require.NotNil(t, res)
	assert.True(t, res.Skipped)
	assert.False(t, res.Written)
	assert.Equal(t, 1, result.Stats.FilesSkipped)
	assert.Equal(t, "x = 1000\n", read(t, path))
}

func TestRunTransformErrorIsPerFile(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": "x = 1\n", "b.py": "x = 2\n"})
	errBoom := errors.New("boom")

	var calls atomic.Int32
	failA := func(ctx context.Context, s *refactor.Session) (string, error) {
		calls.Add(1)
		if strings.HasSuffix(s.Source().Path, "a.py") {
			return "", errBoom
		}
		return renameX(ctx, s)
	}

	result, err := runner.New(runner.NewPipeline()).Run(context.Background(),
		runner.Options{WorkingDir: root, Jobs: 1}, failA, runner.PipelineOptions{})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	require.ErrorIs(t, result.Files[0].Error, errBoom)
	assert.Equal(t, "y = 2\n", read(t, filepath.Join(root, "b.py")))
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})
	ctx, cancel := context.WithCancel(context.Background())

	cancelling := func(_ context.Context, s *refactor.Session) (string, error) {
		cancel()
		return s.Source().String(), nil
	}

	_, err := runner.New(runner.NewPipeline()).Run(ctx,
		runner.Options{WorkingDir: root}, cancelling, runner.PipelineOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()

	result, err := runner.New(runner.NewPipeline()).Run(context.Background(),
		runner.Options{WorkingDir: t.TempDir()}, renameX, runner.PipelineOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.False(t, result.HasChanges())
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	opts := runner.PipelineOptionsFromConfig(cfg)
	assert.Equal(t, fsutil.BackupSidecar, opts.Backups.Mode)
	assert.False(t, opts.DryRun)
	assert.Equal(t, "gfm", opts.Flavor)
	assert.Empty(t, opts.SessionOptions)

	cfg.Check = true
	cfg.NoBackups = true
	cfg.Pattern.MatchTimeout = 1
	opts = runner.PipelineOptionsFromConfig(cfg)
	assert.True(t, opts.DryRun)
	assert.Equal(t, fsutil.BackupNone, opts.Backups.Mode)
	assert.Len(t, opts.SessionOptions, 1)

	ropts := runner.OptionsFromConfig(cfg, []string{"src"})
	assert.Equal(t, []string{"src"}, ropts.Paths)
	assert.True(t, ropts.Gitignore)
}
