package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/reporter"
	"github.com/yaklabco/treewrite/pkg/runner"
)

func sampleResult() *runner.Result {
	return &runner.Result{
		RunID: "3f1c9a52-0000-4000-8000-000000000000",
		Files: []runner.FileOutcome{
			{
				Path:     "/work/a.py",
				Language: "python",
				Result: &runner.FileResult{
					Path: "/work/a.py", Language: "python", Digest: "abc",
					Changed: true, Written: true, Edits: 2, Passes: 2,
					Diff: edit.GenerateDiff("/work/a.py", "x = 1\n\tprint(x)\n", "y = 1\n\tprint(y)\n"),
				},
			},
			{
				Path:     "/work/b.py",
				Language: "python",
				Result:   &runner.FileResult{Path: "/work/b.py", Language: "python"},
			},
			{
				Path:     "/work/c.go",
				Language: "go",
				Error:    errors.New("parse /work/c.go: syntax error"),
			},
		},
		Stats: runner.Stats{
			FilesDiscovered: 3, FilesProcessed: 2, FilesChanged: 1,
			FilesWritten: 1, FilesErrored: 1, EditsApplied: 2,
		},
	}
}

func report(t *testing.T, opts reporter.Options, result *runner.Result) (string, int) {
	t.Helper()

	var buf bytes.Buffer
	opts.Writer = &buf
	opts.Color = "never"
	opts.WorkingDir = "/work"

	r, err := reporter.New(opts)
	require.NoError(t, err)
	n, err := r.Report(context.Background(), result)
	require.NoError(t, err)
	return buf.String(), n
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "text", "json", "diff"} {
		f, err := reporter.ParseFormat(name)
		require.NoError(t, err, name)
		assert.True(t, f.IsValid())
	}
	_, err := reporter.ParseFormat("sarif")
	require.Error(t, err)

	_, err = reporter.New(reporter.Options{Format: "xml"})
	require.Error(t, err)
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatText, ShowSummary: true}, sampleResult())
	assert.Equal(t, 1, n)
	assert.Equal(t,
		"a.py: rewritten (2 edits, 2 passes)\n"+
			"c.go: error: parse /work/c.go: syntax error\n"+
			"1 file rewritten (2 edits), 1 error, 2 files checked\n",
		out)
}

func TestTextReporterDryRun(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	result.Files[0].Result.Written = false
	result.Stats.FilesWritten = 0

	out, _ := report(t, reporter.Options{DryRun: true, ShowSummary: true}, result)
	assert.Contains(t, out, "a.py: would rewrite (2 edits, 2 passes)\n")
	assert.Contains(t, out, "1 file would be rewritten (2 edits)")
}

func TestTextReporterEmpty(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{ShowSummary: true}, &runner.Result{})
	assert.Zero(t, n)
	assert.Equal(t, "No files to process.\n", out)
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatJSON}, sampleResult())
	assert.Equal(t, 1, n)

	var decoded reporter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "1", decoded.Version)
	assert.Equal(t, "3f1c9a52-0000-4000-8000-000000000000", decoded.RunID)
	require.Len(t, decoded.Files, 3)

	a := decoded.Files[0]
	assert.Equal(t, "a.py", a.Path)
	assert.True(t, a.Changed)
	assert.True(t, a.Written)
	assert.Equal(t, 2, a.Edits)
	assert.Equal(t, 2, a.Additions)
	assert.Contains(t, a.Diff, "+y = 1\n")

	assert.False(t, decoded.Files[1].Changed)
	assert.Contains(t, decoded.Files[2].Error, "syntax error")
	assert.Equal(t, 1, decoded.Summary.FilesErrored)
	assert.Equal(t, 2, decoded.Summary.EditsApplied)
}

func TestJSONReporterCompactNil(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatJSON, Compact: true}, nil)
	assert.Zero(t, n)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, `"files":[]`)
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	out, n := report(t, reporter.Options{Format: reporter.FormatDiff, ShowSummary: true}, sampleResult())
	assert.Equal(t, 1, n)
	assert.Equal(t,
		"diff --git a/a.py b/a.py\n"+
			"--- a/a.py\n"+
			"+++ b/a.py\n"+
			"@@ -1,2 +1,2 @@\n"+
			"-x = 1\n"+
			"-\tprint(x)\n"+
			"+y = 1\n"+
			"+\tprint(y)\n"+
			"\n"+
			"c.go: error: parse /work/c.go: syntax error\n"+
			"1 file changed, 2 insertions(+), 2 deletions(-)\n",
		out)
}
