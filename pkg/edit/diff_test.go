package edit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/edit"
)

func TestGenerateDiff(t *testing.T) {
	t.Parallel()

	t.Run("nil for identical text", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, edit.GenerateDiff("f.py", "a\nb\n", "a\nb\n"))
		assert.Nil(t, edit.GenerateDiff("f.py", "", ""))
		assert.False(t, edit.GenerateDiff("f.py", "x", "x").HasChanges())
	})

	t.Run("single line change", func(t *testing.T) {
		t.Parallel()

		diff := edit.GenerateDiff("f.py", "a\nb\nc\n", "a\nB\nc\n")
		require.NotNil(t, diff)
		assert.Equal(t, 1, diff.Additions)
		assert.Equal(t, 1, diff.Deletions)
		require.Len(t, diff.Hunks, 1)

		want := strings.Join([]string{
			"--- a/f.py",
			"+++ b/f.py",
			"@@ -1,3 +1,3 @@",
			" a",
			"-b",
			"+B",
			" c",
			"",
		}, "\n")
		assert.Equal(t, want, diff.String())
	})

	t.Run("insertion at top", func(t *testing.T) {
		t.Parallel()

		diff := edit.GenerateDiff("/abs/f.py", "def f():\n    pass\n", "@dec\ndef f():\n    pass\n")
		require.NotNil(t, diff)
		assert.Equal(t, 1, diff.Additions)
		assert.Zero(t, diff.Deletions)
		assert.Equal(t, edit.Hunk{
			OldStart: 1, OldCount: 2, NewStart: 1, NewCount: 3,
			Lines: []edit.DiffLine{
				{Kind: edit.LineAdd, Content: "@dec"},
				{Kind: edit.LineContext, Content: "def f():"},
				{Kind: edit.LineContext, Content: "    pass"},
			},
		}, diff.Hunks[0])
		assert.True(t, strings.HasPrefix(diff.String(), "--- a/abs/f.py\n"))
	})

	t.Run("distant changes form separate hunks", func(t *testing.T) {
		t.Parallel()

		var before, after []string
		for i := range 20 {
			line := string(rune('a' + i))
			before = append(before, line)
			switch i {
			case 1, 18:
				after = append(after, strings.ToUpper(line))
			default:
				after = append(after, line)
			}
		}

		diff := edit.GenerateDiff("f", strings.Join(before, "\n")+"\n", strings.Join(after, "\n")+"\n")
		require.NotNil(t, diff)
		require.Len(t, diff.Hunks, 2)
		assert.Equal(t, 1, diff.Hunks[0].OldStart)
		assert.Equal(t, 16, diff.Hunks[1].OldStart)
		assert.Equal(t, 5, diff.Hunks[1].OldCount)
	})
}

func FuzzCollate(f *testing.F) {
	f.Add("def f(x):\n    return x\n", 0, 3, 4, 5)
	f.Add("abc", 0, 0, 1, 3)
	f.Add("", 0, 0, 0, 0)

	f.Fuzz(func(t *testing.T, text string, b1, e1, b2, e2 int) {
		edits := []edit.Edit{
			{Begin: b1, End: e1, Text: "<", Kind: edit.Prepend},
			{Begin: b2, End: e2, Text: ">", Kind: edit.Substitute},
		}

		out, err := edit.Collate(text, edits)
		if err != nil {
			return
		}
		// One prepend of one byte plus one substitution of one byte.
		if len(out) != len(text)+2-(e2-b2) {
			t.Fatalf("unexpected length %d for %q", len(out), out)
		}
	})
}
