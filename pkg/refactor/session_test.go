package refactor_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/pattern"
	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/tree"
)

func load(t *testing.T, text string) *refactor.Session {
	t.Helper()

	ctx := logging.WithLogger(context.Background(), logging.Discard())
	s, err := refactor.Loads(ctx, wordParser{}, text)
	require.NoError(t, err)
	return s
}

func mustSelect(t *testing.T, s *refactor.Session, path string) *refactor.Selection {
	t.Helper()

	sel, err := s.Select(path)
	require.NoError(t, err)
	return sel
}

func TestLoadParseError(t *testing.T) {
	t.Parallel()

	_, err := refactor.Loads(context.Background(), wordParser{}, "ok\nbad !!\n", refactor.WithLogger(logging.Discard()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, syntax.ErrParse))

	var perr *syntax.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 4, perr.Column)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha beta\n"), 0o600))

	s, err := refactor.Load(context.Background(), wordParser{}, path, refactor.WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, path, s.Source().Path)
	assert.Equal(t, 1, s.Generation())
	assert.Equal(t, "words", s.Language())

	_, err = refactor.Load(context.Background(), wordParser{}, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestExecuteWithoutEditsIsIdentity(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "one\n", "a b\n\n  c d e\nlast"} {
		s := load(t, text)
		out, err := s.Execute()
		require.NoError(t, err)
		assert.Equal(t, text, out)
	}
}

func TestRoundTripSelection(t *testing.T) {
	t.Parallel()

	text := "alpha beta\n  gamma\n"
	s := load(t, text)

	for _, n := range s.All().Nodes() {
		sp, ok := n.Span()
		if !ok {
			continue
		}
		got, err := s.TextOf(n)
		require.NoError(t, err)
		assert.Equal(t, text[sp.Begin:sp.End], got)
	}

	words, err := mustSelect(t, s, "//word").Texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, words)
}

func TestPrependPurity(t *testing.T) {
	t.Parallel()

	text := "first line\nsecond line\n"
	s := load(t, text)
	lines := mustSelect(t, s, "//line")

	require.NoError(t, lines.PrependMap(func(string, *tree.Node) string { return "> " }))
	out, err := s.Execute()
	require.NoError(t, err)
	assert.Equal(t, "> first line\n> second line\n", out)

	// Removing every inserted string restores the original.
	assert.Equal(t, text, strings.ReplaceAll(out, "> ", ""))
}

func TestSubstitutePurity(t *testing.T) {
	t.Parallel()

	text := "keep this\nchange me\nkeep that\n"
	s := load(t, text)
	target := mustSelect(t, s, `//line[_words/word[.="change"]]`)
	require.Equal(t, 1, target.Len())

	require.NoError(t, target.SubstituteMap(func(string, *tree.Node) string { return "CHANGED" }))
	out, err := s.Execute()
	require.NoError(t, err)
	assert.Equal(t, "keep this\nCHANGED\nkeep that\n", out)
}

func TestUppercaseDisjointSiblings(t *testing.T) {
	t.Parallel()

	s := load(t, "a = 1\nb = 2\n")
	require.NoError(t, mustSelect(t, s, "//line").SubstituteMap(func(text string, _ *tree.Node) string {
		return strings.ToUpper(text)
	}))

	out, err := s.Execute()
	require.NoError(t, err)
	assert.Equal(t, "A = 1\nB = 2\n", out)
}

func TestPrependAndSubstituteSameNode(t *testing.T) {
	t.Parallel()

	s := load(t, "x y\n")
	line := mustSelect(t, s, "//line")

	require.NoError(t, line.SubstituteMap(func(text string, _ *tree.Node) string { return "Y X" }))
	require.NoError(t, line.PrependMap(func(string, *tree.Node) string { return "# " }))

	out, err := s.Execute()
	require.NoError(t, err)
	assert.Equal(t, "# Y X\n", out)
}

func TestOverlapRejectedAndPendingCleared(t *testing.T) {
	t.Parallel()

	for _, parentFirst := range []bool{true, false} {
		s := load(t, "a b c\n")
		line := mustSelect(t, s, "//line")
		word := mustSelect(t, s, "//word[2]")

		upper := func(text string, _ *tree.Node) string { return strings.ToUpper(text) }
		if parentFirst {
			require.NoError(t, line.SubstituteMap(upper))
			require.NoError(t, word.SubstituteMap(upper))
		} else {
			require.NoError(t, word.SubstituteMap(upper))
			require.NoError(t, line.SubstituteMap(upper))
		}
		require.Len(t, s.Pending(), 2)

		_, err := s.Execute()
		require.ErrorIs(t, err, edit.ErrOverlappingEdits)
		assert.Empty(t, s.Pending())
		assert.Equal(t, "a b c\n", s.Source().String())

		out, err := s.Execute()
		require.NoError(t, err)
		assert.Equal(t, "a b c\n", out)
	}
}

func TestSubstituteRegex(t *testing.T) {
	t.Parallel()

	s := load(t, "foo bar\nfoo foo\n")
	lines := mustSelect(t, s, "//line")

	require.NoError(t, lines.Substitute(`FOO`, "baz", 1, pattern.IgnoreCase))
	out, err := s.Execute()
	require.NoError(t, err)
	assert.Equal(t, "baz bar\nbaz foo\n", out)

	err = lines.Substitute(`(`, "x", 0, 0)
	require.ErrorIs(t, err, pattern.ErrInvalidPattern)
	assert.Empty(t, s.Pending())
}

func TestNotTextRepresentableIsAllOrNothing(t *testing.T) {
	t.Parallel()

	s := load(t, "a b\n")
	words := mustSelect(t, s, "//word")
	notes := mustSelect(t, s, "//note")
	mixed, err := words.Union(notes)
	require.NoError(t, err)
	require.Equal(t, 3, mixed.Len())

	err = mixed.PrependMap(func(string, *tree.Node) string { return "!" })
	require.ErrorIs(t, err, refactor.ErrNotTextRepresentable)
	assert.Empty(t, s.Pending(), "no edit from a failed call is recorded")

	containers := mustSelect(t, s, "//_words")
	err = containers.SubstituteMap(func(string, *tree.Node) string { return "" })
	require.ErrorIs(t, err, refactor.ErrNotTextRepresentable)
}

func TestFailingMapRecordsNothing(t *testing.T) {
	t.Parallel()

	s := load(t, "a b c\n")
	boom := errors.New("boom")

	err := mustSelect(t, s, "//word").SubstituteTry(func(text string, _ *tree.Node) (string, error) {
		if text == "c" {
			return "", boom
		}
		return text + text, nil
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, s.Pending())

	require.NoError(t, mustSelect(t, s, "//word").PrependTry(func(string, *tree.Node) (string, error) {
		return "_", nil
	}))
	out, err := s.Execute()
	require.NoError(t, err)
	assert.Equal(t, "_a _b _c\n", out)
}

func TestReloadMakesReferencesStale(t *testing.T) {
	t.Parallel()

	s := load(t, "a b\n")
	words := mustSelect(t, s, "//word")
	old := words.At(0)

	require.NoError(t, words.SubstituteMap(func(text string, _ *tree.Node) string { return text + "!" }))
	out, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a! b!\n", out)
	assert.Equal(t, 2, s.Generation())
	assert.Equal(t, out, s.Source().String())

	err = words.PrependMap(func(string, *tree.Node) string { return "x" })
	require.ErrorIs(t, err, refactor.ErrStaleReference)

	var stale *refactor.StaleError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, 1, stale.Generation)
	assert.Equal(t, 2, stale.Current)

	_, err = s.TextOf(old)
	require.ErrorIs(t, err, refactor.ErrStaleReference)

	_, err = words.Select("..")
	require.ErrorIs(t, err, refactor.ErrStaleReference)

	_, err = words.Filter(func(*tree.Node) bool { return true })
	require.ErrorIs(t, err, refactor.ErrStaleReference)

	fresh := mustSelect(t, s, "//word")
	_, err = fresh.Union(words)
	require.ErrorIs(t, err, refactor.ErrStaleReference)
}

func TestReloadFailureKeepsState(t *testing.T) {
	t.Parallel()

	s := load(t, "a b\n")
	words := mustSelect(t, s, "//word")

	err := s.Reload(context.Background(), "bad !!")
	require.ErrorIs(t, err, syntax.ErrParse)
	assert.Equal(t, 1, s.Generation())
	assert.Equal(t, "a b\n", s.Source().String())

	texts, err := words.Texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, texts)
}

func TestCrossSessionSelectionsRejected(t *testing.T) {
	t.Parallel()

	first := load(t, "a\n")
	second := load(t, "a\n")

	_, err := mustSelect(t, first, "//word").Intersection(mustSelect(t, second, "//word"))
	require.ErrorIs(t, err, refactor.ErrStaleReference)

	_, err = first.TextOf(mustSelect(t, second, "//word").At(0))
	require.ErrorIs(t, err, refactor.ErrStaleReference)
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestNodeLookup(t *testing.T) {
	t.Parallel()

	s := load(t, "a b\n")
	root := s.Root().At(0)

	n, err := s.Node(root.ID)
	require.NoError(t, err)
	assert.Same(t, root, n)

	_, err = s.Node(999)
	require.ErrorIs(t, err, refactor.ErrNodeNotFound)
	_, err = s.Node(0)
	require.ErrorIs(t, err, refactor.ErrNodeNotFound)
}

func TestIDsNeverReusedAcrossReloads(t *testing.T) {
	t.Parallel()

	s := load(t, "alpha beta\n")
	alpha := mustSelect(t, s, "//word").At(0)
	oldID := alpha.ID
	firstLen := s.Tree().Len()

	require.NoError(t, s.Reload(context.Background(), "gamma delta\n"))

	_, err := s.Node(oldID)
	require.ErrorIs(t, err, refactor.ErrStaleReference)

	var stale *refactor.StaleError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, 1, stale.Generation)
	assert.Equal(t, 2, stale.Current)

	gamma := mustSelect(t, s, "//word").At(0)
	assert.Equal(t, firstLen+1, s.Tree().FirstID())
	assert.Equal(t, firstLen+1, gamma.ID)
	n, err := s.Node(gamma.ID)
	require.NoError(t, err)
	text, err := s.TextOf(n)
	require.NoError(t, err)
	assert.Equal(t, "gamma", text)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	s := load(t, "a b\nc\n")

	count, err := s.Evaluate("count(//word)")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, count, 0)

	nodes, err := s.Evaluate("//line")
	require.NoError(t, err)
	sel, ok := nodes.(*refactor.Selection)
	require.True(t, ok)
	assert.Equal(t, 2, sel.Len())

	_, err = s.Evaluate("count(")
	require.Error(t, err)
}

func TestDump(t *testing.T) {
	t.Parallel()

	s := load(t, "a b\n")
	words := mustSelect(t, s, "//word")
	notes := mustSelect(t, s, "//note")
	both, err := words.Union(notes)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, both.Dump(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ">0: word#1 a<", lines[0])
	assert.Equal(t, ">1: word#2 b<", lines[1])
	assert.Equal(t, ">2: note#3 ???<", lines[2])

	buf.Reset()
	require.NoError(t, words.DumpXML(&buf))
	assert.Contains(t, buf.String(), `<word value="a" id="1"></word>`)
}

func TestDiscardDropsPending(t *testing.T) {
	t.Parallel()

	s := load(t, "one two\n")
	words := mustSelect(t, s, "//word")
	require.NoError(t, words.SubstituteMap(func(string, *tree.Node) string { return "x" }))
	require.Len(t, s.Pending(), 2)

	s.Discard()
	assert.Empty(t, s.Pending())

	out, err := s.Execute()
	require.NoError(t, err)
	assert.Equal(t, "one two\n", out)
}

func TestAppliedCountsCollatedEdits(t *testing.T) {
	t.Parallel()

	s := load(t, "one two\n")
	require.NoError(t, mustSelect(t, s, "//word").SubstituteMap(func(string, *tree.Node) string { return "x" }))
	_, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Applied())

	s.Discard()
	_, err = s.Execute()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Applied())
}
