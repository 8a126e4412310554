package edit_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/edit"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edits   []edit.Edit
		textLen int
		errMsg  string
	}{
		{name: "no edits", textLen: 10},
		{
			name:    "valid ranges",
			edits:   []edit.Edit{{Begin: 0, End: 5, Kind: edit.Substitute}, {Begin: 10, End: 10, Kind: edit.Prepend}},
			textLen: 10,
		},
		{
			name:    "negative begin",
			edits:   []edit.Edit{{Begin: -1, End: 2, Kind: edit.Substitute}},
			textLen: 10,
			errMsg:  "begin offset is negative",
		},
		{
			name:    "inverted range",
			edits:   []edit.Edit{{Begin: 4, End: 3, Kind: edit.Prepend}},
			textLen: 10,
			errMsg:  "end offset is before begin offset",
		},
		{
			name:    "past end",
			edits:   []edit.Edit{{Begin: 4, End: 11, Kind: edit.Substitute}},
			textLen: 10,
			errMsg:  "exceeds text length",
		},
		{
			name:    "unknown kind",
			edits:   []edit.Edit{{Begin: 0, End: 1}},
			textLen: 10,
			errMsg:  "unknown edit kind",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := edit.Validate(testCase.edits, testCase.textLen)
			if testCase.errMsg == "" {
				require.NoError(t, err)
				return
			}

			var verr *edit.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), testCase.errMsg)
		})
	}
}

func TestCollate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		edits []edit.Edit
		want  string
	}{
		{
			name: "no edits returns text unchanged",
			text: "def f(x):\n    return x\n",
			want: "def f(x):\n    return x\n",
		},
		{
			name:  "prepend keeps anchored bytes",
			text:  "def f(x):\n    return x\n",
			edits: []edit.Edit{{Begin: 0, End: 23, Text: "@dec\n", Kind: edit.Prepend}},
			want:  "@dec\ndef f(x):\n    return x\n",
		},
		{
			name:  "substitute replaces range",
			text:  "a = 1",
			edits: []edit.Edit{{Begin: 4, End: 5, Text: "42", Kind: edit.Substitute}},
			want:  "a = 42",
		},
		{
			name: "abutting substitutions",
			text: "abcdef",
			edits: []edit.Edit{
				{Begin: 3, End: 6, Text: "DEF", Kind: edit.Substitute},
				{Begin: 0, End: 3, Text: "ABC", Kind: edit.Substitute},
			},
			want: "ABCDEF",
		},
		{
			name: "prepend and substitute on same node",
			text: "x = 1",
			edits: []edit.Edit{
				{Begin: 0, End: 5, Text: "Y = 2", Kind: edit.Substitute},
				{Begin: 0, End: 5, Text: "# c\n", Kind: edit.Prepend},
			},
			want: "# c\nY = 2",
		},
		{
			name: "prepends at same offset keep insertion order",
			text: "body",
			edits: []edit.Edit{
				{Begin: 0, End: 4, Text: "first ", Kind: edit.Prepend},
				{Begin: 0, End: 0, Text: "second ", Kind: edit.Prepend},
			},
			want: "first second body",
		},
		{
			name: "prepend at end of substituted range",
			text: "ab",
			edits: []edit.Edit{
				{Begin: 0, End: 1, Text: "A", Kind: edit.Substitute},
				{Begin: 1, End: 2, Text: "^", Kind: edit.Prepend},
			},
			want: "A^b",
		},
		{
			name: "empty substitute inserts before longer one",
			text: "ab",
			edits: []edit.Edit{
				{Begin: 0, End: 2, Text: "XY", Kind: edit.Substitute},
				{Begin: 0, End: 0, Text: ">", Kind: edit.Substitute},
			},
			want: ">XY",
		},
		{
			name: "substitute at end of text",
			text: "ab",
			edits: []edit.Edit{
				{Begin: 2, End: 2, Text: "c", Kind: edit.Substitute},
			},
			want: "abc",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			original := slices.Clone(testCase.edits)
			got, err := edit.Collate(testCase.text, testCase.edits)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
			assert.Equal(t, original, testCase.edits, "input edits must not be reordered")
		})
	}
}

func TestCollateRejectsOverlap(t *testing.T) {
	t.Parallel()

	text := "0123456789"
	first := edit.Edit{Begin: 2, End: 6, Text: "x", Kind: edit.Substitute}
	second := edit.Edit{Begin: 4, End: 8, Text: "y", Kind: edit.Substitute}

	for _, edits := range [][]edit.Edit{{first, second}, {second, first}} {
		_, err := edit.Collate(text, edits)
		require.Error(t, err)
		assert.True(t, errors.Is(err, edit.ErrOverlappingEdits))

		var overlap *edit.OverlapError
		require.ErrorAs(t, err, &overlap)
		assert.Equal(t, 4, overlap.Offset)
		assert.Equal(t, 2, overlap.Depth)
	}
}

func TestCollateRejectsEditInsideSubstitution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		inner edit.Edit
	}{
		{name: "prepend", inner: edit.Edit{Begin: 3, End: 4, Text: "p", Kind: edit.Prepend}},
		{name: "empty substitute", inner: edit.Edit{Begin: 3, End: 3, Text: "s", Kind: edit.Substitute}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			outer := edit.Edit{Begin: 1, End: 5, Text: "X", Kind: edit.Substitute}
			_, err := edit.Collate("abcdefg", []edit.Edit{outer, testCase.inner})
			require.ErrorIs(t, err, edit.ErrOverlappingEdits)

			var overlap *edit.OverlapError
			require.ErrorAs(t, err, &overlap)
			assert.Equal(t, 3, overlap.Offset)
			require.NotNil(t, overlap.Edit)
		})
	}
}

func TestCollateSequentialEquivalence(t *testing.T) {
	t.Parallel()

	text := "alpha beta gamma delta"
	edits := []edit.Edit{
		{Begin: 11, End: 16, Text: "GAMMA", Kind: edit.Substitute},
		{Begin: 0, End: 5, Text: "A", Kind: edit.Substitute},
		{Begin: 17, End: 22, Text: "", Kind: edit.Substitute},
	}

	got, err := edit.Collate(text, edits)
	require.NoError(t, err)

	// Apply right to left so earlier offsets stay valid.
	want := text
	for _, e := range []edit.Edit{edits[2], edits[0], edits[1]} {
		want = want[:e.Begin] + e.Text + want[e.End:]
	}
	assert.Equal(t, want, got)
}

func TestSort(t *testing.T) {
	t.Parallel()

	edits := []edit.Edit{
		{Begin: 5, End: 6, Text: "s5", Kind: edit.Substitute},
		{Begin: 0, End: 2, Text: "s0", Kind: edit.Substitute},
		{Begin: 0, End: 2, Text: "p0a", Kind: edit.Prepend},
		{Begin: 5, End: 6, Text: "p5", Kind: edit.Prepend},
		{Begin: 0, End: 9, Text: "p0b", Kind: edit.Prepend},
	}
	edit.Sort(edits)

	got := make([]string, 0, len(edits))
	for _, e := range edits {
		got = append(got, e.Text)
	}
	assert.Equal(t, []string{"p0a", "p0b", "s0", "p5", "s5"}, got)
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	builder := edit.NewBuilder()
	builder.Prepend(0, 3, "# ")
	builder.Substitute(4, 5, "y")
	builder.Add(
		edit.Edit{Begin: 5, End: 5, Text: "!", Kind: edit.Prepend},
		edit.Edit{Begin: 6, End: 7, Kind: edit.Substitute},
	)

	require.Equal(t, 4, builder.Len())
	edits := builder.Edits()
	assert.Equal(t, edit.Edit{Begin: 0, End: 3, Text: "# ", Kind: edit.Prepend}, edits[0])
	assert.Equal(t, edit.Edit{Begin: 4, End: 5, Text: "y", Kind: edit.Substitute}, edits[1])

	edits[0].Text = "changed"
	assert.Equal(t, "# ", builder.Edits()[0].Text, "Edits returns a copy")

	out, err := edit.Collate("abc x.z?", edits)
	require.NoError(t, err)
	assert.Equal(t, "# abc y!.?", out)

	builder.Reset()
	assert.Zero(t, builder.Len())
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "prepend", edit.Prepend.String())
	assert.Equal(t, "substitute", edit.Substitute.String())
	assert.Equal(t, "kind(9)", edit.Kind(9).String())
	assert.Equal(t, "substitute[1:3]", edit.Edit{Begin: 1, End: 3, Kind: edit.Substitute}.String())
}
