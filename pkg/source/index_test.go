package source_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/source"
)

func TestIndexLineCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "empty", content: "", want: 1},
		{name: "no terminator", content: "abc", want: 1},
		{name: "trailing terminator", content: "abc\n", want: 2},
		{name: "only terminator", content: "\n", want: 2},
		{name: "crlf", content: "a\r\nb\r\n", want: 3},
		{name: "lone cr is content", content: "a\rb\rc", want: 1},
		{name: "three lines", content: "a\nb\nc", want: 3},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			idx := source.NewIndex(testCase.content)
			assert.Equal(t, testCase.want, idx.LineCount())
		})
	}
}

func TestIndexOffset(t *testing.T) {
	t.Parallel()

	content := "def f(x):\n    return x\n"
	idx := source.NewIndex(content)

	tests := []struct {
		name    string
		line    int
		column  int
		want    int
		wantErr bool
	}{
		{name: "origin", line: 0, column: 0, want: 0},
		{name: "inside first line", line: 0, column: 4, want: 4},
		{name: "end of first line", line: 0, column: 9, want: 9},
		{name: "second line", line: 1, column: 4, want: 14},
		{name: "empty last line", line: 2, column: 0, want: len(content)},
		{name: "column past line", line: 0, column: 10, wantErr: true},
		{name: "negative column", line: 1, column: -1, wantErr: true},
		{name: "line past end", line: 3, column: 0, wantErr: true},
		{name: "negative line", line: -1, column: 0, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := idx.Offset(testCase.line, testCase.column)
			if testCase.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, source.ErrPositionOutOfRange))

				var perr *source.PositionError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, testCase.line, perr.Line)
				assert.Equal(t, testCase.column, perr.Column)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestIndexPointRoundTrip(t *testing.T) {
	t.Parallel()

	content := "a = 1\n\nb = [\r\n  2,\n]"
	idx := source.NewIndex(content)

	for offset := 0; offset <= len(content); offset++ {
		point, err := idx.Point(offset)
		require.NoError(t, err, "offset %d", offset)

		back, err := idx.Offset(point.Line, point.Column)
		require.NoError(t, err, "point %v", point)
		assert.Equal(t, offset, back)
	}

	_, err := idx.Point(len(content) + 1)
	require.ErrorIs(t, err, source.ErrPositionOutOfRange)
}

func TestIndexSpan(t *testing.T) {
	t.Parallel()

	idx := source.NewIndex("x = 1\ny = 2\n")

	span, err := idx.Span(source.Point{Line: 1, Column: 0}, source.Point{Line: 1, Column: 5})
	require.NoError(t, err)
	assert.Equal(t, source.Span{Begin: 6, End: 11}, span)

	_, err = idx.Span(source.Point{Line: 1, Column: 2}, source.Point{Line: 0, Column: 1})
	require.ErrorIs(t, err, source.ErrPositionOutOfRange)
}
