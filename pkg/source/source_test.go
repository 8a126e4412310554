package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/source"
)

func TestTextSlice(t *testing.T) {
	t.Parallel()

	text := source.NewText("f.py", "hello world")

	assert.Equal(t, "hello", text.Slice(0, 5))
	assert.Equal(t, "world", text.SpanText(source.Span{Begin: 6, End: 11}))
	assert.Equal(t, "", text.Slice(20, 30))
	assert.Equal(t, "world", text.Slice(6, 99))
	assert.Equal(t, 11, text.Len())
	assert.Equal(t, "f.py", text.Path)
}

func TestTextLine(t *testing.T) {
	t.Parallel()

	text := source.NewText("", "first\r\nsecond\n")

	line, err := text.Line(0)
	require.NoError(t, err)
	assert.Equal(t, "first\r", line)

	line, err = text.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	line, err = text.Line(2)
	require.NoError(t, err)
	assert.Empty(t, line)

	_, err = text.Line(3)
	require.ErrorIs(t, err, source.ErrPositionOutOfRange)
}

func TestTextIndentation(t *testing.T) {
	t.Parallel()

	text := source.NewText("", "class A:\n    def f(self):\n\t\tpass\n")

	assert.Equal(t, "", text.Indentation(0))
	assert.Equal(t, "    ", text.Indentation(13))
	assert.Equal(t, "\t\t", text.Indentation(28))
}

func TestSpan(t *testing.T) {
	t.Parallel()

	outer := source.Span{Begin: 2, End: 10}

	assert.Equal(t, 8, outer.Len())
	assert.False(t, outer.IsEmpty())
	assert.True(t, outer.Contains(source.Span{Begin: 2, End: 10}))
	assert.False(t, outer.Contains(source.Span{Begin: 1, End: 3}))
	assert.True(t, outer.Overlaps(source.Span{Begin: 9, End: 12}))
	assert.False(t, outer.Overlaps(source.Span{Begin: 10, End: 12}))
	assert.Equal(t, "1:3", source.Point{Line: 0, Column: 2}.String())
}
