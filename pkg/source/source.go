// Package source holds immutable source buffers and the index that maps
// zero-based (line, column) points to absolute byte offsets.
package source

import (
	"fmt"
	"strings"
)

// Text is an immutable source buffer with its position index.
type Text struct {
	// Path is the file path the text was loaded from, or "" for in-memory text.
	Path string

	content string
	index   *Index
}

// NewText builds a Text and its index for content.
func NewText(path, content string) *Text {
	return &Text{
		Path:    path,
		content: content,
		index:   NewIndex(content),
	}
}

// String returns the full content.
func (t *Text) String() string {
	return t.content
}

// Len returns the content length in bytes.
func (t *Text) Len() int {
	return len(t.content)
}

// Index returns the position index for the text.
func (t *Text) Index() *Index {
	return t.index
}

// Slice returns the content between two byte offsets.
// Offsets are clamped to the content bounds.
func (t *Text) Slice(begin, end int) string {
	begin = max(0, min(begin, len(t.content)))
	end = max(begin, min(end, len(t.content)))
	return t.content[begin:end]
}

// SpanText returns the content covered by span.
func (t *Text) SpanText(span Span) string {
	return t.Slice(span.Begin, span.End)
}

// Line returns the content of a zero-based line without its terminator.
func (t *Text) Line(line int) (string, error) {
	begin, err := t.index.Offset(line, 0)
	if err != nil {
		return "", err
	}
	return t.content[begin : begin+t.index.LineLen(line)], nil
}

// Point is a zero-based line and byte column.
type Point struct {
	Line   int
	Column int
}

// String formats the point as 1-based "line:column" for humans.
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Span is a half-open byte range [Begin, End).
type Span struct {
	Begin int
	End   int
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.End - s.Begin
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.Begin == s.End
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return other.Begin >= s.Begin && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Begin < other.End && other.Begin < s.End
}

// Indentation returns the leading run of spaces and tabs of the line
// containing offset.
func (t *Text) Indentation(offset int) string {
	point, err := t.index.Point(offset)
	if err != nil {
		return ""
	}
	line, _ := t.Line(point.Line)
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
