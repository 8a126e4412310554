package source

import (
	"errors"
	"fmt"
	"sort"
)

// ErrPositionOutOfRange is returned when a (line, column) point or a byte
// offset does not address a position inside the text.
var ErrPositionOutOfRange = errors.New("position out of range")

// PositionError describes an out-of-range lookup.
type PositionError struct {
	Line   int
	Column int
	Offset int
	Reason string
}

// Error implements the error interface.
func (e *PositionError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("line %d column %d: %s", e.Line, e.Column, e.Reason)
}

// Unwrap returns ErrPositionOutOfRange.
func (e *PositionError) Unwrap() error {
	return ErrPositionOutOfRange
}

// Index maps zero-based line numbers to the byte offset of each line's
// first byte. Lines are terminated by "\n"; a preceding "\r" is part of
// the line. Empty text has exactly one empty line.
type Index struct {
	starts []int
	size   int
}

// NewIndex scans content once and records every line start.
func NewIndex(content string) *Index {
	starts := make([]int, 1, 64)
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{starts: starts, size: len(content)}
}

// LineCount returns the number of lines, counting a trailing empty line
// after a final terminator.
func (idx *Index) LineCount() int {
	return len(idx.starts)
}

// LineStart returns the offset of the first byte of line.
func (idx *Index) LineStart(line int) (int, error) {
	if line < 0 || line >= len(idx.starts) {
		return 0, &PositionError{Line: line, Offset: -1, Reason: fmt.Sprintf("text has %d lines", len(idx.starts))}
	}
	return idx.starts[line], nil
}

// LineLen returns the length of line in bytes, excluding its terminator.
// It returns 0 for lines outside the text.
func (idx *Index) LineLen(line int) int {
	if line < 0 || line >= len(idx.starts) {
		return 0
	}
	if line+1 < len(idx.starts) {
		return idx.starts[line+1] - 1 - idx.starts[line]
	}
	return idx.size - idx.starts[line]
}

// Offset converts a zero-based line and byte column to an absolute offset.
// A column equal to the line length addresses the terminator (or the end
// of the text on the last line) and is accepted.
func (idx *Index) Offset(line, column int) (int, error) {
	start, err := idx.LineStart(line)
	if err != nil {
		var perr *PositionError
		if errors.As(err, &perr) {
			perr.Column = column
		}
		return 0, err
	}
	if column < 0 || column > idx.LineLen(line) {
		return 0, &PositionError{
			Line:   line,
			Column: column,
			Offset: -1,
			Reason: fmt.Sprintf("line has %d bytes", idx.LineLen(line)),
		}
	}
	return start + column, nil
}

// Point converts an absolute offset back to a zero-based line and column.
func (idx *Index) Point(offset int) (Point, error) {
	if offset < 0 || offset > idx.size {
		return Point{}, &PositionError{Offset: offset, Reason: fmt.Sprintf("text has %d bytes", idx.size)}
	}
	line := sort.Search(len(idx.starts), func(i int) bool {
		return idx.starts[i] > offset
	}) - 1
	return Point{Line: line, Column: offset - idx.starts[line]}, nil
}

// Span converts a pair of points to a byte span.
func (idx *Index) Span(start, end Point) (Span, error) {
	begin, err := idx.Offset(start.Line, start.Column)
	if err != nil {
		return Span{}, fmt.Errorf("span start: %w", err)
	}
	stop, err := idx.Offset(end.Line, end.Column)
	if err != nil {
		return Span{}, fmt.Errorf("span end: %w", err)
	}
	if stop < begin {
		return Span{}, &PositionError{
			Line:   end.Line,
			Column: end.Column,
			Offset: -1,
			Reason: fmt.Sprintf("span end precedes start %s", start),
		}
	}
	return Span{Begin: begin, End: stop}, nil
}
