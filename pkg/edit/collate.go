package edit

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks that every edit range lies within a text of textLen bytes.
// It returns the first invalid edit.
func Validate(edits []Edit, textLen int) error {
	for _, e := range edits {
		switch {
		case e.Kind != Prepend && e.Kind != Substitute:
			return &ValidationError{Edit: e, Message: "unknown edit kind"}
		case e.Begin < 0:
			return &ValidationError{Edit: e, Message: "begin offset is negative"}
		case e.End < e.Begin:
			return &ValidationError{Edit: e, Message: "end offset is before begin offset"}
		case e.End > textLen:
			return &ValidationError{
				Edit:    e,
				Message: fmt.Sprintf("end offset %d exceeds text length %d", e.End, textLen),
			}
		}
	}
	return nil
}

// CheckOverlap counts, for every byte offset, how many substitutions cover
// it. Any count above one is an overlap. Prepends are not counted, and
// ranges that only touch at a boundary do not overlap. Edits must be
// validated first.
func CheckOverlap(edits []Edit, textLen int) error {
	delta := make([]int, textLen+1)
	for _, e := range edits {
		if e.Kind != Substitute {
			continue
		}
		delta[e.Begin]++
		delta[e.End]--
	}

	depth := 0
	for offset, d := range delta {
		depth += d
		if depth > 1 {
			return &OverlapError{Offset: offset, Depth: depth}
		}
	}
	return nil
}

// Sort orders edits by begin offset, placing prepends before substitutions
// at the same offset. An empty substitution sorts before a longer one at
// the same offset. Edits that still tie keep their insertion order.
func Sort(edits []Edit) {
	slices.SortStableFunc(edits, func(a, b Edit) int {
		if a.Begin != b.Begin {
			return a.Begin - b.Begin
		}
		if a.Kind != b.Kind {
			return a.Kind.priority() - b.Kind.priority()
		}
		if a.Kind == Substitute {
			return a.End - b.End
		}
		return 0
	})
}

// Prepare validates, checks for overlaps and returns a sorted copy of edits.
func Prepare(edits []Edit, textLen int) ([]Edit, error) {
	if len(edits) == 0 {
		return nil, nil
	}
	if err := Validate(edits, textLen); err != nil {
		return nil, err
	}
	if err := CheckOverlap(edits, textLen); err != nil {
		return nil, err
	}

	sorted := slices.Clone(edits)
	Sort(sorted)
	return sorted, nil
}

// Apply splices sorted, prepared edits into text. A prepend leaves the
// cursor at its begin offset so the anchored bytes are still copied; a
// substitution moves the cursor past the replaced range. An edit that
// starts before the cursor sits inside an earlier substitution and is
// rejected.
func Apply(text string, sorted []Edit) (string, error) {
	if len(sorted) == 0 {
		return text, nil
	}

	grow := 0
	for _, e := range sorted {
		grow += len(e.Text)
		if e.Kind == Substitute {
			grow -= e.End - e.Begin
		}
	}

	var out strings.Builder
	out.Grow(max(0, len(text)+grow))

	cursor := 0
	for i := range sorted {
		e := sorted[i]
		if e.Begin < cursor {
			return "", &OverlapError{Offset: e.Begin, Depth: 1, Edit: &e}
		}
		out.WriteString(text[cursor:e.Begin])
		out.WriteString(e.Text)
		cursor = e.Begin
		if e.Kind == Substitute {
			cursor = e.End
		}
	}
	out.WriteString(text[cursor:])

	return out.String(), nil
}

// Collate applies edits to text and returns the rewritten text. The input
// text is never modified; on error the caller's text is still valid.
func Collate(text string, edits []Edit) (string, error) {
	sorted, err := Prepare(edits, len(text))
	if err != nil {
		return "", err
	}
	return Apply(text, sorted)
}
