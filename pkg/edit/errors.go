package edit

import (
	"errors"
	"fmt"
)

// ErrOverlappingEdits is returned when two substitutions claim the same bytes,
// or an edit falls inside a range another substitution consumes.
var ErrOverlappingEdits = errors.New("overlapping edits")

// ValidationError describes an edit whose range does not fit the text.
type ValidationError struct {
	Edit    Edit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit %s: %s", e.Edit, e.Message)
}

// OverlapError reports the first offset where edits collide.
type OverlapError struct {
	// Offset is the first byte claimed by more than one substitution,
	// or the start of an edit that lands inside a consumed range.
	Offset int

	// Depth is the number of substitutions covering Offset.
	Depth int

	// Edit is the edit that could not be placed, when known.
	Edit *Edit
}

func (e *OverlapError) Error() string {
	if e.Edit != nil {
		return fmt.Sprintf("overlapping edits: %s starts at %d inside a substituted range", e.Edit, e.Offset)
	}
	return fmt.Sprintf("overlapping edits: %d substitutions cover offset %d", e.Depth, e.Offset)
}

// Unwrap returns ErrOverlappingEdits.
func (e *OverlapError) Unwrap() error {
	return ErrOverlappingEdits
}
