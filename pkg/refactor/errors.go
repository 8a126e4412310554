package refactor

import (
	"errors"
	"fmt"
)

var (
	// ErrNotTextRepresentable is returned when an edit targets a node that
	// has no contiguous source text.
	ErrNotTextRepresentable = errors.New("node cannot be converted to text")

	// ErrStaleReference is returned when a selection or node from an
	// earlier parse, or another session, is used.
	ErrStaleReference = errors.New("stale reference")

	// ErrNodeNotFound is returned for an id the session never assigned.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidMapping is returned when a map function yields no node or a
	// node outside the session tree.
	ErrInvalidMapping = errors.New("map function returned an invalid node")
)

// StaleError carries the generations that did not match.
type StaleError struct {
	Session    string
	Generation int
	Current    int
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("stale reference: session %s generation %d, current generation %d",
		e.Session, e.Generation, e.Current)
}

// Unwrap returns ErrStaleReference.
func (e *StaleError) Unwrap() error {
	return ErrStaleReference
}
