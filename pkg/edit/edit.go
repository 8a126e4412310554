// Package edit records textual edits against a source buffer and collates
// them into a single rewritten text.
package edit

import "fmt"

// Kind selects how an edit is spliced into the output.
type Kind int

const (
	// Prepend inserts text before Begin and leaves the original bytes in place.
	Prepend Kind = iota + 1
	// Substitute replaces the bytes in [Begin, End).
	Substitute
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Prepend:
		return "prepend"
	case Substitute:
		return "substitute"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// priority orders edits that begin at the same offset: prepends first.
func (k Kind) priority() int {
	return int(k)
}

// Edit is one pending change anchored to a byte range of the source.
type Edit struct {
	// Begin is the byte index where the anchor starts (inclusive).
	Begin int

	// End is the byte index where the anchor ends (exclusive).
	End int

	// Text is the inserted or replacement text.
	Text string

	// Kind is Prepend or Substitute.
	Kind Kind
}

// String formats the edit for logs and errors.
func (e Edit) String() string {
	return fmt.Sprintf("%s[%d:%d]", e.Kind, e.Begin, e.End)
}

// Builder accumulates edits in insertion order.
type Builder struct {
	edits []Edit
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Prepend records text to be inserted before the range [begin, end).
func (b *Builder) Prepend(begin, end int, text string) {
	b.edits = append(b.edits, Edit{Begin: begin, End: end, Text: text, Kind: Prepend})
}

// Substitute records a replacement of [begin, end) with text.
func (b *Builder) Substitute(begin, end int, text string) {
	b.edits = append(b.edits, Edit{Begin: begin, End: end, Text: text, Kind: Substitute})
}

// Add appends already-built edits.
func (b *Builder) Add(edits ...Edit) {
	b.edits = append(b.edits, edits...)
}

// Len returns the number of recorded edits.
func (b *Builder) Len() int {
	return len(b.edits)
}

// Edits returns a copy of the recorded edits in insertion order.
func (b *Builder) Edits() []Edit {
	out := make([]Edit, len(b.edits))
	copy(out, b.edits)
	return out
}

// Reset drops every recorded edit.
func (b *Builder) Reset() {
	b.edits = b.edits[:0]
}
