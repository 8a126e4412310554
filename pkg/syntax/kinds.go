package syntax

import "sort"

// Class classifies a node kind by whether it can carry source text.
type Class int

const (
	// Textual kinds may carry a span.
	Textual Class = iota + 1
	// Structural kinds never carry a span.
	Structural
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case Textual:
		return "textual"
	case Structural:
		return "structural"
	default:
		return "unknown"
	}
}

// KindTable is the closed set of node kinds a grammar can produce.
// It is built once per grammar and is read-only afterwards.
type KindTable struct {
	language string
	classes  map[string]Class
}

// NewKindTable returns a table for language with the given classes.
func NewKindTable(language string, classes map[string]Class) *KindTable {
	copied := make(map[string]Class, len(classes))
	for kind, class := range classes {
		copied[kind] = class
	}
	return &KindTable{language: language, classes: copied}
}

// Language returns the grammar name.
func (t *KindTable) Language() string {
	return t.language
}

// Class returns the class of kind and whether the kind is known.
func (t *KindTable) Class(kind string) (Class, bool) {
	class, ok := t.classes[kind]
	return class, ok
}

// Kinds returns every known kind sorted by name.
func (t *KindTable) Kinds() []string {
	kinds := make([]string, 0, len(t.classes))
	for kind := range t.classes {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Len returns the number of known kinds.
func (t *KindTable) Len() int {
	return len(t.classes)
}
