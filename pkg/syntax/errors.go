package syntax

import (
	"errors"
	"fmt"
)

// ErrParse is returned when a grammar rejects its input. No partial tree
// is produced.
var ErrParse = errors.New("parse error")

// ParseError locates the first syntax error the grammar reported.
type ParseError struct {
	Language string
	Path     string
	Line     int
	Column   int
	Detail   string
}

// Error implements the error interface. Positions print 1-based.
func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}
	msg := fmt.Sprintf("%s:%d:%d: %s: invalid syntax", where, e.Line+1, e.Column+1, e.Language)
	if e.Detail != "" {
		msg += " near " + e.Detail
	}
	return msg
}

// Unwrap returns ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}
