// Package recipes holds ready-made rewrites and extractions built on the
// refactor API.
package recipes

import (
	"errors"
	"fmt"

	"github.com/yaklabco/treewrite/pkg/refactor"
)

var (
	// ErrUnsupportedLanguage is returned when a recipe is run against a
	// session whose grammar it does not know.
	ErrUnsupportedLanguage = errors.New("language not supported by recipe")

	// ErrFunctionNotFound is returned when the named function is absent.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrInvalidName is returned for names that are not identifiers.
	ErrInvalidName = errors.New("invalid identifier")
)

func requireLanguage(s *refactor.Session, recipe string, languages ...string) error {
	for _, lang := range languages {
		if s.Language() == lang {
			return nil
		}
	}
	return fmt.Errorf("%s on %s: %w", recipe, s.Language(), ErrUnsupportedLanguage)
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
