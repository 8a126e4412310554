// Package langdetect maps source files to the grammar that parses them.
// It uses go-enry for extension, shebang and classifier based detection and
// restricts the answer to the languages treewrite has a parser for.
package langdetect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Supported language names. They match the parser registry names.
const (
	Python     = "python"
	JavaScript = "javascript"
	TypeScript = "typescript"
	Rust       = "rust"
	Go         = "go"
	Markdown   = "markdown"
)

//nolint:gochecknoglobals // enry display name -> parser name
var fromEnry = map[string]string{
	"Python":     Python,
	"JavaScript": JavaScript,
	"JSX":        JavaScript,
	"TypeScript": TypeScript,
	"TSX":        TypeScript,
	"Rust":       Rust,
	"Go":         Go,
	"Markdown":   Markdown,
}

//nolint:gochecknoglobals // classifier candidates
var candidates = []string{"Python", "JavaScript", "TypeScript", "Rust", "Go", "Markdown"}

// Supported returns the languages Detect can report.
func Supported() []string {
	return []string{Go, JavaScript, Markdown, Python, Rust, TypeScript}
}

// IsSupported reports whether name is a language Detect can report.
func IsSupported(name string) bool {
	switch name {
	case Python, JavaScript, TypeScript, Rust, Go, Markdown:
		return true
	default:
		return false
	}
}

// Detect returns the parser language for a file. The path drives detection
// when it carries a known extension; content is consulted otherwise.
// The boolean is false when no supported language matches.
func Detect(path string, content []byte) (string, bool) {
	if path != "" {
		if lang, ok := ByPath(path); ok {
			return lang, true
		}
	}
	return ByContent(content)
}

// ByPath detects the language from the file name alone. Extensions shared
// by several languages (".md", ".rs", ".ts") resolve when exactly one of the
// claimants is supported.
func ByPath(path string) (string, bool) {
	base := filepath.Base(path)
	if lang, ok := supportedOf(enry.GetLanguagesByFilename(base, nil, nil)); ok {
		return lang, true
	}
	return supportedOf(enry.GetLanguagesByExtension(base, nil, nil))
}

func supportedOf(languages []string) (string, bool) {
	found := ""
	for _, lang := range languages {
		name, ok := fromEnry[lang]
		if !ok || name == found {
			continue
		}
		if found != "" {
			return "", false
		}
		found = name
	}
	return found, found != ""
}

// ByContent detects the language of an unnamed snippet.
func ByContent(content []byte) (string, bool) {
	if len(bytes.TrimSpace(content)) == 0 {
		return "", false
	}

	// Shebang first, it is the most reliable signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		name, ok := fromEnry[lang]
		return name, ok
	}

	if lang := detectByPattern(content); lang != "" {
		return lang, true
	}

	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe {
		name, ok := fromEnry[lang]
		return name, ok
	}
	return "", false
}

// detectByPattern checks for constructs that identify a language outright.
func detectByPattern(content []byte) string {
	text := string(content)
	trimmed := strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(trimmed, "package ") && strings.Contains(text, "func "):
		return Go
	case strings.Contains(text, "def ") && strings.Contains(text, "):\n"):
		return Python
	case strings.Contains(text, "__name__") && strings.Contains(text, "__main__"):
		return Python
	case strings.Contains(text, "fn main()") || strings.Contains(text, "let mut ") || strings.Contains(text, "println!"):
		return Rust
	case strings.Contains(text, "interface ") && strings.Contains(text, ": string"):
		return TypeScript
	case strings.Contains(text, "console.log") || strings.Contains(text, "=>"):
		return JavaScript
	case strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## "):
		return Markdown
	}
	return ""
}
