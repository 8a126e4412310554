// Package pattern provides the regular-expression substitution engine used
// to rewrite node text.
package pattern

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single replacement run.
const DefaultMatchTimeout = 5 * time.Second

// ErrInvalidPattern is returned when an expression or template does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// Flags adjust how an expression matches and how its template is read.
type Flags uint8

const (
	// IgnoreCase matches letters case-insensitively.
	IgnoreCase Flags = 1 << iota
	// Multiline makes ^ and $ match at line boundaries.
	Multiline
	// DotAll makes . match newlines.
	DotAll
	// PythonTemplate reads the replacement with backslash group
	// references (\1, \g<name>) instead of $1 and ${name}.
	PythonTemplate
)

var flagNames = map[string]Flags{
	"ignorecase": IgnoreCase,
	"i":          IgnoreCase,
	"multiline":  Multiline,
	"m":          Multiline,
	"dotall":     DotAll,
	"s":          DotAll,
	"python":     PythonTemplate,
}

// ParseFlags converts flag names such as "ignorecase" or "m" into Flags.
func ParseFlags(names []string) (Flags, error) {
	var flags Flags
	for _, name := range names {
		f, ok := flagNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("%w: unknown flag %q", ErrInvalidPattern, name)
		}
		flags |= f
	}
	return flags, nil
}

func (f Flags) options() regexp2.RegexOptions {
	opts := regexp2.None
	if f&IgnoreCase != 0 {
		opts |= regexp2.IgnoreCase
	}
	if f&Multiline != 0 {
		opts |= regexp2.Multiline
	}
	if f&DotAll != 0 {
		opts |= regexp2.Singleline
	}
	return opts
}

// Replacer rewrites a piece of text. Implementations must be deterministic.
type Replacer interface {
	Replace(text string) (string, error)
}

// ReplacerFunc adapts a function to Replacer.
type ReplacerFunc func(text string) (string, error)

// Replace calls f.
func (f ReplacerFunc) Replace(text string) (string, error) {
	return f(text)
}

// Regexp replaces matches of a compiled expression with a template.
type Regexp struct {
	re       *regexp2.Regexp
	template string
	count    int
}

var _ Replacer = (*Regexp)(nil)

// Options configure Compile.
type Options struct {
	// Count limits how many matches are replaced; zero or less means all.
	Count int

	// Flags adjust matching and template syntax.
	Flags Flags

	// MatchTimeout bounds one Replace call; zero uses DefaultMatchTimeout.
	MatchTimeout time.Duration
}

// Compile builds a Regexp replacer for expr and template.
func Compile(expr, template string, opts Options) (*Regexp, error) {
	re, err := regexp2.Compile(expr, opts.Flags.options())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, expr, err)
	}

	re.MatchTimeout = opts.MatchTimeout
	if re.MatchTimeout <= 0 {
		re.MatchTimeout = DefaultMatchTimeout
	}

	if opts.Flags&PythonTemplate != 0 {
		template, err = translateTemplate(template)
		if err != nil {
			return nil, err
		}
	}

	count := opts.Count
	if count <= 0 {
		count = -1
	}
	return &Regexp{re: re, template: template, count: count}, nil
}

// Replace substitutes matches in text from the start.
func (r *Regexp) Replace(text string) (string, error) {
	out, err := r.re.Replace(text, r.template, 0, r.count)
	if err != nil {
		return "", fmt.Errorf("replace %q: %w", r.re.String(), err)
	}
	return out, nil
}

// translateTemplate rewrites a backslash-style template into the engine's
// dollar syntax: \1 and \g<1> become ${1}, \g<name> becomes ${name}, a
// literal $ becomes $$, and \n, \t and \\ become their characters.
func translateTemplate(template string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '$':
			b.WriteString("$$")
			continue
		case c != '\\':
			b.WriteByte(c)
			continue
		case i+1 == len(template):
			return "", fmt.Errorf("%w: template ends with a backslash", ErrInvalidPattern)
		}

		i++
		switch next := template[i]; {
		case next >= '0' && next <= '9':
			j := i
			for j < len(template) && j-i < 2 && template[j] >= '0' && template[j] <= '9' {
				j++
			}
			fmt.Fprintf(&b, "${%s}", template[i:j])
			i = j - 1
		case next == 'g':
			if i+1 >= len(template) || template[i+1] != '<' {
				return "", fmt.Errorf("%w: missing < after \\g", ErrInvalidPattern)
			}
			end := strings.IndexByte(template[i+2:], '>')
			if end <= 0 {
				return "", fmt.Errorf("%w: unterminated group name", ErrInvalidPattern)
			}
			fmt.Fprintf(&b, "${%s}", template[i+2:i+2+end])
			i += 2 + end
		case next == 'n':
			b.WriteByte('\n')
		case next == 't':
			b.WriteByte('\t')
		case next == 'r':
			b.WriteByte('\r')
		case next == '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
	}

	return b.String(), nil
}
