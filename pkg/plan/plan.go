// Package plan reads batch rewrite plans: passes of select-and-edit steps
// described in YAML and run against a refactor session.
package plan

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/treewrite/pkg/pattern"
	"github.com/yaklabco/treewrite/pkg/query"
)

//go:embed schemas/plan.schema.json
var planSchema string

const schemaURL = "https://treewrite.dev/schemas/plan.schema.json"

var (
	// ErrInvalidPlan is returned when a plan fails to parse or validate.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrLanguageMismatch is returned when a plan bound to one language is
	// applied to a session of another.
	ErrLanguageMismatch = errors.New("plan language mismatch")
)

// Plan is an ordered list of passes. Each pass ends with one collation;
// the session is reparsed between passes.
type Plan struct {
	// Language optionally restricts the plan to one grammar.
	Language string `yaml:"language,omitempty"`
	Passes   []Pass `yaml:"passes"`
}

// Pass is a group of steps collated together.
type Pass struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step selects nodes and records one kind of edit on them.
type Step struct {
	Select     string        `yaml:"select"`
	Prepend    *string       `yaml:"prepend,omitempty"`
	Replace    *string       `yaml:"replace,omitempty"`
	Substitute *Substitution `yaml:"substitute,omitempty"`

	template *template.Template
}

// Substitution is a regular-expression rewrite of each node's text.
type Substitution struct {
	Pattern     string   `yaml:"pattern"`
	Replacement string   `yaml:"replacement"`
	Count       int      `yaml:"count,omitempty"`
	Flags       []string `yaml:"flags,omitempty"`

	flags pattern.Flags
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse validates data against the plan schema and compiles its queries,
// templates and patterns.
func Parse(data []byte) (*Plan, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	for i := range p.Passes {
		for j := range p.Passes[i].Steps {
			if err := p.Passes[i].Steps[j].compile(); err != nil {
				return nil, &StepError{Pass: i, Step: j, Err: err}
			}
		}
	}
	return &p, nil
}

func validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidPlan)
	}

	// Round-trip through JSON so the validator sees JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(planSchema))
	if err != nil {
		return nil, fmt.Errorf("parse plan schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add plan schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile plan schema: %w", err)
	}
	return schema, nil
}

func (s *Step) compile() error {
	_, err := query.Compile(s.Select)
	if err != nil {
		return err
	}

	switch {
	case s.Prepend != nil:
		s.template, err = newTemplate("prepend", *s.Prepend)
	case s.Replace != nil:
		s.template, err = newTemplate("replace", *s.Replace)
	case s.Substitute != nil:
		err = s.Substitute.compile()
	}
	return err
}

func (sub *Substitution) compile() error {
	flags, err := pattern.ParseFlags(sub.Flags)
	if err != nil {
		return err
	}
	sub.flags = flags

	// Compile once so bad expressions fail at load time.
	_, err = pattern.Compile(sub.Pattern, sub.Replacement, pattern.Options{Count: sub.Count, Flags: flags})
	return err
}

// Action names the edit a step records.
func (s *Step) Action() string {
	switch {
	case s.Prepend != nil:
		return "prepend"
	case s.Replace != nil:
		return "replace"
	default:
		return "substitute"
	}
}

// StepError locates a failure within a plan. Pass and Step are 0-based.
type StepError struct {
	Pass int
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pass %d step %d: %v", e.Pass+1, e.Step+1, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
