// Package refactor is the structural rewriting API: load a source text,
// select nodes with path queries and set algebra, record edits on them,
// and collate those edits into a rewritten text.
package refactor

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/fsutil"
	"github.com/yaklabco/treewrite/pkg/query"
	"github.com/yaklabco/treewrite/pkg/source"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// Parser turns a source text into a parsed syntax tree. Implementations
// live in the parser packages.
type Parser interface {
	// Language names the grammar.
	Language() string

	// Kinds returns the grammar's closed kind table.
	Kinds() *syntax.KindTable

	// Parse parses text. It fails with a *syntax.ParseError and returns no
	// partial tree when the text is not valid.
	Parse(ctx context.Context, text *source.Text) (*syntax.Node, error)
}

// Option configures a Session.
type Option func(*Session)

// WithMatchTimeout bounds each regular-expression substitution.
func WithMatchTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.matchTimeout = d
	}
}

// WithLogger overrides the logger taken from the context.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session owns one source text, its projected tree and the edits pending
// against it. A Session is not safe for concurrent use; independent
// sessions share nothing and may run in parallel.
type Session struct {
	id           uuid.UUID
	parser       Parser
	text         *source.Text
	tree         *tree.Tree
	generation   int
	floors       []int
	nextID       int
	pending      *edit.Builder
	applied      int
	passes       int
	matchTimeout time.Duration
	logger       *log.Logger
}

// Load reads path and parses it.
func Load(ctx context.Context, parser Parser, path string, opts ...Option) (*Session, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return Open(ctx, parser, source.NewText(path, string(content)), opts...)
}

// Loads parses an in-memory text.
func Loads(ctx context.Context, parser Parser, text string, opts ...Option) (*Session, error) {
	return Open(ctx, parser, source.NewText("", text), opts...)
}

// Open parses text and projects its tree.
func Open(ctx context.Context, parser Parser, text *source.Text, opts ...Option) (*Session, error) {
	s := &Session{
		id:      uuid.New(),
		parser:  parser,
		nextID:  1,
		pending: edit.NewBuilder(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.FromContext(ctx)
	}
	s.logger = s.logger.With(logging.FieldSession, s.id.String()[:8])

	if err := s.load(ctx, text); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context, text *source.Text) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parsed, err := s.parser.Parse(ctx, text)
	if err != nil {
		return fmt.Errorf("parse %s: %w", s.describe(text), err)
	}

	projected, err := tree.ProjectFrom(parsed, s.parser.Kinds(), s.nextID)
	if err != nil {
		return fmt.Errorf("project %s: %w", s.describe(text), err)
	}

	s.text = text
	s.tree = projected
	s.generation++
	s.floors = append(s.floors, projected.FirstID())
	s.nextID = projected.NextID()
	s.pending.Reset()

	s.logger.Debug("loaded source",
		logging.FieldPath, text.Path,
		logging.FieldLanguage, s.parser.Language(),
		logging.FieldNodes, projected.Len(),
		logging.FieldGeneration, s.generation,
	)
	return nil
}

func (s *Session) describe(text *source.Text) string {
	if text.Path != "" {
		return text.Path
	}
	return s.parser.Language() + " input"
}

// Reload replaces the session text with text and reparses it. Every node
// and selection obtained before the call becomes stale, and pending edits
// are dropped. On failure the session keeps its previous state.
func (s *Session) Reload(ctx context.Context, text string) error {
	return s.load(ctx, source.NewText(s.text.Path, text))
}

// ID identifies the session in logs and errors.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Generation counts successful parses; it starts at 1.
func (s *Session) Generation() int {
	return s.generation
}

// Language names the session's grammar.
func (s *Session) Language() string {
	return s.parser.Language()
}

// Source returns the current source text.
func (s *Session) Source() *source.Text {
	return s.text
}

// Tree returns the current projected tree.
func (s *Session) Tree() *tree.Tree {
	return s.tree
}

// Root returns a selection holding the tree root.
func (s *Session) Root() *Selection {
	return s.selection([]*tree.Node{s.tree.Root})
}

// All returns a selection of every real node in document order.
func (s *Session) All() *Selection {
	return s.selection(s.tree.Nodes())
}

// Node returns the node with id in the current tree. Ids are never reused
// within a session: an id handed out by an earlier parse fails with
// ErrStaleReference, and an id never handed out with ErrNodeNotFound.
func (s *Session) Node(id int) (*tree.Node, error) {
	if n := s.tree.Node(id); n != nil {
		return n, nil
	}
	if id >= 1 && id < s.tree.FirstID() {
		return nil, fmt.Errorf("node %d: %w", id, &StaleError{
			Session:    s.id.String(),
			Generation: s.generationOfID(id),
			Current:    s.generation,
		})
	}
	return nil, fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
}

// generationOfID finds the parse that assigned id.
func (s *Session) generationOfID(id int) int {
	g := 0
	for i, floor := range s.floors {
		if id >= floor {
			g = i + 1
		}
	}
	return g
}

// Select evaluates path against the tree root.
func (s *Session) Select(path string) (*Selection, error) {
	return s.Root().Select(path)
}

// Evaluate evaluates a path expression that may yield a number, string or
// boolean instead of nodes.
func (s *Session) Evaluate(path string) (any, error) {
	q, err := query.Compile(path)
	if err != nil {
		return nil, err
	}
	switch v := q.Evaluate(s.tree.Root, s.text).(type) {
	case []*tree.Node:
		return s.selection(v), nil
	default:
		return v, nil
	}
}

// Span returns the byte span of n, failing for stale or span-less nodes.
func (s *Session) Span(n *tree.Node) (source.Span, error) {
	if err := s.owns(n); err != nil {
		return source.Span{}, err
	}
	sp, ok := n.Span()
	if !ok {
		return source.Span{}, fmt.Errorf("%s: %w", n, ErrNotTextRepresentable)
	}
	return sp, nil
}

// TextOf returns the exact source text of n.
func (s *Session) TextOf(n *tree.Node) (string, error) {
	sp, err := s.Span(n)
	if err != nil {
		return "", err
	}
	return s.text.SpanText(sp), nil
}

// Pending returns a copy of the edits recorded since the last Execute.
func (s *Session) Pending() []edit.Edit {
	return s.pending.Edits()
}

// Applied counts the edits collated by successful Execute calls over the
// life of the session.
func (s *Session) Applied() int {
	return s.applied
}

// Passes counts successful Execute calls over the life of the session.
func (s *Session) Passes() int {
	return s.passes
}

// Discard drops the pending edits without collating them.
func (s *Session) Discard() {
	s.pending.Reset()
}

// Execute collates the pending edits against the current text and returns
// the rewritten text. Pending edits are cleared whether or not collation
// succeeds. The session text itself is not replaced; call Reload with the
// result to run another pass.
func (s *Session) Execute() (string, error) {
	edits := s.pending.Edits()
	s.pending.Reset()

	out, err := edit.Collate(s.text.String(), edits)
	if err != nil {
		s.logger.Debug("collation failed", logging.FieldEdits, len(edits), logging.FieldError, err)
		return "", err
	}

	s.applied += len(edits)
	s.passes++
	s.logger.Debug("collated edits", logging.FieldEdits, len(edits), logging.FieldGeneration, s.generation)
	return out, nil
}

// Commit executes the pending edits and, when the text changed, reloads
// the session with the result so the next pass sees the rewritten text.
func (s *Session) Commit(ctx context.Context) (string, error) {
	out, err := s.Execute()
	if err != nil {
		return "", err
	}
	if out == s.text.String() {
		return out, nil
	}
	if err := s.Reload(ctx, out); err != nil {
		return "", err
	}
	return out, nil
}

func (s *Session) owns(n *tree.Node) error {
	if n == nil || n.Tree() != s.tree {
		return &StaleError{Session: s.id.String(), Generation: s.generationOf(n), Current: s.generation}
	}
	return nil
}

// generationOf reports 0 for nodes from unknown trees.
func (s *Session) generationOf(n *tree.Node) int {
	if n != nil && n.Tree() == s.tree {
		return s.generation
	}
	return 0
}

func (s *Session) record(b *edit.Builder) {
	s.pending.Add(b.Edits()...)
}
