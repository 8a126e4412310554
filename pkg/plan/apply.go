package plan

import (
	"context"
	"fmt"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/refactor"
	"github.com/yaklabco/treewrite/pkg/tree"
)

// Apply runs every pass against s and returns the final text. Each pass
// records all its steps and collates once; every pass but the last is
// reparsed so the next one can select from its output. The final text is
// never reparsed. On failure pending edits are discarded and the session
// keeps the text of the last committed pass.
func (p *Plan) Apply(ctx context.Context, s *refactor.Session) (string, error) {
	if p.Language != "" && p.Language != s.Language() {
		return "", fmt.Errorf("%w: plan targets %s, file is %s", ErrLanguageMismatch, p.Language, s.Language())
	}

	logger := logging.FromContext(ctx)

	out := s.Source().String()
	for i, pass := range p.Passes {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		for j := range pass.Steps {
			step := &pass.Steps[j]
			matches, err := step.apply(s)
			if err != nil {
				s.Discard()
				return "", &StepError{Pass: i, Step: j, Err: err}
			}
			logger.Debug("plan step",
				logging.FieldPass, i+1,
				logging.FieldQuery, step.Select,
				logging.FieldMatches, matches)
		}

		edits := len(s.Pending())
		var err error
		if i == len(p.Passes)-1 {
			out, err = s.Execute()
		} else {
			out, err = s.Commit(ctx)
		}
		if err != nil {
			return "", fmt.Errorf("pass %d: %w", i+1, err)
		}
		logger.Debug("plan pass collated", logging.FieldPass, i+1, logging.FieldEdits, edits)
	}

	return out, nil
}

func (st *Step) apply(s *refactor.Session) (int, error) {
	sel, err := s.Select(st.Select)
	if err != nil {
		return 0, err
	}

	switch {
	case st.Prepend != nil:
		err = sel.PrependTry(st.render(s))
	case st.Replace != nil:
		err = sel.SubstituteTry(st.render(s))
	default:
		sub := st.Substitute
		err = sel.Substitute(sub.Pattern, sub.Replacement, sub.Count, sub.flags)
	}
	return sel.Len(), err
}

func (st *Step) render(s *refactor.Session) refactor.TryMapFunc {
	src := s.Source()
	return func(text string, n *tree.Node) (string, error) {
		sp, _ := n.Span()
		start := n.Start()
		return render(st.template, Node{
			Text:   text,
			Indent: src.Indentation(sp.Begin),
			Kind:   n.Kind,
			ID:     n.ID,
			Line:   start.Line + 1,
			Column: start.Column,
			node:   n,
		})
	}
}
