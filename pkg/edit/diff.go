package edit

import (
	"fmt"
	"strings"
)

// LineKind tells whether a diff line is context, added or removed.
type LineKind int

const (
	// LineContext is unchanged.
	LineContext LineKind = iota
	// LineAdd exists only in the rewritten text.
	LineAdd
	// LineRemove exists only in the original text.
	LineRemove
)

// prefix returns the unified diff marker for the line kind.
func (k LineKind) prefix() byte {
	switch k {
	case LineAdd:
		return '+'
	case LineRemove:
		return '-'
	default:
		return ' '
	}
}

// DiffLine is one line of a hunk.
type DiffLine struct {
	Kind    LineKind
	Content string
}

// Hunk is a contiguous block of changes with surrounding context.
// Line numbers are 1-based.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []DiffLine
}

// Diff is a line-based unified diff between two versions of a file.
type Diff struct {
	Path      string
	Hunks     []Hunk
	Additions int
	Deletions int
}

const diffContext = 3

// GenerateDiff compares before and after line by line and returns nil
// when they are equal.
func GenerateDiff(path, before, after string) *Diff {
	if before == after {
		return nil
	}

	oldLines := diffSplit(before)
	newLines := diffSplit(after)
	script := editScript(oldLines, newLines)

	diff := &Diff{Path: path}
	for _, op := range script {
		switch op.kind {
		case LineAdd:
			diff.Additions++
		case LineRemove:
			diff.Deletions++
		case LineContext:
		}
	}
	diff.Hunks = hunksOf(script)
	if len(diff.Hunks) == 0 {
		// Only a trailing newline differs.
		return nil
	}
	return diff
}

// HasChanges reports whether the diff contains any hunk.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// String renders the diff in unified format with ---/+++ headers.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, line := range h.Lines {
			b.WriteByte(line.Kind.prefix())
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func diffSplit(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

type scriptOp struct {
	kind    LineKind
	content string
}

// editScript walks a longest-common-subsequence table to produce the
// shortest sequence of context, remove and add operations.
func editScript(a, b []string) []scriptOp {
	n, m := len(a), len(b)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else {
				table[i][j] = max(table[i+1][j], table[i][j+1])
			}
		}
	}

	ops := make([]scriptOp, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, scriptOp{kind: LineContext, content: a[i]})
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			ops = append(ops, scriptOp{kind: LineRemove, content: a[i]})
			i++
		default:
			ops = append(ops, scriptOp{kind: LineAdd, content: b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, scriptOp{kind: LineRemove, content: a[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, scriptOp{kind: LineAdd, content: b[j]})
	}
	return ops
}

// hunksOf groups changed operations with up to diffContext lines of
// context on each side, merging groups whose context would touch.
func hunksOf(ops []scriptOp) []Hunk {
	// oldAt and newAt hold the 1-based line number each op starts at.
	oldAt := make([]int, len(ops)+1)
	newAt := make([]int, len(ops)+1)
	oldAt[0], newAt[0] = 1, 1
	for i, op := range ops {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]
		if op.kind != LineAdd {
			oldAt[i+1]++
		}
		if op.kind != LineRemove {
			newAt[i+1]++
		}
	}

	var hunks []Hunk
	for i := 0; i < len(ops); {
		if ops[i].kind == LineContext {
			i++
			continue
		}

		start := max(0, i-diffContext)
		last := i
		for j := i + 1; j < len(ops) && j-last <= 2*diffContext; j++ {
			if ops[j].kind != LineContext {
				last = j
			}
		}
		end := min(len(ops), last+1+diffContext)

		h := Hunk{OldStart: oldAt[start], NewStart: newAt[start]}
		for _, op := range ops[start:end] {
			h.Lines = append(h.Lines, DiffLine{Kind: op.kind, Content: op.content})
			if op.kind != LineAdd {
				h.OldCount++
			}
			if op.kind != LineRemove {
				h.NewCount++
			}
		}
		hunks = append(hunks, h)
		i = end
	}
	return hunks
}
