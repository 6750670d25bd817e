// Package rewrite collects the replacements tweaks propose for one source
// file and renders the rewritten text.
package rewrite

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// Edit is one pending replacement.
type Edit struct {
	Span    tweaks.Span
	produce func() string
}

// Text evaluates the replacement.
func (e Edit) Text() string {
	return e.produce()
}

// Changes accumulates edits over one source text. Edits never strictly
// overlap and are kept sorted by (start, end). It implements tweaks.Target.
type Changes struct {
	edits []Edit
}

// NewChanges returns an empty accumulator.
func NewChanges() *Changes {
	return &Changes{}
}

// CanReplace reports whether no registered edit strictly intersects span.
// Touching spans and insertion points, including one inside an edit, do not
// intersect.
func (c *Changes) CanReplace(span tweaks.Span) bool {
	for _, e := range c.edits {
		if e.Span.IntersectsStrict(span) {
			return false
		}
	}
	return true
}

// Replace registers an edit. An edit over exactly the same span composes
// with the earlier one by concatenating their outputs. A strictly
// overlapping edit over a different span panics with a
// *tweaks.ContractViolation; callers check CanReplace first.
func (c *Changes) Replace(span tweaks.Span, produce func() string) {
	if span.Start < 0 || span.End < span.Start {
		panic(&tweaks.ContractViolation{Message: fmt.Sprintf("invalid replacement span %s", span)})
	}
	for i, e := range c.edits {
		if e.Span == span {
			prev := e.produce
			c.edits[i].produce = func() string { return prev() + produce() }
			return
		}
		if e.Span.IntersectsStrict(span) {
			panic(&tweaks.ContractViolation{Message: fmt.Sprintf("replacement %s overlaps existing replacement %s", span, e.Span)})
		}
	}
	i, _ := slices.BinarySearchFunc(c.edits, span, func(e Edit, s tweaks.Span) int {
		if e.Span.Start != s.Start {
			return e.Span.Start - s.Start
		}
		return e.Span.End - s.End
	})
	c.edits = slices.Insert(c.edits, i, Edit{Span: span, produce: produce})
}

// Len returns the number of registered edits.
func (c *Changes) Len() int {
	return len(c.edits)
}

// Edits returns the registered edits in ascending order.
func (c *Changes) Edits() []Edit {
	return slices.Clone(c.edits)
}

// Apply renders text with every edit applied. Edits are evaluated in
// descending order so earlier offsets stay valid. An insertion strictly
// inside another edit is written after that edit's replacement.
func (c *Changes) Apply(text string) (string, error) {
	if len(c.edits) == 0 {
		return text, nil
	}
	for _, e := range c.edits {
		if e.Span.End > len(text) {
			return "", fmt.Errorf("replacement %s is past end of text (%d bytes)", e.Span, len(text))
		}
	}

	replaced := make([]string, len(c.edits))
	for i := len(c.edits) - 1; i >= 0; i-- {
		replaced[i] = c.edits[i].produce()
	}

	var b strings.Builder
	pos := 0
	for i, e := range c.edits {
		if e.Span.Start > pos {
			b.WriteString(text[pos:e.Span.Start])
			pos = e.Span.Start
		}
		b.WriteString(replaced[i])
		pos = max(pos, e.Span.End)
	}
	b.WriteString(text[pos:])
	return b.String(), nil
}
