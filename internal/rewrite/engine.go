package rewrite

import (
	"fmt"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// Engine applies a rule set to resolved references. It holds no per-file
// state and is safe for concurrent use.
type Engine struct {
	Tweaks *tweaks.Set
}

// NewEngine creates an engine for set.
func NewEngine(set *tweaks.Set) *Engine {
	return &Engine{Tweaks: set}
}

// Result is the outcome of rewriting one file.
type Result struct {
	// Changed reports whether any edit was registered, even one that
	// reproduces the original text.
	Changed bool
	Text    string
	Edits   []Edit
}

// Rewrite dispatches every reference to the tweaks registered for it and
// renders the edited text. A tweak that breaks its contract aborts the file
// with an INTERNAL error.
func (e *Engine) Rewrite(text []byte, refs []tweaks.Reference) (res *Result, err error) {
	changes := NewChanges()
	defer func() {
		if r := recover(); r != nil {
			res = nil
			if cv, ok := r.(*tweaks.ContractViolation); ok {
				err = errors.Wrap(errors.InternalError, "tweak contract violation", cv)
				return
			}
			err = errors.Newf(errors.InternalError, "tweak panicked: %v", r)
		}
	}()

	for _, ref := range refs {
		tweaks.ApplyAll(e.Tweaks.Lookup(ref), ref, changes)
	}

	src := string(text)
	out, err := changes.Apply(src)
	if err != nil {
		return nil, errors.Wrap(errors.InternalError, "applying replacements", err)
	}
	return &Result{
		Changed: changes.Len() > 0,
		Text:    out,
		Edits:   changes.Edits(),
	}, nil
}

// Summary is a one-line description used in logs.
func (r *Result) Summary() string {
	if !r.Changed {
		return "unchanged"
	}
	return fmt.Sprintf("%d replacement(s)", len(r.Edits))
}
