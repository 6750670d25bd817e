// Package tweaks defines tweak rules, the registry that builds them from
// tweak-file invocations, and the rule set they are collected into.
package tweaks

import (
	"fmt"

	"github.com/Gaming32/syntax-tweaker/internal/signature"
)

// Tweak is a configured rule bound to a reference kind and, for fields and
// methods, a member. A tweak implements the apply interface of every kind
// it reports in Supports.
type Tweak interface {
	// ID is the registry key the tweak serializes under. Anonymous tweaks
	// return "" and are never written.
	ID() string
	Supports() KindSet
	SerializeArgs() []string
	SerializeNamedArgs() map[string]string
}

// PackageTweak handles references to packages.
type PackageTweak interface {
	Tweak
	ApplyPackage(ref Reference, target Target)
}

// ClassTweak handles references to classes.
type ClassTweak interface {
	Tweak
	ApplyClass(ref Reference, target Target)
}

// FieldTweak handles references to fields.
type FieldTweak interface {
	Tweak
	ApplyField(ref Reference, target Target)
}

// MethodTweak handles references to methods and constructors.
type MethodTweak interface {
	Tweak
	ApplyMethod(ref Reference, target Target)
}

// Span is a half-open byte range over the original source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// IntersectsStrict reports whether the spans share interior, not just an endpoint.
func (s Span) IntersectsStrict(o Span) bool {
	return max(s.Start, o.Start) < min(s.End, o.End)
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Target receives the replacements a tweak proposes for one file.
type Target interface {
	// CanReplace reports whether no registered edit strictly intersects span.
	CanReplace(span Span) bool
	// Replace registers an edit. produce is called once when the file is rendered.
	Replace(span Span, produce func() string)
}

// ReplaceText registers a constant replacement.
func ReplaceText(target Target, span Span, text string) {
	target.Replace(span, func() string { return text })
}

// Reference is one resolved syntactic reference in a source file.
type Reference struct {
	Kind ReferenceKind
	// Owner is the package name for package references and the qualified
	// class name otherwise.
	Owner string
	// Member is set for field and method references.
	Member *signature.MemberReference
	Span   Span
	// Syntax is the resolver's handle on the referencing node.
	Syntax any
}

// ContractViolation is the panic value raised when a tweak is applied to a
// kind it cannot handle.
type ContractViolation struct {
	Message string
}

func (c *ContractViolation) Error() string {
	return c.Message
}

// Apply dispatches ref to the matching apply method of t. It panics with a
// *ContractViolation if t does not support the kind or claims support
// without implementing it.
func Apply(t Tweak, ref Reference, target Target) {
	if !t.Supports().Has(ref.Kind) {
		panic(&ContractViolation{fmt.Sprintf("%s doesn't support %s reference tweaking", describe(t), ref.Kind)})
	}
	switch ref.Kind {
	case PackageRef:
		if pt, ok := t.(PackageTweak); ok {
			pt.ApplyPackage(ref, target)
			return
		}
	case ClassRef:
		if ct, ok := t.(ClassTweak); ok {
			ct.ApplyClass(ref, target)
			return
		}
	case FieldRef:
		if ft, ok := t.(FieldTweak); ok {
			ft.ApplyField(ref, target)
			return
		}
	case MethodRef:
		if mt, ok := t.(MethodTweak); ok {
			mt.ApplyMethod(ref, target)
			return
		}
	}
	panic(&ContractViolation{fmt.Sprintf("%s claims it supports %s reference tweaking, but it's unimplemented", describe(t), ref.Kind)})
}

// ApplyAll applies every tweak in order.
func ApplyAll(ts []Tweak, ref Reference, target Target) {
	for _, t := range ts {
		Apply(t, ref, target)
	}
}

func describe(t Tweak) string {
	if id := t.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("%T", t)
}
