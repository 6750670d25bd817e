package tweaks

import (
	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/signature"
)

// ParseContext is what a Factory sees when a rule invocation is parsed.
type ParseContext struct {
	// Metadata holds the document metadata declared before the invocation.
	Metadata map[string]string
	Kind     ReferenceKind
	// Owner is a package name or qualified class name.
	Owner string
	// Member is nil for package and class rules.
	Member    *signature.MemberReference
	Args      []string
	NamedArgs map[string]string
}

// NewParseContext validates the kind/member pairing and builds a context with no arguments.
func NewParseContext(metadata map[string]string, kind ReferenceKind, owner string, member *signature.MemberReference) (*ParseContext, error) {
	switch kind {
	case PackageRef, ClassRef:
		if member != nil {
			return nil, errors.Newf(errors.InternalError, "ParseContext for %s reference may not have member %s", kind, member)
		}
	case FieldRef, MethodRef:
		if member == nil {
			return nil, errors.Newf(errors.InternalError, "ParseContext for %s reference requires a member", kind)
		}
		if KindOf(*member) != kind {
			return nil, errors.Newf(errors.InternalError, "ParseContext referenceType (%s) doesn't match member (%s)", kind, member)
		}
	default:
		return nil, errors.Newf(errors.InternalError, "invalid reference kind %d", int(kind))
	}
	return &ParseContext{Metadata: metadata, Kind: kind, Owner: owner, Member: member}, nil
}

// WithArgs returns a copy of the context carrying the given arguments.
func (c *ParseContext) WithArgs(args []string, named map[string]string) *ParseContext {
	out := *c
	out.Args = args
	out.NamedArgs = named
	return &out
}

// HasMetadata reports whether the key was declared.
func (c *ParseContext) HasMetadata(key string) bool {
	_, ok := c.Metadata[key]
	return ok
}

// Named returns a named argument.
func (c *ParseContext) Named(key string) (string, bool) {
	v, ok := c.NamedArgs[key]
	return v, ok
}

// Factory builds a tweak from a parsed invocation. It returns an error for invalid arguments.
type Factory func(ctx *ParseContext) (Tweak, error)
