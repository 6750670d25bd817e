package tweaks

import (
	"fmt"
	"strings"

	"github.com/Gaming32/syntax-tweaker/internal/signature"
)

// ReferenceKind is the category of declaration a syntactic reference resolves to.
type ReferenceKind int

const (
	PackageRef ReferenceKind = iota
	ClassRef
	FieldRef
	MethodRef
)

var kindNames = [...]string{"package", "class", "field", "method"}

func (k ReferenceKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ReferenceKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a lowercase kind name.
func ParseKind(s string) (ReferenceKind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return ReferenceKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown reference kind %q", s)
}

// KindOf returns the reference kind matching a member's kind.
func KindOf(m signature.MemberReference) ReferenceKind {
	if m.IsMethod() {
		return MethodRef
	}
	return FieldRef
}

// KindSet is a set of reference kinds.
type KindSet uint8

// AllKinds contains every reference kind.
const AllKinds = KindSet(1<<PackageRef | 1<<ClassRef | 1<<FieldRef | 1<<MethodRef)

// Kinds builds a set from the given kinds.
func Kinds(kinds ...ReferenceKind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k ReferenceKind) bool {
	return s&(1<<k) != 0
}

// List returns the kinds in declaration order.
func (s KindSet) List() []ReferenceKind {
	var out []ReferenceKind
	for k := PackageRef; k <= MethodRef; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// String joins the kind names with ", ". An empty set is "".
func (s KindSet) String() string {
	names := make([]string, 0, 4)
	for _, k := range s.List() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
