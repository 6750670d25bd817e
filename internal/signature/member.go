package signature

import (
	"strconv"
	"strings"
)

// Kind is the category of declaration a member reference identifies.
type Kind int

const (
	FieldMember Kind = iota
	MethodMember
)

func (k Kind) String() string {
	if k == MethodMember {
		return "method"
	}
	return "field"
}

// MemberReference identifies a field or method within its owner. The type
// distinguishes overloads.
type MemberReference struct {
	Name string
	Type Type
}

// NewMember parses typeText and builds a member reference.
func NewMember(name, typeText string) (MemberReference, error) {
	t, err := ParseType(typeText)
	if err != nil {
		return MemberReference{}, err
	}
	return MemberReference{Name: name, Type: t}, nil
}

// IsMethod reports whether the member is a method or constructor.
func (m MemberReference) IsMethod() bool {
	_, ok := m.Type.(Method)
	return ok
}

// Kind returns MethodMember for methods and FieldMember otherwise.
func (m MemberReference) Kind() Kind {
	if m.IsMethod() {
		return MethodMember
	}
	return FieldMember
}

// Key returns a comparable identity for use as a map key. It is built from
// the type's structure, so reference names containing punctuation cannot
// collide with a different parameter list.
func (m MemberReference) Key() string {
	var b strings.Builder
	writeKey(&b, m.Type)
	return m.Name + "\x00" + b.String()
}

// writeKey encodes t so that every encoding is self-delimiting.
func writeKey(b *strings.Builder, t Type) {
	switch t := t.(type) {
	case Primitive:
		b.WriteString("P" + string(t) + ";")
	case Reference:
		b.WriteString("L" + strconv.Itoa(len(t)) + ":" + string(t))
	case Array:
		b.WriteString("[" + strconv.Itoa(t.Dims) + ":")
		writeKey(b, t.Elem)
	case Method:
		b.WriteString("(" + strconv.Itoa(len(t.Params)) + ":")
		for _, p := range t.Params {
			writeKey(b, p)
		}
		if t.Return == nil {
			b.WriteString("C")
		} else {
			writeKey(b, t.Return)
		}
	}
}

// Equal reports structural equality.
func (m MemberReference) Equal(other MemberReference) bool {
	return m.Name == other.Name && Equal(m.Type, other.Type)
}

func (m MemberReference) String() string {
	method, ok := m.Type.(Method)
	if !ok {
		return m.Type.String() + " " + m.Name
	}
	var b strings.Builder
	if method.Return != nil {
		b.WriteString(method.Return.String())
		b.WriteByte(' ')
	}
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range method.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}
