// Package signature models the types and member identities that tweak rules are keyed by.
package signature

import (
	"fmt"
	"strings"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
)

// MaxDimensions is the largest array rank a type may have.
const MaxDimensions = 255

// Type is one of Primitive, Reference, Array or Method.
type Type interface {
	// String returns the canonical textual form, which ParseType accepts.
	String() string
	isType()
}

// Primitive is a built-in Java type.
type Primitive string

const (
	Void    Primitive = "void"
	Byte    Primitive = "byte"
	Boolean Primitive = "boolean"
	Short   Primitive = "short"
	Char    Primitive = "char"
	Int     Primitive = "int"
	Float   Primitive = "float"
	Long    Primitive = "long"
	Double  Primitive = "double"
)

var primitives = map[string]Primitive{
	"void":    Void,
	"byte":    Byte,
	"boolean": Boolean,
	"short":   Short,
	"char":    Char,
	"int":     Int,
	"float":   Float,
	"long":    Long,
	"double":  Double,
}

// LookupPrimitive returns the primitive with the given keyword.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitives[name]
	return p, ok
}

func (p Primitive) String() string { return string(p) }
func (Primitive) isType()          {}

// Reference is a class type. Name is whatever the rule author wrote; the
// resolver emits simple names.
type Reference string

func (r Reference) String() string { return string(r) }
func (Reference) isType()          {}

// Array is an array of Dims dimensions over a non-array element type.
type Array struct {
	Dims int
	Elem Type
}

// NewArray validates and builds an array type.
func NewArray(dims int, elem Type) (Array, error) {
	if dims < 1 || dims > MaxDimensions {
		return Array{}, errors.Newf(errors.InvalidType, "dimensions must be in 1..%d (was %d)", MaxDimensions, dims)
	}
	switch elem.(type) {
	case nil:
		return Array{}, errors.New(errors.InvalidType, "element type may not be missing")
	case Array:
		return Array{}, errors.New(errors.InvalidType, "element type may not be another array type")
	case Method:
		return Array{}, errors.New(errors.InvalidType, "element type may not be a method type")
	}
	if elem == Void {
		return Array{}, errors.New(errors.InvalidType, "element type may not be void")
	}
	return Array{Dims: dims, Elem: elem}, nil
}

func (a Array) String() string {
	return a.Elem.String() + strings.Repeat("[]", a.Dims)
}
func (Array) isType() {}

// Method is a method descriptor. Return is nil for constructors.
type Method struct {
	Return Type
	Params []Type
}

// NewMethod validates and builds a method type. An empty parameter list is stored as nil.
func NewMethod(ret Type, params []Type) (Method, error) {
	for i, p := range params {
		if p == nil {
			return Method{}, errors.Newf(errors.InvalidType, "param %d is missing", i)
		}
		if p == Void {
			return Method{}, errors.Newf(errors.InvalidType, "param %d cannot be void", i)
		}
		if _, ok := p.(Method); ok {
			return Method{}, errors.Newf(errors.InvalidType, "param %d cannot be a method type", i)
		}
	}
	if _, ok := ret.(Method); ok {
		return Method{}, errors.New(errors.InvalidType, "return type cannot be a method type")
	}
	if len(params) == 0 {
		params = nil
	}
	return Method{Return: ret, Params: params}, nil
}

// IsConstructor reports whether the method has no return type.
func (m Method) IsConstructor() bool {
	return m.Return == nil
}

func (m Method) String() string {
	var b strings.Builder
	if m.Return != nil {
		b.WriteString(m.Return.String())
	}
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}
func (Method) isType() {}

// Equal reports whether two types are structurally identical.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case Array:
		bt, ok := b.(Array)
		return ok && at.Dims == bt.Dims && Equal(at.Elem, bt.Elem)
	case Method:
		bt, ok := b.(Method)
		if !ok || len(at.Params) != len(bt.Params) || !Equal(at.Return, bt.Return) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// ParseType parses the canonical textual form of a type.
func ParseType(text string) (Type, error) {
	t, err := parseType(text)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Details == nil {
			e.WithDetails(text)
		}
		return nil, err
	}
	return t, nil
}

// MustParseType is like ParseType but panics on error. Intended for tests and literals.
func MustParseType(text string) Type {
	t, err := ParseType(text)
	if err != nil {
		panic(err)
	}
	return t
}

func parseType(text string) (Type, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.Newf(errors.InvalidType, "Type %q may not be blank", text)
	}

	if open := strings.IndexByte(trimmed, '('); open != -1 {
		return parseMethod(trimmed, open)
	}

	if strings.HasSuffix(trimmed, "[]") {
		dims := 0
		for strings.HasSuffix(trimmed, "[]") {
			dims++
			trimmed = strings.TrimRightFunc(trimmed[:len(trimmed)-2], isSpace)
		}
		elem, err := parseType(trimmed)
		if err != nil {
			return nil, err
		}
		arr, err := NewArray(dims, elem)
		if err != nil {
			return nil, wrapType(text, err)
		}
		return arr, nil
	}

	if p, ok := primitives[trimmed]; ok {
		return p, nil
	}
	return Reference(trimmed), nil
}

func parseMethod(trimmed string, open int) (Type, error) {
	end := strings.IndexByte(trimmed[open+1:], ')')
	if end == -1 {
		return nil, errors.Newf(errors.InvalidType, "Method type %s has no ending parenthesis", trimmed)
	}
	end += open + 1
	if end != len(trimmed)-1 {
		return nil, errors.Newf(errors.InvalidType, "Method type %s has trailing data: %s", trimmed, trimmed[end+1:])
	}

	var ret Type
	if open > 0 {
		t, err := parseType(trimmed[:open])
		if err != nil {
			return nil, err
		}
		ret = t
	}

	var params []Type
	for index := open + 1; index < end; {
		paramEnd := strings.IndexByte(trimmed[index:end], ',')
		if paramEnd == -1 {
			paramEnd = end
		} else {
			paramEnd += index
		}
		p, err := parseType(trimmed[index:paramEnd])
		if err != nil {
			return nil, err
		}
		params = append(params, p)
		index = paramEnd + 1
	}

	m, err := NewMethod(ret, params)
	if err != nil {
		return nil, wrapType(trimmed, err)
	}
	return m, nil
}

func wrapType(text string, err error) error {
	if e, ok := err.(*errors.Error); ok {
		e.Message = fmt.Sprintf("Type %s: %s", strings.TrimSpace(text), e.Message)
		return e
	}
	return err
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}
