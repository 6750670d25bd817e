//go:build cgo

package javasrc

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Gaming32/syntax-tweaker/internal/signature"
)

// Class is a named class, interface, enum or record declaration.
type Class struct {
	// Name is the qualified name, pkg.Outer.Inner.
	Name   string
	Simple string
	// Super is the superclass as written, reduced to a simple name.
	Super string
	Outer *Class
	File  *File
	Node  *sitter.Node

	fields  map[string]signature.Type
	methods map[string][]method
	nested  map[string]*Class
}

type method struct {
	ref     signature.MemberReference
	varargs bool
}

func newClass(f *File, node *sitter.Node, outer *Class) *Class {
	simple := f.Text(node.ChildByFieldName("name"))
	name := simple
	switch {
	case outer != nil:
		name = outer.Name + "." + simple
	case f.Package != "":
		name = f.Package + "." + simple
	}
	c := &Class{
		Name:    name,
		Simple:  simple,
		Outer:   outer,
		File:    f,
		Node:    node,
		fields:  map[string]signature.Type{},
		methods: map[string][]method{},
		nested:  map[string]*Class{},
	}
	if sc := node.ChildByFieldName("superclass"); sc != nil && sc.NamedChildCount() > 0 {
		if t, ok := f.typeOf(sc.NamedChild(0)).(signature.Reference); ok {
			c.Super = string(t)
		}
	}
	if outer != nil {
		outer.nested[simple] = c
	}
	return c
}

func isClassDecl(t string) bool {
	switch t {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

// collectClasses records every named type declaration under n. Local and
// anonymous classes inside method bodies are not indexed.
func (f *File) collectClasses(n *sitter.Node, outer *Class) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if !isClassDecl(child.Type()) {
			continue
		}
		c := newClass(f, child, outer)
		f.Classes = append(f.Classes, c)
		if child.Type() == "record_declaration" {
			f.recordComponents(c, child.ChildByFieldName("parameters"))
		}
		if body := child.ChildByFieldName("body"); body != nil {
			f.collectMembers(c, body)
		}
	}
}

func (f *File) collectMembers(c *Class, body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		decl := body.NamedChild(i)
		switch decl.Type() {
		case "field_declaration", "constant_declaration":
			t := f.typeOf(decl.ChildByFieldName("type"))
			for j := 0; j < int(decl.NamedChildCount()); j++ {
				d := decl.NamedChild(j)
				if d.Type() != "variable_declarator" || t == nil {
					continue
				}
				if ft := withDims(t, dimsOf(f, d.ChildByFieldName("dimensions"))); ft != nil {
					c.fields[f.Text(d.ChildByFieldName("name"))] = ft
				}
			}
		case "method_declaration":
			ret := withDims(f.typeOf(decl.ChildByFieldName("type")), dimsOf(f, decl.ChildByFieldName("dimensions")))
			if ret != nil {
				f.addMethod(c, f.Text(decl.ChildByFieldName("name")), ret, decl.ChildByFieldName("parameters"))
			}
		case "constructor_declaration", "compact_constructor_declaration":
			f.addMethod(c, c.Simple, nil, decl.ChildByFieldName("parameters"))
		case "enum_constant":
			c.fields[f.Text(decl.ChildByFieldName("name"))] = signature.Reference(c.Simple)
		case "enum_body_declarations":
			f.collectMembers(c, decl)
		}
	}
	f.collectClasses(body, c)
}

func (f *File) recordComponents(c *Class, params *sitter.Node) {
	if params == nil {
		return
	}
	for _, p := range f.params(params) {
		c.fields[p.name] = p.typ
		f.addAccessor(c, p.name, p.typ)
	}
	f.addMethod(c, c.Simple, nil, params)
}

func (f *File) addAccessor(c *Class, name string, t signature.Type) {
	m, err := signature.NewMethod(t, nil)
	if err == nil {
		c.methods[name] = append(c.methods[name], method{ref: signature.MemberReference{Name: name, Type: m}})
	}
}

func (f *File) addMethod(c *Class, name string, ret signature.Type, params *sitter.Node) {
	var types []signature.Type
	varargs := false
	if params != nil {
		for _, p := range f.params(params) {
			if p.typ == nil {
				return
			}
			types = append(types, p.typ)
			varargs = p.spread
		}
	}
	m, err := signature.NewMethod(ret, types)
	if err != nil {
		return
	}
	ref := signature.MemberReference{Name: name, Type: m}
	for _, existing := range c.methods[name] {
		if existing.ref.Equal(ref) {
			return
		}
	}
	c.methods[name] = append(c.methods[name], method{ref: ref, varargs: varargs})
}

type param struct {
	name   string
	typ    signature.Type
	spread bool
	node   *sitter.Node
}

// params reads formal_parameters. Varargs become one extra array dimension.
func (f *File) params(n *sitter.Node) []param {
	var out []param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			t := withDims(f.typeOf(p.ChildByFieldName("type")), dimsOf(f, p.ChildByFieldName("dimensions")))
			out = append(out, param{name: f.Text(p.ChildByFieldName("name")), typ: t, node: p})
		case "spread_parameter":
			var t signature.Type
			name := ""
			for j := 0; j < int(p.NamedChildCount()); j++ {
				c := p.NamedChild(j)
				if c.Type() == "variable_declarator" {
					name = f.Text(c.ChildByFieldName("name"))
				} else if t == nil {
					t = f.typeOf(c)
				}
			}
			out = append(out, param{name: name, typ: withDims(t, 1), spread: true, node: p})
		}
	}
	return out
}

// Field returns the type of a field declared directly in c.
func (c *Class) Field(name string) (signature.Type, bool) {
	t, ok := c.fields[name]
	return t, ok
}

// Methods returns the overloads of name declared directly in c.
func (c *Class) Methods(name string) []signature.MemberReference {
	var out []signature.MemberReference
	for _, m := range c.methods[name] {
		out = append(out, m.ref)
	}
	return out
}

// Nested returns a member class of c by simple name.
func (c *Class) Nested(simple string) *Class {
	return c.nested[simple]
}

// Index maps qualified class names to their declarations across files.
type Index struct {
	classes map[string]*Class
}

// BuildIndex indexes the classes of files. A later file wins on a
// duplicate qualified name.
func BuildIndex(files []*File) *Index {
	idx := &Index{classes: map[string]*Class{}}
	for _, f := range files {
		for _, c := range f.Classes {
			idx.classes[c.Name] = c
		}
	}
	return idx
}

// Class returns the class with the given qualified name.
func (idx *Index) Class(name string) *Class {
	if idx == nil {
		return nil
	}
	return idx.classes[name]
}

// Len returns the number of indexed classes.
func (idx *Index) Len() int {
	return len(idx.classes)
}

// superOf resolves the superclass of c.
func (idx *Index) superOf(c *Class) *Class {
	if c.Super == "" {
		return nil
	}
	q, _ := idx.resolveType(c.File, c.Outer, c.Super)
	if q == nil || q == c {
		return nil
	}
	return q
}

// findField searches c and its superclasses. It returns the declaring class.
func (idx *Index) findField(c *Class, name string) (*Class, signature.Type) {
	seen := map[*Class]bool{}
	for ; c != nil && !seen[c]; c = idx.superOf(c) {
		seen[c] = true
		if t, ok := c.fields[name]; ok {
			return c, t
		}
	}
	return nil, nil
}

// candidates collects the overloads of name visible in c and its
// superclasses. A subclass declaration hides an equal one further up.
func (idx *Index) candidates(c *Class, name string) []ownedMethod {
	var out []ownedMethod
	seen := map[*Class]bool{}
	for ; c != nil && !seen[c]; c = idx.superOf(c) {
		seen[c] = true
	next:
		for _, m := range c.methods[name] {
			for _, o := range out {
				if o.ref.Equal(m.ref) {
					continue next
				}
			}
			out = append(out, ownedMethod{method: m, owner: c})
		}
	}
	return out
}

type ownedMethod struct {
	method
	owner *Class
}

// resolveType resolves a simple or qualified class name as seen from scope
// (nil for file level) in f. It returns the indexed class if there is one
// and the qualified name either way; "" means the name is unknown.
func (idx *Index) resolveType(f *File, scope *Class, name string) (*Class, string) {
	if name == "" {
		return nil, ""
	}
	first, rest, _ := strings.Cut(name, ".")

	base, qualified := idx.resolveSimple(f, scope, first)
	if base == nil && qualified == "" {
		if rest == "" {
			return nil, ""
		}
		// fully qualified name
		if c := idx.Class(name); c != nil {
			return c, name
		}
		if last := simpleName(name); last != "" && unicode.IsUpper([]rune(last)[0]) {
			return nil, name
		}
		return nil, ""
	}
	for rest != "" {
		var seg string
		seg, rest, _ = strings.Cut(rest, ".")
		qualified += "." + seg
		if base != nil {
			base = base.nested[seg]
		}
	}
	return base, qualified
}

func (idx *Index) resolveSimple(f *File, scope *Class, simple string) (*Class, string) {
	for c := scope; c != nil; c = c.Outer {
		if c.Simple == simple {
			return c, c.Name
		}
		if n := c.nested[simple]; n != nil {
			return n, n.Name
		}
	}
	for _, c := range f.Classes {
		if c.Outer == nil && c.Simple == simple {
			return c, c.Name
		}
	}
	for _, imp := range f.Imports {
		if !imp.Static && !imp.Wildcard && simpleName(imp.Name) == simple {
			return idx.Class(imp.Name), imp.Name
		}
	}
	samePackage := simple
	if f.Package != "" {
		samePackage = f.Package + "." + simple
	}
	if c := idx.Class(samePackage); c != nil {
		return c, c.Name
	}
	for _, imp := range f.Imports {
		if imp.Wildcard && !imp.Static {
			if c := idx.Class(imp.Name + "." + simple); c != nil {
				return c, c.Name
			}
		}
	}
	return nil, ""
}
