//go:build cgo

package javasrc

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Gaming32/syntax-tweaker/internal/signature"
)

// Local is a local variable or parameter declaration.
type Local struct {
	Name string
	// Type is nil for var and for untyped lambda parameters.
	Type  signature.Type
	Final bool
	Param bool
	// Decl is the declarator or parameter node. Two lookups resolve to the
	// same variable iff their Decl ranges are equal.
	Decl *sitter.Node
	// Init is the initializer expression, if any.
	Init *sitter.Node
	// Scope is the node whose subtree can see the variable.
	Scope *sitter.Node
}

// Same reports whether l and o are the same declaration.
func (l *Local) Same(o *Local) bool {
	return l != nil && o != nil && keyOf(l.Decl) == keyOf(o.Decl)
}

// LookupLocal resolves an identifier to the local variable or parameter it
// names, or nil if it names something else (a field, a class).
func (f *File) LookupLocal(ident *sitter.Node) *Local {
	key := keyOf(ident)
	if l, ok := f.locals.Get(key); ok {
		return l
	}
	l := f.lookupLocal(ident)
	f.locals.Add(key, l)
	return l
}

func (f *File) lookupLocal(ident *sitter.Node) *Local {
	if ident.Type() != "identifier" {
		return nil
	}
	name := f.Text(ident)
	use := ident.StartByte()

	for n := ident.Parent(); n != nil; n = n.Parent() {
		switch n.Type() {
		case "block", "constructor_body", "switch_block_statement_group", "switch_rule":
			var found *Local
			for i := 0; i < int(n.NamedChildCount()); i++ {
				stmt := n.NamedChild(i)
				if stmt.StartByte() >= use {
					break
				}
				if stmt.Type() == "local_variable_declaration" {
					if l := f.declared(stmt, name, n); l != nil {
						found = l
					}
				}
			}
			if found != nil {
				return found
			}
		case "for_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				init := n.NamedChild(i)
				if init.Type() == "local_variable_declaration" && init.EndByte() <= use {
					if l := f.declared(init, name, n); l != nil {
						return l
					}
				}
			}
		case "enhanced_for_statement":
			if nm := n.ChildByFieldName("name"); nm != nil && f.Text(nm) == name {
				return &Local{
					Name:  name,
					Type:  f.typeOf(n.ChildByFieldName("type")),
					Final: hasModifier(f, n, "final"),
					Decl:  nm,
					Scope: n,
				}
			}
		case "catch_clause":
			if p := firstNamed(n, "catch_formal_parameter"); p != nil {
				if nm := p.ChildByFieldName("name"); nm != nil && f.Text(nm) == name {
					return &Local{Name: name, Final: hasModifier(f, p, "final"), Param: true, Decl: p, Scope: n}
				}
			}
		case "try_with_resources_statement":
			if spec := n.ChildByFieldName("resources"); spec != nil {
				for i := 0; i < int(spec.NamedChildCount()); i++ {
					r := spec.NamedChild(i)
					if nm := r.ChildByFieldName("name"); nm != nil && f.Text(nm) == name && r.EndByte() <= use {
						return &Local{
							Name:  name,
							Type:  f.typeOf(r.ChildByFieldName("type")),
							Final: true,
							Decl:  r,
							Init:  r.ChildByFieldName("value"),
							Scope: n,
						}
					}
				}
			}
		case "lambda_expression":
			if l := f.lambdaParam(n, name); l != nil {
				return l
			}
		case "method_declaration", "constructor_declaration":
			if params := n.ChildByFieldName("parameters"); params != nil {
				for _, p := range f.params(params) {
					if p.name == name {
						return &Local{
							Name:  name,
							Type:  p.typ,
							Final: hasModifier(f, p.node, "final"),
							Param: true,
							Decl:  p.node,
							Scope: n.ChildByFieldName("body"),
						}
					}
				}
			}
			return nil
		case "class_body", "interface_body", "enum_body", "program":
			return nil
		}
	}
	return nil
}

// declared finds name among the declarators of a local_variable_declaration.
func (f *File) declared(decl *sitter.Node, name string, scope *sitter.Node) *Local {
	t := f.typeOf(decl.ChildByFieldName("type"))
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		d := decl.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nm := d.ChildByFieldName("name")
		if nm == nil || f.Text(nm) != name {
			continue
		}
		return &Local{
			Name:  name,
			Type:  withDims(t, dimsOf(f, d.ChildByFieldName("dimensions"))),
			Final: hasModifier(f, decl, "final"),
			Decl:  d,
			Init:  d.ChildByFieldName("value"),
			Scope: scope,
		}
	}
	return nil
}

func (f *File) lambdaParam(lambda *sitter.Node, name string) *Local {
	params := lambda.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	body := lambda.ChildByFieldName("body")
	switch params.Type() {
	case "identifier":
		if f.Text(params) == name {
			return &Local{Name: name, Param: true, Decl: params, Scope: body}
		}
	case "inferred_parameters":
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if f.Text(p) == name {
				return &Local{Name: name, Param: true, Decl: p, Scope: body}
			}
		}
	case "formal_parameters":
		for _, p := range f.params(params) {
			if p.name == name {
				return &Local{Name: name, Type: p.typ, Final: hasModifier(f, p.node, "final"), Param: true, Decl: p.node, Scope: body}
			}
		}
	}
	return nil
}

// Assignment is a simple `=` assignment to a local variable.
type Assignment struct {
	Node  *sitter.Node
	Value *sitter.Node
}

// Assignments finds every simple assignment to l inside its scope, in
// source order.
func (f *File) Assignments(l *Local) []Assignment {
	if l == nil || l.Scope == nil {
		return nil
	}
	var out []Assignment
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "assignment_expression" {
			left := n.ChildByFieldName("left")
			op := n.ChildByFieldName("operator")
			if left != nil && op != nil && op.Type() == "=" && left.Type() == "identifier" && f.Text(left) == l.Name {
				if l.Same(f.LookupLocal(left)) {
					out = append(out, Assignment{Node: n, Value: n.ChildByFieldName("right")})
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(l.Scope)
	return out
}
