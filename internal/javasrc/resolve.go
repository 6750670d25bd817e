//go:build cgo

package javasrc

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Gaming32/syntax-tweaker/internal/signature"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// Site is the Syntax handle carried by every resolved reference.
type Site struct {
	File *File
	// Node is the referencing expression: an identifier or field_access for
	// fields, the call or creation expression for methods.
	Node *sitter.Node
}

// SiteOf extracts the Site from a reference produced by Resolve.
func SiteOf(ref tweaks.Reference) (Site, bool) {
	s, ok := ref.Syntax.(Site)
	return s, ok && s.File != nil && s.Node != nil
}

// AssignedValue returns the right-hand side when the site is the target of
// a simple `=` assignment, and nil otherwise.
func (s Site) AssignedValue() *sitter.Node {
	if a := s.Assignment(); a != nil {
		return a.ChildByFieldName("right")
	}
	return nil
}

// Assignment returns the enclosing simple assignment whose left side is the
// site, or nil.
func (s Site) Assignment() *sitter.Node {
	parent := s.Node.Parent()
	if parent == nil || parent.Type() != "assignment_expression" || !isField(parent, "left", s.Node) {
		return nil
	}
	if op := parent.ChildByFieldName("operator"); op == nil || op.Type() != "=" {
		return nil
	}
	return parent
}

// Argument returns call argument i, or nil if there is no such argument.
func (s Site) Argument(i int) *sitter.Node {
	args := arguments(s.Node)
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func arguments(call *sitter.Node) []*sitter.Node {
	list := call.ChildByFieldName("arguments")
	if list == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		if isComment(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment", "comment":
		return true
	}
	return false
}

type resolver struct {
	f       *File
	idx     *Index
	classOf map[nodeKey]*Class
	refs    []tweaks.Reference
}

// Resolve returns the references in f that resolve against idx, ordered by
// position.
func Resolve(f *File, idx *Index) []tweaks.Reference {
	r := &resolver{f: f, idx: idx, classOf: map[nodeKey]*Class{}}
	for _, c := range f.Classes {
		r.classOf[keyOf(c.Node)] = c
	}
	r.walk(f.Root)
	sort.SliceStable(r.refs, func(i, j int) bool {
		a, b := r.refs[i].Span, r.refs[j].Span
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})
	return r.refs
}

func (r *resolver) walk(n *sitter.Node) {
	switch n.Type() {
	case "package_declaration":
		if name := firstNamed(n, "scoped_identifier", "identifier"); name != nil {
			r.emitPackage(r.f.Package, name)
		}
		return
	case "import_declaration":
		r.importRefs(n)
		return
	case "type_identifier":
		parent := n.Parent()
		if parent != nil && (parent.Type() == "scoped_type_identifier" || parent.Type() == "type_parameter") {
			return
		}
		if _, q := r.idx.resolveType(r.f, r.enclosing(n), r.f.Text(n)); q != "" {
			r.emitClass(q, n)
		}
		return
	case "scoped_type_identifier":
		if _, q := r.idx.resolveType(r.f, r.enclosing(n), compact(r.f.Text(n))); q != "" {
			r.emitClass(q, n)
		}
		return
	case "identifier":
		if r.isExpression(n) {
			r.identifier(n)
		}
		return
	case "field_access":
		r.fieldAccess(n)
	case "method_invocation":
		r.invocation(n)
	case "object_creation_expression":
		r.creation(n)
	case "explicit_constructor_invocation":
		r.explicitConstructor(n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		r.walk(n.NamedChild(i))
	}
}

func (r *resolver) emit(ref tweaks.Reference, n *sitter.Node) {
	ref.Span = Span(n)
	ref.Syntax = Site{File: r.f, Node: n}
	r.refs = append(r.refs, ref)
}

func (r *resolver) emitPackage(name string, n *sitter.Node) {
	r.emit(tweaks.Reference{Kind: tweaks.PackageRef, Owner: name}, n)
}

func (r *resolver) emitClass(name string, n *sitter.Node) {
	r.emit(tweaks.Reference{Kind: tweaks.ClassRef, Owner: name}, n)
}

func (r *resolver) emitMember(kind tweaks.ReferenceKind, owner *Class, member signature.MemberReference, n *sitter.Node) {
	r.emit(tweaks.Reference{Kind: kind, Owner: owner.Name, Member: &member}, n)
}

func (r *resolver) importRefs(n *sitter.Node) {
	name := firstNamed(n, "scoped_identifier", "identifier")
	if name == nil {
		return
	}
	text := compact(r.f.Text(name))
	static := false
	wildcard := false
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "static":
			static = true
		case "asterisk":
			wildcard = true
		}
	}

	switch {
	case static:
		// import static a.b.C.m; or import static a.b.C.*;
		cls := name
		if !wildcard {
			cls = name.ChildByFieldName("scope")
		}
		if cls != nil {
			r.emitClass(compact(r.f.Text(cls)), cls)
		}
	case wildcard:
		r.emitPackage(text, name)
	default:
		if scope := name.ChildByFieldName("scope"); scope != nil {
			r.emitPackage(compact(r.f.Text(scope)), scope)
		}
		r.emitClass(text, name)
	}
}

// enclosing returns the innermost indexed class containing n.
func (r *resolver) enclosing(n *sitter.Node) *Class {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if isClassDecl(p.Type()) {
			if c := r.classOf[keyOf(p)]; c != nil {
				return c
			}
		}
	}
	return nil
}

func (r *resolver) isExpression(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "method_invocation":
		return !isField(parent, "name", n)
	case "field_access":
		return !isField(parent, "field", n)
	case "lambda_expression":
		return !isField(parent, "parameters", n)
	case "variable_declarator", "formal_parameter", "catch_formal_parameter", "enhanced_for_statement",
		"resource", "method_declaration", "constructor_declaration", "compact_constructor_declaration",
		"enum_constant", "annotation_type_element_declaration":
		return !isField(parent, "name", n)
	case "scoped_identifier", "package_declaration", "import_declaration", "marker_annotation", "annotation",
		"labeled_statement", "break_statement", "continue_statement", "inferred_parameters", "method_reference",
		"element_value_pair", "module_declaration", "requires_module_directive", "exports_module_directive",
		"opens_module_directive", "uses_module_directive", "provides_module_directive", "spread_parameter",
		"class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
		return false
	}
	return true
}

func (r *resolver) identifier(n *sitter.Node) {
	if r.f.LookupLocal(n) != nil {
		return
	}
	name := r.f.Text(n)
	scope := r.enclosing(n)
	if owner, t := r.fieldInScope(scope, name); owner != nil {
		r.emitMember(tweaks.FieldRef, owner, signature.MemberReference{Name: name, Type: t}, n)
		return
	}
	if _, q := r.idx.resolveType(r.f, scope, name); q != "" {
		r.emitClass(q, n)
	}
}

func (r *resolver) fieldInScope(scope *Class, name string) (*Class, signature.Type) {
	for c := scope; c != nil; c = c.Outer {
		if owner, t := r.idx.findField(c, name); owner != nil {
			return owner, t
		}
	}
	return nil, nil
}

func (r *resolver) fieldAccess(n *sitter.Node) {
	obj := n.ChildByFieldName("object")
	field := n.ChildByFieldName("field")
	if obj == nil || field == nil || field.Type() != "identifier" {
		return
	}
	if cls := r.exprClass(obj); cls != nil {
		name := r.f.Text(field)
		if owner, t := r.idx.findField(cls, name); owner != nil {
			r.emitMember(tweaks.FieldRef, owner, signature.MemberReference{Name: name, Type: t}, n)
			return
		}
	}
	if r.qualifiedName(n) {
		if _, q := r.idx.resolveType(r.f, r.enclosing(n), compact(r.f.Text(n))); q != "" {
			r.emitClass(q, n)
		}
	}
}

// qualifiedName reports whether n is a dotted chain of identifiers whose
// head is neither a local nor a field, so it may spell a class name.
func (r *resolver) qualifiedName(n *sitter.Node) bool {
	for n.Type() == "field_access" {
		n = n.ChildByFieldName("object")
		if n == nil {
			return false
		}
	}
	if n.Type() != "identifier" || r.f.LookupLocal(n) != nil {
		return false
	}
	owner, _ := r.fieldInScope(r.enclosing(n), r.f.Text(n))
	return owner == nil
}

// exprClass returns the indexed class an expression evaluates to, or for a
// class name, the class itself.
func (r *resolver) exprClass(n *sitter.Node) *Class {
	scope := r.enclosing(n)
	switch n.Type() {
	case "this":
		return scope
	case "super":
		if scope == nil {
			return nil
		}
		return r.idx.superOf(scope)
	case "parenthesized_expression":
		if n.NamedChildCount() == 0 {
			return nil
		}
		return r.exprClass(n.NamedChild(0))
	case "cast_expression", "object_creation_expression":
		return r.typeClass(n.ChildByFieldName("type"), scope)
	case "identifier":
		if l := r.f.LookupLocal(n); l != nil {
			return r.classOfType(l.Type, scope)
		}
		if owner, t := r.fieldInScope(scope, r.f.Text(n)); owner != nil {
			return r.classOfType(t, owner)
		}
		c, _ := r.idx.resolveType(r.f, scope, r.f.Text(n))
		return c
	case "field_access":
		obj, field := n.ChildByFieldName("object"), n.ChildByFieldName("field")
		if obj != nil && field != nil {
			if cls := r.exprClass(obj); cls != nil {
				if owner, t := r.idx.findField(cls, r.f.Text(field)); owner != nil {
					return r.classOfType(t, owner)
				}
			}
		}
		if r.qualifiedName(n) {
			c, _ := r.idx.resolveType(r.f, scope, compact(r.f.Text(n)))
			return c
		}
	case "method_invocation":
		if m, _ := r.resolveCall(n); m != nil {
			if mt, ok := m.ref.Type.(signature.Method); ok {
				return r.classOfType(mt.Return, m.owner)
			}
		}
	}
	return nil
}

func (r *resolver) classOfType(t signature.Type, scope *Class) *Class {
	ref, ok := t.(signature.Reference)
	if !ok {
		return nil
	}
	file := r.f
	if scope != nil {
		file = scope.File
	}
	c, _ := r.idx.resolveType(file, scope, string(ref))
	return c
}

func (r *resolver) typeClass(typ *sitter.Node, scope *Class) *Class {
	if typ == nil {
		return nil
	}
	if typ.Type() == "generic_type" && typ.NamedChildCount() > 0 {
		typ = typ.NamedChild(0)
	}
	c, _ := r.idx.resolveType(r.f, scope, compact(r.f.Text(typ)))
	return c
}

func (r *resolver) invocation(n *sitter.Node) {
	if m, _ := r.resolveCall(n); m != nil {
		r.emitMember(tweaks.MethodRef, m.owner, m.ref, n)
	}
}

// resolveCall picks the method a method_invocation calls.
func (r *resolver) resolveCall(n *sitter.Node) (*ownedMethod, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil, false
	}
	name := r.f.Text(nameNode)
	args := arguments(n)

	if obj := n.ChildByFieldName("object"); obj != nil {
		cls := r.exprClass(obj)
		if cls == nil {
			return nil, false
		}
		return r.selectOverload(r.idx.candidates(cls, name), args), true
	}
	for c := r.enclosing(n); c != nil; c = c.Outer {
		if cands := r.idx.candidates(c, name); len(cands) > 0 {
			return r.selectOverload(cands, args), true
		}
	}
	return nil, false
}

func (r *resolver) creation(n *sitter.Node) {
	cls := r.typeClass(n.ChildByFieldName("type"), r.enclosing(n))
	if cls == nil {
		return
	}
	r.constructorCall(cls, n)
}

func (r *resolver) explicitConstructor(n *sitter.Node) {
	scope := r.enclosing(n)
	if scope == nil {
		return
	}
	ctor := n.ChildByFieldName("constructor")
	if ctor == nil {
		return
	}
	cls := scope
	if ctor.Type() == "super" {
		cls = r.idx.superOf(scope)
	}
	if cls != nil {
		r.constructorCall(cls, n)
	}
}

func (r *resolver) constructorCall(cls *Class, n *sitter.Node) {
	args := arguments(n)
	var cands []ownedMethod
	for _, m := range cls.methods[cls.Simple] {
		if mt, ok := m.ref.Type.(signature.Method); ok && mt.IsConstructor() {
			cands = append(cands, ownedMethod{method: m, owner: cls})
		}
	}
	if len(cands) == 0 && len(args) == 0 && cls.Node.Type() == "class_declaration" {
		def, _ := signature.NewMethod(nil, nil)
		r.emitMember(tweaks.MethodRef, cls, signature.MemberReference{Name: cls.Simple, Type: def}, n)
		return
	}
	if m := r.selectOverload(cands, args); m != nil {
		r.emitMember(tweaks.MethodRef, cls, m.ref, n)
	}
}

// selectOverload narrows candidates by arity and then by the argument types
// that can be inferred. It returns nil unless exactly one remains.
func (r *resolver) selectOverload(cands []ownedMethod, args []*sitter.Node) *ownedMethod {
	var byArity []ownedMethod
	for _, c := range cands {
		mt := c.ref.Type.(signature.Method)
		n := len(mt.Params)
		if n == len(args) || (c.varargs && len(args) >= n-1) {
			byArity = append(byArity, c)
		}
	}
	if len(byArity) == 1 {
		return &byArity[0]
	}

	argTypes := make([]signature.Type, len(args))
	for i, a := range args {
		argTypes[i] = r.argType(a)
	}
	var byType []ownedMethod
	for _, c := range byArity {
		if r.accepts(c, argTypes) {
			byType = append(byType, c)
		}
	}
	if len(byType) == 1 {
		return &byType[0]
	}
	// an exact match beats widening
	var exact []ownedMethod
	for _, c := range byType {
		params := c.ref.Type.(signature.Method).Params
		if len(params) != len(argTypes) {
			continue
		}
		ok := true
		for i, p := range params {
			if argTypes[i] == nil || !signature.Equal(p, argTypes[i]) {
				ok = false
				break
			}
		}
		if ok {
			exact = append(exact, c)
		}
	}
	if len(exact) == 1 {
		return &exact[0]
	}
	return nil
}

func (r *resolver) accepts(c ownedMethod, args []signature.Type) bool {
	params := c.ref.Type.(signature.Method).Params
	for i, a := range args {
		var p signature.Type
		switch {
		case i < len(params)-1 || (i == len(params)-1 && !c.varargs):
			p = params[i]
		case c.varargs:
			last := params[len(params)-1].(signature.Array)
			if len(args) == len(params) && compatible(last, a) {
				continue
			}
			p = withDims(last.Elem, last.Dims-1)
		default:
			return false
		}
		if !compatible(p, a) {
			return false
		}
	}
	return true
}

// argType infers the static type of simple argument expressions. It
// returns nil when unknown.
func (r *resolver) argType(n *sitter.Node) signature.Type {
	switch n.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if strings.HasSuffix(strings.ToLower(r.f.Text(n)), "l") {
			return signature.Long
		}
		return signature.Int
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		if strings.HasSuffix(strings.ToLower(r.f.Text(n)), "f") {
			return signature.Float
		}
		return signature.Double
	case "true", "false":
		return signature.Boolean
	case "character_literal":
		return signature.Char
	case "string_literal", "text_block":
		return signature.Reference("String")
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return r.argType(n.NamedChild(0))
		}
	case "unary_expression":
		op, operand := n.ChildByFieldName("operator"), n.ChildByFieldName("operand")
		if op != nil && operand != nil && (op.Type() == "-" || op.Type() == "+") {
			return r.argType(operand)
		}
	case "cast_expression":
		return r.f.typeOf(n.ChildByFieldName("type"))
	case "object_creation_expression":
		return r.f.typeOf(n.ChildByFieldName("type"))
	case "identifier":
		if l := r.f.LookupLocal(n); l != nil {
			return l.Type
		}
		if owner, t := r.fieldInScope(r.enclosing(n), r.f.Text(n)); owner != nil {
			return t
		}
	case "field_access":
		obj, field := n.ChildByFieldName("object"), n.ChildByFieldName("field")
		if obj == nil || field == nil {
			return nil
		}
		if cls := r.exprClass(obj); cls != nil {
			if _, t := r.idx.findField(cls, r.f.Text(field)); t != nil {
				return t
			}
		}
	}
	return nil
}

var widening = map[signature.Primitive][]signature.Primitive{
	signature.Byte:  {signature.Short, signature.Int, signature.Long, signature.Float, signature.Double},
	signature.Short: {signature.Int, signature.Long, signature.Float, signature.Double},
	signature.Char:  {signature.Int, signature.Long, signature.Float, signature.Double},
	signature.Int:   {signature.Long, signature.Float, signature.Double},
	signature.Long:  {signature.Float, signature.Double},
	signature.Float: {signature.Double},
}

var boxes = map[signature.Primitive]signature.Reference{
	signature.Boolean: "Boolean",
	signature.Byte:    "Byte",
	signature.Short:   "Short",
	signature.Char:    "Character",
	signature.Int:     "Integer",
	signature.Long:    "Long",
	signature.Float:   "Float",
	signature.Double:  "Double",
}

// compatible reports whether an argument of type arg may be passed to a
// parameter of type param. A nil arg is unknown and always compatible.
func compatible(param, arg signature.Type) bool {
	if arg == nil || signature.Equal(param, arg) {
		return true
	}
	if param == signature.Reference("Object") {
		_, isPrim := arg.(signature.Primitive)
		_, isRef := arg.(signature.Reference)
		_, isArr := arg.(signature.Array)
		return isPrim || isRef || isArr
	}
	switch p := param.(type) {
	case signature.Primitive:
		a, ok := arg.(signature.Primitive)
		if !ok {
			return false
		}
		for _, w := range widening[a] {
			if w == p {
				return true
			}
		}
	case signature.Reference:
		if a, ok := arg.(signature.Primitive); ok {
			return boxes[a] == p || (p == "Number" && a != signature.Boolean && a != signature.Char)
		}
		// no class hierarchy for library types, so any reference may fit
		_, ok := arg.(signature.Reference)
		return ok
	}
	return false
}
