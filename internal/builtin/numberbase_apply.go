//go:build cgo

package builtin

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Gaming32/syntax-tweaker/internal/javasrc"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// ApplyField rewrites the right side of `field = value`.
func (t *NumberBase) ApplyField(ref tweaks.Reference, target tweaks.Target) {
	site, ok := javasrc.SiteOf(ref)
	if !ok {
		return
	}
	if value := site.AssignedValue(); value != nil {
		t.applyExpr(site.File, value, target, map[tweaks.Span]bool{})
	}
}

// ApplyMethod rewrites argument Param of a call.
func (t *NumberBase) ApplyMethod(ref tweaks.Reference, target tweaks.Target) {
	site, ok := javasrc.SiteOf(ref)
	if !ok {
		return
	}
	if arg := site.Argument(t.Param); arg != nil {
		t.applyExpr(site.File, arg, target, map[tweaks.Span]bool{})
	}
}

// applyExpr rewrites a literal, a signed literal, or with TargetVariables a
// local variable's values. visited holds the declarations already followed.
func (t *NumberBase) applyExpr(f *javasrc.File, expr *sitter.Node, target tweaks.Target, visited map[tweaks.Span]bool) {
	switch expr.Type() {
	case "identifier":
		if t.TargetVariables {
			t.applyVariable(f, expr, target, visited)
		}
	case "unary_expression":
		op := expr.ChildByFieldName("operator")
		operand := expr.ChildByFieldName("operand")
		if op == nil || operand == nil || !isIntLiteral(operand) {
			return
		}
		switch op.Type() {
		case "+":
			t.replace(f, operand, operand, false, target)
		case "-":
			t.replace(f, expr, operand, true, target)
		}
	default:
		if isIntLiteral(expr) {
			t.replace(f, expr, expr, false, target)
		}
	}
}

func (t *NumberBase) applyVariable(f *javasrc.File, use *sitter.Node, target tweaks.Target, visited map[tweaks.Span]bool) {
	l := f.LookupLocal(use)
	if l == nil {
		return
	}
	decl := javasrc.Span(l.Decl)
	if visited[decl] {
		return
	}
	visited[decl] = true

	if l.Init != nil {
		t.applyExpr(f, l.Init, target, visited)
	}
	if l.Final {
		return
	}
	for _, a := range f.Assignments(l) {
		if a.Value == nil || javasrc.Span(a.Node.ChildByFieldName("left")) == javasrc.Span(use) {
			continue
		}
		t.applyExpr(f, a.Value, target, visited)
	}
}

// replace swaps the span of node for literal rendered in the target base.
func (t *NumberBase) replace(f *javasrc.File, node, literal *sitter.Node, negative bool, target tweaks.Target) {
	span := javasrc.Span(node)
	if !target.CanReplace(span) {
		return
	}
	text, ok := Convert(f.Text(literal), negative, t.Target)
	if !ok {
		return
	}
	// keep `a - -5` from becoming `a--5`
	if text[0] == '-' && span.Start > 0 {
		if prev := f.Source[span.Start-1]; prev == '-' || prev == '+' {
			text = " " + text
		}
	}
	tweaks.ReplaceText(target, span, text)
}

func isIntLiteral(n *sitter.Node) bool {
	switch n.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		return true
	}
	return false
}
