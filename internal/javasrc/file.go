//go:build cgo

package javasrc

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/Gaming32/syntax-tweaker/internal/signature"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// File is one parsed Java compilation unit.
type File struct {
	Path    string
	Source  []byte
	Root    *sitter.Node
	Package string
	Imports []Import
	// Classes holds every named class declared in the file, outer first.
	Classes []*Class

	tree *sitter.Tree
	// locals memoizes LookupLocal by identifier node.
	locals *lru.Cache[nodeKey, *Local]
}

// Import is one import declaration.
type Import struct {
	Name     string
	Static   bool
	Wildcard bool
	Node     *sitter.Node
}

type nodeKey struct {
	start, end uint32
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{n.StartByte(), n.EndByte()}
}

// IsAvailable reports whether Java parsing is compiled in.
func IsAvailable() bool {
	return true
}

// ParseFile parses src. The parser is created per call so files can be
// parsed concurrently.
func ParseFile(ctx context.Context, path string, src []byte) (*File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	memo, err := lru.New[nodeKey, *Local](MemoSize)
	if err != nil {
		return nil, err
	}
	f := &File{
		Path:   path,
		Source: src,
		Root:   tree.RootNode(),
		tree:   tree,
		locals: memo,
	}
	f.readHeader()
	f.collectClasses(f.Root, nil)
	return f, nil
}

// HasErrors reports whether tree-sitter had to recover from syntax errors.
func (f *File) HasErrors() bool {
	return f.Root.HasError()
}

// Text returns the source text of n.
func (f *File) Text(n *sitter.Node) string {
	return n.Content(f.Source)
}

// Span returns the byte range of n.
func Span(n *sitter.Node) tweaks.Span {
	return tweaks.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (f *File) readHeader() {
	for i := 0; i < int(f.Root.NamedChildCount()); i++ {
		child := f.Root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			if name := firstNamed(child, "scoped_identifier", "identifier"); name != nil {
				f.Package = compact(f.Text(name))
			}
		case "import_declaration":
			imp := Import{Node: child}
			for j := 0; j < int(child.ChildCount()); j++ {
				c := child.Child(j)
				switch c.Type() {
				case "static":
					imp.Static = true
				case "asterisk":
					imp.Wildcard = true
				case "scoped_identifier", "identifier":
					imp.Name = compact(f.Text(c))
				}
			}
			if imp.Name != "" {
				f.Imports = append(f.Imports, imp)
			}
		}
	}
}

// typeOf converts a type node to its signature form. Generic arguments are
// dropped and qualified names reduce to their simple name.
func (f *File) typeOf(n *sitter.Node) signature.Type {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		if p, ok := signature.LookupPrimitive(f.Text(n)); ok {
			return p
		}
		return nil
	case "type_identifier":
		return signature.Reference(f.Text(n))
	case "scoped_type_identifier":
		return signature.Reference(simpleName(compact(f.Text(n))))
	case "generic_type":
		if n.NamedChildCount() == 0 {
			return nil
		}
		return f.typeOf(n.NamedChild(0))
	case "array_type":
		return withDims(f.typeOf(n.ChildByFieldName("element")), dimsOf(f, n.ChildByFieldName("dimensions")))
	case "annotated_type":
		// the annotations come first
		return f.typeOf(n.NamedChild(int(n.NamedChildCount()) - 1))
	}
	return nil
}

func withDims(t signature.Type, dims int) signature.Type {
	if t == nil || dims == 0 {
		return t
	}
	if arr, ok := t.(signature.Array); ok {
		dims += arr.Dims
		t = arr.Elem
	}
	arr, err := signature.NewArray(dims, t)
	if err != nil {
		return nil
	}
	return arr
}

func dimsOf(f *File, n *sitter.Node) int {
	if n == nil {
		return 0
	}
	return strings.Count(f.Text(n), "[")
}

func hasModifier(f *File, decl *sitter.Node, modifier string) bool {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		c := decl.NamedChild(i)
		if c.Type() != "modifiers" {
			continue
		}
		for _, word := range strings.Fields(f.Text(c)) {
			if word == modifier {
				return true
			}
		}
	}
	return false
}

func firstNamed(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

// isField reports whether child is the node stored under field name of parent.
func isField(parent *sitter.Node, name string, child *sitter.Node) bool {
	f := parent.ChildByFieldName(name)
	return f != nil && keyOf(f) == keyOf(child) && f.Type() == child.Type()
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func simpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
