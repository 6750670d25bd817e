// Package javasrc resolves the package, class, field and method references
// in Java source files. Resolution is syntactic: declarations come from the
// parsed sources only, and anything that needs a real type checker is left
// unresolved.
package javasrc

import "errors"

// Extension is the file suffix of Java sources.
const Extension = ".java"

// MemoSize bounds the per-file resolution side table.
const MemoSize = 4096

// ErrNoCGO is returned when Java parsing is unavailable due to missing CGO.
var ErrNoCGO = errors.New("java parsing requires CGO (tree-sitter)")
