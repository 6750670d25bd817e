//go:build !cgo

package javasrc

import (
	"context"

	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// File is one parsed Java compilation unit.
// This is a stub implementation for non-CGO builds.
type File struct {
	Path    string
	Source  []byte
	Package string
}

// Index maps qualified class names to their declarations.
// This is a stub implementation for non-CGO builds.
type Index struct{}

// IsAvailable returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}

// ParseFile always fails with ErrNoCGO.
func ParseFile(ctx context.Context, path string, src []byte) (*File, error) {
	return nil, ErrNoCGO
}

// HasErrors reports false.
func (f *File) HasErrors() bool {
	return false
}

// BuildIndex returns an empty index.
func BuildIndex(files []*File) *Index {
	return &Index{}
}

// Len returns 0.
func (idx *Index) Len() int {
	return 0
}

// Resolve finds nothing.
func Resolve(f *File, idx *Index) []tweaks.Reference {
	return nil
}
