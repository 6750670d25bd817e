//go:build !cgo

package builtin

import "github.com/Gaming32/syntax-tweaker/internal/tweaks"

// ApplyField does nothing without Java parsing.
func (t *NumberBase) ApplyField(ref tweaks.Reference, target tweaks.Target) {}

// ApplyMethod does nothing without Java parsing.
func (t *NumberBase) ApplyMethod(ref tweaks.Reference, target tweaks.Target) {}
