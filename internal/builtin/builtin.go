// Package builtin holds the rules every registry starts with.
package builtin

import "github.com/Gaming32/syntax-tweaker/internal/tweaks"

// RegisterDefaults adds the built-in rules to r.
func RegisterDefaults(r *tweaks.Registry) error {
	return r.Register(NumberBaseID, NewNumberBase)
}

// Default returns a new registry holding only the built-in rules.
func Default() *tweaks.Registry {
	r := tweaks.NewRegistry()
	if err := RegisterDefaults(r); err != nil {
		panic(err)
	}
	return r
}

var (
	_ tweaks.FieldTweak  = (*NumberBase)(nil)
	_ tweaks.MethodTweak = (*NumberBase)(nil)
)
