package tweaks

import (
	"maps"
	"slices"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
)

// ReservedKeys can never be registered; they are keywords of the tweaks grammar.
var ReservedKeys = map[string]struct{}{
	"member": {},
}

// Registry maps rule ids to factories.
type Registry struct {
	factories map[string]Factory
	// DefaultReplace is the replace policy used by Register.
	DefaultReplace bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory using the registry's DefaultReplace policy.
func (r *Registry) Register(key string, factory Factory) error {
	return r.RegisterReplace(key, factory, r.DefaultReplace)
}

// RegisterReplace adds a factory. Without replace, an existing key is an error.
func (r *Registry) RegisterReplace(key string, factory Factory, replace bool) error {
	if _, reserved := ReservedKeys[key]; reserved {
		return errors.Newf(errors.Registry, "Reserved tweak key: %s", key)
	}
	if factory == nil {
		return errors.Newf(errors.Registry, "nil factory for %q", key)
	}
	if _, exists := r.factories[key]; exists && !replace {
		return errors.Newf(errors.Registry, "Attempted re-register of %q", key)
	}
	r.factories[key] = factory
	return nil
}

// Lookup returns the factory for key.
func (r *Registry) Lookup(key string) (Factory, bool) {
	f, ok := r.factories[key]
	return f, ok
}

// Keys returns the registered ids, sorted.
func (r *Registry) Keys() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	return len(r.factories)
}

// Parse builds the tweak for an invocation. args[0] is the rule id. An
// unknown id yields (nil, nil) so the caller can decide whether to skip it.
func (r *Registry) Parse(ctx *ParseContext, args []string, named map[string]string) (Tweak, error) {
	if len(args) == 0 {
		return nil, errors.New(errors.RuleValidation, "Tweak line cannot be empty")
	}
	factory, ok := r.factories[args[0]]
	if !ok {
		return nil, nil
	}
	if named == nil {
		named = map[string]string{}
	}
	t, err := factory(ctx.WithArgs(args[1:], named))
	if err != nil {
		if _, ok := err.(*errors.Error); ok {
			return nil, err
		}
		return nil, errors.New(errors.RuleValidation, err.Error())
	}
	if t == nil {
		return nil, errors.Newf(errors.InternalError, "factory for %s returned no tweak", args[0])
	}
	if supported := t.Supports(); !supported.Has(ctx.Kind) {
		return nil, errors.Newf(errors.RuleValidation,
			"Reference type '%s' not supported by %s. The following reference types are supported: %s",
			ctx.Kind, args[0], supported)
	}
	return t, nil
}

// Copy returns an independent registry with the same entries and policy.
func (r *Registry) Copy() *Registry {
	return &Registry{
		factories:      maps.Clone(r.factories),
		DefaultReplace: r.DefaultReplace,
	}
}
