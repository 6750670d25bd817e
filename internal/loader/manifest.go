package loader

import (
	"maps"
	"slices"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// Manifest is the declarative form of a tweaker: rules it derives from
// rules that are already registered.
type Manifest struct {
	// Aliases are registered in order, so an alias may build on an earlier one.
	Aliases []Alias  `toml:"alias" yaml:"alias"`
	Markers []Marker `toml:"marker" yaml:"marker"`
}

// Alias registers ID as Rule with preset arguments. The preset arguments
// come before the ones written in the tweaks file, and written named
// arguments override preset ones.
type Alias struct {
	ID    string            `toml:"id" yaml:"id"`
	Rule  string            `toml:"rule" yaml:"rule"`
	Args  []string          `toml:"args,omitempty" yaml:"args,omitempty"`
	Named map[string]string `toml:"named,omitempty" yaml:"named,omitempty"`
	// Replace overrides the registry's DefaultReplace when set.
	Replace *bool `toml:"replace,omitempty" yaml:"replace,omitempty"`
}

// Marker registers ID as a rule that accepts any arguments and never edits
// anything. Kinds lists the reference kinds it may be declared on.
type Marker struct {
	ID      string   `toml:"id" yaml:"id"`
	Kinds   []string `toml:"kinds,omitempty" yaml:"kinds,omitempty"`
	Replace *bool    `toml:"replace,omitempty" yaml:"replace,omitempty"`
}

// Registrars converts the manifest into one registrar per entry.
func (m *Manifest) Registrars() ([]Registrar, error) {
	var out []Registrar
	for i, a := range m.Aliases {
		if a.ID == "" || a.Rule == "" {
			return nil, errors.Newf(errors.Config, "alias %d needs both id and rule", i)
		}
		out = append(out, a.registrar())
	}
	for i, mk := range m.Markers {
		if mk.ID == "" {
			return nil, errors.Newf(errors.Config, "marker %d needs an id", i)
		}
		var kinds []tweaks.ReferenceKind
		for _, name := range mk.Kinds {
			k, err := tweaks.ParseKind(name)
			if err != nil {
				return nil, errors.Wrap(errors.Config, "marker "+mk.ID, err)
			}
			kinds = append(kinds, k)
		}
		out = append(out, markerRegistrar(mk.ID, tweaks.Kinds(kinds...), mk.Replace))
	}
	return out, nil
}

func register(r *tweaks.Registry, id string, f tweaks.Factory, replace *bool) error {
	if replace != nil {
		return r.RegisterReplace(id, f, *replace)
	}
	return r.Register(id, f)
}

func (a Alias) registrar() Registrar {
	return func(r *tweaks.Registry) error {
		inner, ok := r.Lookup(a.Rule)
		if !ok {
			return errors.Newf(errors.Registry, "alias %s refers to unknown rule %s", a.ID, a.Rule)
		}
		factory := func(ctx *tweaks.ParseContext) (tweaks.Tweak, error) {
			args := append(slices.Clone(a.Args), ctx.Args...)
			named := maps.Clone(a.Named)
			if named == nil {
				named = map[string]string{}
			}
			maps.Copy(named, ctx.NamedArgs)
			t, err := inner(ctx.WithArgs(args, named))
			if err != nil {
				return nil, err
			}
			return &aliasTweak{inner: t, id: a.ID, args: ctx.Args, named: ctx.NamedArgs}, nil
		}
		return register(r, a.ID, factory, a.Replace)
	}
}

// aliasTweak forwards to the rule it was built from but serializes as the
// alias with only the arguments written in the tweaks file.
type aliasTweak struct {
	inner tweaks.Tweak
	id    string
	args  []string
	named map[string]string
}

func (t *aliasTweak) ID() string                            { return t.id }
func (t *aliasTweak) Supports() tweaks.KindSet              { return t.inner.Supports() }
func (t *aliasTweak) SerializeArgs() []string               { return t.args }
func (t *aliasTweak) SerializeNamedArgs() map[string]string { return t.named }

func (t *aliasTweak) ApplyPackage(ref tweaks.Reference, target tweaks.Target) {
	tweaks.Apply(t.inner, ref, target)
}

func (t *aliasTweak) ApplyClass(ref tweaks.Reference, target tweaks.Target) {
	tweaks.Apply(t.inner, ref, target)
}

func (t *aliasTweak) ApplyField(ref tweaks.Reference, target tweaks.Target) {
	tweaks.Apply(t.inner, ref, target)
}

func (t *aliasTweak) ApplyMethod(ref tweaks.Reference, target tweaks.Target) {
	tweaks.Apply(t.inner, ref, target)
}

func markerRegistrar(id string, kinds tweaks.KindSet, replace *bool) Registrar {
	return func(r *tweaks.Registry) error {
		factory := func(ctx *tweaks.ParseContext) (tweaks.Tweak, error) {
			return &markerTweak{id: id, kinds: kinds, args: ctx.Args, named: ctx.NamedArgs}, nil
		}
		return register(r, id, factory, replace)
	}
}

type markerTweak struct {
	id    string
	kinds tweaks.KindSet
	args  []string
	named map[string]string
}

func (t *markerTweak) ID() string                            { return t.id }
func (t *markerTweak) Supports() tweaks.KindSet              { return t.kinds }
func (t *markerTweak) SerializeArgs() []string               { return t.args }
func (t *markerTweak) SerializeNamedArgs() map[string]string { return t.named }

func (t *markerTweak) ApplyPackage(tweaks.Reference, tweaks.Target) {}
func (t *markerTweak) ApplyClass(tweaks.Reference, tweaks.Target)   {}
func (t *markerTweak) ApplyField(tweaks.Reference, tweaks.Target)   {}
func (t *markerTweak) ApplyMethod(tweaks.Reference, tweaks.Target)  {}
