package tweaks

import (
	"github.com/Gaming32/syntax-tweaker/internal/signature"
)

// MetadataEntry is one document-level directive.
type MetadataEntry struct {
	Key   string
	Value string
}

// PackageTweaks holds the tweaks declared in one package block.
type PackageTweaks struct {
	Name   string
	Tweaks []Tweak
}

// MemberTweaks holds the tweaks declared for one member of a class.
type MemberTweaks struct {
	Member signature.MemberReference
	Tweaks []Tweak
}

// ClassTweaks holds the class-level and per-member tweaks of one class.
// Members keep declaration order.
type ClassTweaks struct {
	Name      string
	Tweaks    []Tweak
	members   []*MemberTweaks
	memberIdx map[string]int
}

// NewClassTweaks creates an empty class entry.
func NewClassTweaks(name string) *ClassTweaks {
	return &ClassTweaks{Name: name, memberIdx: make(map[string]int)}
}

// AddTweaks appends class-level tweaks.
func (c *ClassTweaks) AddTweaks(ts ...Tweak) {
	c.Tweaks = append(c.Tweaks, ts...)
}

// AddMemberTweaks appends tweaks for a member, declaring it if needed.
func (c *ClassTweaks) AddMemberTweaks(member signature.MemberReference, ts ...Tweak) {
	key := member.Key()
	if i, ok := c.memberIdx[key]; ok {
		c.members[i].Tweaks = append(c.members[i].Tweaks, ts...)
		return
	}
	c.memberIdx[key] = len(c.members)
	c.members = append(c.members, &MemberTweaks{Member: member, Tweaks: append([]Tweak(nil), ts...)})
}

// Members returns the member entries in declaration order.
func (c *ClassTweaks) Members() []*MemberTweaks {
	return c.members
}

// Member returns the tweaks declared for member.
func (c *ClassTweaks) Member(member signature.MemberReference) []Tweak {
	if i, ok := c.memberIdx[member.Key()]; ok {
		return c.members[i].Tweaks
	}
	return nil
}

func (c *ClassTweaks) mergeFrom(o *ClassTweaks) {
	c.AddTweaks(o.Tweaks...)
	for _, m := range o.members {
		c.AddMemberTweaks(m.Member, m.Tweaks...)
	}
}

func (c *ClassTweaks) clone() *ClassTweaks {
	out := NewClassTweaks(c.Name)
	out.mergeFrom(c)
	return out
}

// Set is a parsed rule-set document: metadata, package rules and class
// rules, each in declaration order.
type Set struct {
	metadata []MetadataEntry
	metaIdx  map[string]int
	packages []*PackageTweaks
	pkgIdx   map[string]int
	classes  []*ClassTweaks
	classIdx map[string]int
	skipped  []string
}

// NewSet creates an empty document.
func NewSet() *Set {
	return &Set{
		metaIdx:  make(map[string]int),
		pkgIdx:   make(map[string]int),
		classIdx: make(map[string]int),
	}
}

// SetMetadata sets key to value. A new key is appended; an existing key keeps its position.
func (s *Set) SetMetadata(key, value string) {
	if i, ok := s.metaIdx[key]; ok {
		s.metadata[i].Value = value
		return
	}
	s.metaIdx[key] = len(s.metadata)
	s.metadata = append(s.metadata, MetadataEntry{Key: key, Value: value})
}

// Metadata returns the metadata entries in declaration order.
func (s *Set) Metadata() []MetadataEntry {
	return s.metadata
}

// MetadataValue returns the value for key.
func (s *Set) MetadataValue(key string) (string, bool) {
	if i, ok := s.metaIdx[key]; ok {
		return s.metadata[i].Value, true
	}
	return "", false
}

// MetadataMap returns a fresh map of the metadata.
func (s *Set) MetadataMap() map[string]string {
	m := make(map[string]string, len(s.metadata))
	for _, e := range s.metadata {
		m[e.Key] = e.Value
	}
	return m
}

// AddPackageTweaks appends tweaks to a package, declaring it if needed.
func (s *Set) AddPackageTweaks(name string, ts ...Tweak) {
	if i, ok := s.pkgIdx[name]; ok {
		s.packages[i].Tweaks = append(s.packages[i].Tweaks, ts...)
		return
	}
	s.pkgIdx[name] = len(s.packages)
	s.packages = append(s.packages, &PackageTweaks{Name: name, Tweaks: append([]Tweak(nil), ts...)})
}

// Packages returns the package entries in declaration order.
func (s *Set) Packages() []*PackageTweaks {
	return s.packages
}

// Package returns the tweaks declared for a package.
func (s *Set) Package(name string) []Tweak {
	if i, ok := s.pkgIdx[name]; ok {
		return s.packages[i].Tweaks
	}
	return nil
}

// AddClass merges c into the entry of the same name. The set takes a copy.
func (s *Set) AddClass(c *ClassTweaks) {
	if i, ok := s.classIdx[c.Name]; ok {
		s.classes[i].mergeFrom(c)
		return
	}
	s.classIdx[c.Name] = len(s.classes)
	s.classes = append(s.classes, c.clone())
}

// Classes returns the class entries in declaration order.
func (s *Set) Classes() []*ClassTweaks {
	return s.classes
}

// Class returns the entry for a qualified class name, or nil.
func (s *Set) Class(name string) *ClassTweaks {
	if i, ok := s.classIdx[name]; ok {
		return s.classes[i]
	}
	return nil
}

// Empty reports whether the document declares nothing.
func (s *Set) Empty() bool {
	return len(s.metadata) == 0 && len(s.packages) == 0 && len(s.classes) == 0
}

// AddSkipped records the id of a rule that was dropped while parsing
// because nothing registered it.
func (s *Set) AddSkipped(id string) {
	s.skipped = append(s.skipped, id)
}

// Skipped returns the ids of dropped rules in the order they were seen.
func (s *Set) Skipped() []string {
	return s.skipped
}

// Merge returns a new document holding s followed by o. Metadata is
// right-biased; per-key rule lists are concatenated. Neither input is modified.
func (s *Set) Merge(o *Set) *Set {
	out := NewSet()
	for _, src := range []*Set{s, o} {
		for _, e := range src.metadata {
			out.SetMetadata(e.Key, e.Value)
		}
		for _, p := range src.packages {
			out.AddPackageTweaks(p.Name, p.Tweaks...)
		}
		for _, c := range src.classes {
			out.AddClass(c)
		}
		out.skipped = append(out.skipped, src.skipped...)
	}
	return out
}

// Lookup returns the tweaks that apply to ref, in declaration order.
func (s *Set) Lookup(ref Reference) []Tweak {
	switch ref.Kind {
	case PackageRef:
		return s.Package(ref.Owner)
	case ClassRef:
		if c := s.Class(ref.Owner); c != nil {
			return c.Tweaks
		}
	case FieldRef, MethodRef:
		if ref.Member == nil {
			return nil
		}
		if c := s.Class(ref.Owner); c != nil {
			return c.Member(*ref.Member)
		}
	}
	return nil
}

// MergeAll folds sets left to right. It returns an empty set for no input.
func MergeAll(sets ...*Set) *Set {
	out := NewSet()
	for _, s := range sets {
		out = out.Merge(s)
	}
	return out
}
