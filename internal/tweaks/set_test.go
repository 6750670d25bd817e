package tweaks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaming32/syntax-tweaker/internal/signature"
)

type namedTweak string

func (n namedTweak) ID() string                            { return string(n) }
func (n namedTweak) Supports() KindSet                     { return AllKinds }
func (n namedTweak) SerializeArgs() []string               { return nil }
func (n namedTweak) SerializeNamedArgs() map[string]string { return nil }

func ids(ts []Tweak) []string {
	var out []string
	for _, t := range ts {
		out = append(out, t.ID())
	}
	return out
}

func sampleSet(suffix string, meta map[string]string) *Set {
	s := NewSet()
	for k, v := range meta {
		s.SetMetadata(k, v)
	}
	s.AddPackageTweaks("a.b", namedTweak("pkg"+suffix))
	c := NewClassTweaks("a.b.C")
	c.AddTweaks(namedTweak("cls" + suffix))
	c.AddMemberTweaks(signature.MemberReference{Name: "x", Type: signature.Int}, namedTweak("x"+suffix))
	s.AddClass(c)
	return s
}

func TestSet_Metadata(t *testing.T) {
	s := NewSet()
	s.SetMetadata("skip-unknown", "")
	s.SetMetadata("author", "a")
	s.SetMetadata("skip-unknown", "yes")

	assert.Equal(t, []MetadataEntry{{"skip-unknown", "yes"}, {"author", "a"}}, s.Metadata())
	v, ok := s.MetadataValue("author")
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, map[string]string{"skip-unknown": "yes", "author": "a"}, s.MetadataMap())
}

func TestClassTweaks_PunctuatedParamNamesStayDistinct(t *testing.T) {
	c := NewClassTweaks("a.B")
	quoted := signature.MemberReference{Name: "f", Type: signature.Method{Return: signature.Void, Params: []signature.Type{signature.Reference("a,b")}}}
	split := signature.MemberReference{Name: "f", Type: signature.Method{Return: signature.Void, Params: []signature.Type{signature.Reference("a"), signature.Reference("b")}}}
	c.AddMemberTweaks(quoted, namedTweak("one"))
	c.AddMemberTweaks(split, namedTweak("two"))

	assert.Len(t, c.Members(), 2)
	assert.Len(t, c.Member(quoted), 1)
	assert.Len(t, c.Member(split), 1)
}

func TestSet_MergeKeepsSkipped(t *testing.T) {
	a, b := NewSet(), NewSet()
	a.AddSkipped("x")
	b.AddSkipped("y")

	assert.Equal(t, []string{"x", "y"}, a.Merge(b).Skipped())
	assert.Equal(t, []string{"x"}, a.Skipped())
}

func TestSet_MergeConcatenates(t *testing.T) {
	a := sampleSet("1", map[string]string{"k": "left"})
	b := sampleSet("2", map[string]string{"k": "right"})

	m := a.Merge(b)

	v, _ := m.MetadataValue("k")
	assert.Equal(t, "right", v)
	assert.Equal(t, []string{"pkg1", "pkg2"}, ids(m.Package("a.b")))
	c := m.Class("a.b.C")
	require.NotNil(t, c)
	assert.Equal(t, []string{"cls1", "cls2"}, ids(c.Tweaks))
	assert.Equal(t, []string{"x1", "x2"}, ids(c.Member(signature.MemberReference{Name: "x", Type: signature.Int})))

	// inputs untouched
	assert.Equal(t, []string{"pkg1"}, ids(a.Package("a.b")))
	assert.Equal(t, []string{"x2"}, ids(b.Class("a.b.C").Member(signature.MemberReference{Name: "x", Type: signature.Int})))
}

func TestSet_MergeAssociative(t *testing.T) {
	a := sampleSet("1", map[string]string{"k": "1"})
	b := sampleSet("2", nil)
	b.AddPackageTweaks("other", namedTweak("o2"))
	c := sampleSet("3", map[string]string{"k": "3", "z": "3"})

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))

	assert.Equal(t, left, right)
	assert.Equal(t, left, MergeAll(a, b, c))
}

func TestSet_Lookup(t *testing.T) {
	s := sampleSet("", nil)
	x := signature.MemberReference{Name: "x", Type: signature.Int}
	y := signature.MemberReference{Name: "x", Type: signature.Long}

	tests := []struct {
		name string
		ref  Reference
		want []string
	}{
		{"package", Reference{Kind: PackageRef, Owner: "a.b"}, []string{"pkg"}},
		{"class", Reference{Kind: ClassRef, Owner: "a.b.C"}, []string{"cls"}},
		{"field", Reference{Kind: FieldRef, Owner: "a.b.C", Member: &x}, []string{"x"}},
		{"other overload", Reference{Kind: FieldRef, Owner: "a.b.C", Member: &y}, nil},
		{"unknown class", Reference{Kind: ClassRef, Owner: "a.b.D"}, nil},
		{"no member", Reference{Kind: FieldRef, Owner: "a.b.C"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.Lookup(tt.ref)))
		})
	}
}

func TestSet_EmptyBlocksKept(t *testing.T) {
	s := NewSet()
	s.AddPackageTweaks("empty")
	c := NewClassTweaks("a.B")
	c.AddMemberTweaks(signature.MemberReference{Name: "B", Type: signature.MustParseType("()")})
	s.AddClass(c)

	require.Len(t, s.Packages(), 1)
	require.Len(t, s.Classes(), 1)
	assert.Len(t, s.Class("a.B").Members(), 1)
	assert.False(t, s.Empty())
}

func TestSet_Describe(t *testing.T) {
	s := sampleSet("", map[string]string{"k": "v"})
	doc := s.Describe()

	require.Len(t, doc.Classes, 1)
	require.Len(t, doc.Classes[0].Members, 1)
	assert.Equal(t, MemberDoc{Kind: "field", Name: "x", Type: "int", Rules: []RuleDoc{{ID: "x"}}}, doc.Classes[0].Members[0])
	assert.Equal(t, []MetadataDoc{{Key: "k", Value: "v"}}, doc.Metadata)
}
