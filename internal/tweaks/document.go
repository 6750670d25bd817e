package tweaks

// Document is a plain-data view of a Set for encoding with json, yaml or toml.
type Document struct {
	Metadata []MetadataDoc `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
	Packages []PackageDoc  `json:"packages,omitempty" yaml:"packages,omitempty" toml:"packages,omitempty"`
	Classes  []ClassDoc    `json:"classes,omitempty" yaml:"classes,omitempty" toml:"classes,omitempty"`
}

type MetadataDoc struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

type PackageDoc struct {
	Name  string    `json:"name" yaml:"name" toml:"name"`
	Rules []RuleDoc `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
}

type ClassDoc struct {
	Name    string      `json:"name" yaml:"name" toml:"name"`
	Rules   []RuleDoc   `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
	Members []MemberDoc `json:"members,omitempty" yaml:"members,omitempty" toml:"members,omitempty"`
}

type MemberDoc struct {
	Kind  string    `json:"kind" yaml:"kind" toml:"kind"`
	Name  string    `json:"name" yaml:"name" toml:"name"`
	Type  string    `json:"type" yaml:"type" toml:"type"`
	Rules []RuleDoc `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
}

type RuleDoc struct {
	ID    string            `json:"id" yaml:"id" toml:"id"`
	Args  []string          `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
	Named map[string]string `json:"named,omitempty" yaml:"named,omitempty" toml:"named,omitempty"`
}

// Describe converts the set to a Document. Anonymous tweaks are omitted,
// as they are when writing.
func (s *Set) Describe() Document {
	var doc Document
	for _, e := range s.metadata {
		doc.Metadata = append(doc.Metadata, MetadataDoc(e))
	}
	for _, p := range s.packages {
		doc.Packages = append(doc.Packages, PackageDoc{Name: p.Name, Rules: describeRules(p.Tweaks)})
	}
	for _, c := range s.classes {
		cd := ClassDoc{Name: c.Name, Rules: describeRules(c.Tweaks)}
		for _, m := range c.members {
			cd.Members = append(cd.Members, MemberDoc{
				Kind:  m.Member.Kind().String(),
				Name:  m.Member.Name,
				Type:  m.Member.Type.String(),
				Rules: describeRules(m.Tweaks),
			})
		}
		doc.Classes = append(doc.Classes, cd)
	}
	return doc
}

func describeRules(ts []Tweak) []RuleDoc {
	var out []RuleDoc
	for _, t := range ts {
		if t.ID() == "" {
			continue
		}
		out = append(out, RuleDoc{ID: t.ID(), Args: t.SerializeArgs(), Named: t.SerializeNamedArgs()})
	}
	return out
}
