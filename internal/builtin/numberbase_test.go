package builtin

import (
	"strings"
	"testing"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/signature"
	"github.com/Gaming32/syntax-tweaker/internal/tweakfile"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		literal  string
		negative bool
		target   Base
		want     string
		wantOK   bool
	}{
		{"10", false, Hex, "0xa", true},
		{"0xa", false, Dec, "10", true},
		{"0XFF", false, Bin, "0b11111111", true},
		{"0b1010", false, Oct, "012", true},
		{"010", false, Dec, "8", true},
		{"0", false, Hex, "0x0", true},
		{"0x0", false, Oct, "0", true},
		{"1_000", false, Hex, "0x3e8", true},
		{"5", true, Hex, "0xfffffffb", true},
		{"5", true, Bin, "0b11111111111111111111111111111011", true},
		{"0x5", true, Dec, "-5", true},
		{"0x5", true, Oct, "-05", true},
		{"0xfffffffb", false, Dec, "-5", true},
		{"0xFFFFFFFFL", false, Dec, "4294967295L", true},
		{"1l", true, Hex, "0xffffffffffffffffl", true},
		{"2147483648", true, Hex, "0x80000000", true},
		{"0x7fffffff", false, Dec, "2147483647", true},

		{"0xa", false, Hex, "", false},
		{"010", false, Oct, "", false},
		{"0", false, Oct, "", false},
		{"0x100000000", false, Dec, "", false},
		{"0x", false, Dec, "", false},
		{"1.5", false, Hex, "", false},
		{"L", false, Hex, "", false},
	}

	for _, tt := range tests {
		name := tt.literal + "->" + tt.target.String()
		if tt.negative {
			name = "-" + name
		}
		t.Run(name, func(t *testing.T) {
			got, ok := Convert(tt.literal, tt.negative, tt.target)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Convert(%q, %v, %s) = %q, %v, want %q, %v",
					tt.literal, tt.negative, tt.target, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseBase(t *testing.T) {
	for _, s := range []string{"hex", "HEX", "Bin", "oct", "dEc"} {
		b, err := ParseBase(s)
		if err != nil {
			t.Errorf("ParseBase(%q) error = %v", s, err)
			continue
		}
		if !strings.EqualFold(b.String(), s) {
			t.Errorf("ParseBase(%q) = %s", s, b)
		}
	}
	if _, err := ParseBase("octal"); !errors.IsCode(err, errors.RuleValidation) {
		t.Errorf("ParseBase(octal) error = %v, want RULE_VALIDATION", err)
	}
}

func TestNewNumberBase(t *testing.T) {
	field := signature.MemberReference{Name: "x", Type: signature.Int}
	method := signature.MemberReference{Name: "f", Type: signature.MustParseType("void(int,long)")}

	tests := []struct {
		name    string
		member  signature.MemberReference
		args    []string
		wantErr string
		want    []string
	}{
		{name: "field", member: field, args: []string{"HEX", "true"}, want: []string{"hex", "true"}},
		{name: "method", member: method, args: []string{"bin", "false", "1"}, want: []string{"bin", "false", "1"}},
		{name: "missing base", member: field, wantErr: "Missing targetBase"},
		{name: "bad base", member: field, args: []string{"base64", "true"}, wantErr: "Unknown number base"},
		{name: "missing variables", member: field, args: []string{"hex"}, wantErr: "Missing targetVariables"},
		{name: "loose boolean", member: field, args: []string{"hex", "yes"}, wantErr: "targetVariables must be true or false"},
		{name: "capital boolean", member: field, args: []string{"hex", "True"}, wantErr: "targetVariables must be true or false"},
		{name: "field with param", member: field, args: []string{"hex", "true", "0"}, wantErr: "is a field, but parameter is 0"},
		{name: "method without param", member: method, args: []string{"hex", "true"}, wantErr: "Parameter index required"},
		{name: "param not a number", member: method, args: []string{"hex", "true", "x"}, wantErr: "Invalid parameter index"},
		{name: "param out of range", member: method, args: []string{"hex", "true", "2"}, wantErr: "Parameter 2 out of bounds for void(int,long)"},
		{name: "negative param", member: method, args: []string{"hex", "true", "-1"}, wantErr: "out of bounds"},
		{name: "extra args", member: method, args: []string{"hex", "true", "0", "1"}, wantErr: "Too many arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := tt.member
			ctx, err := tweaks.NewParseContext(nil, tweaks.KindOf(member), "com.example.Foo", &member)
			if err != nil {
				t.Fatal(err)
			}
			tw, err := NewNumberBase(ctx.WithArgs(tt.args, nil))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("NewNumberBase(%v) succeeded, want error %q", tt.args, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want %q", err, tt.wantErr)
				}
				if !errors.IsCode(err, errors.RuleValidation) {
					t.Errorf("error code = %s, want RULE_VALIDATION", errors.CodeOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("NewNumberBase(%v) error = %v", tt.args, err)
			}
			if got := tw.SerializeArgs(); strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("SerializeArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumberBaseRejectsOtherKinds(t *testing.T) {
	_, err := tweakfile.ParseString(`class com.example.Foo { number-base hex true; }`, Default())
	if err == nil {
		t.Fatal("number-base on a class was accepted")
	}
	if !strings.Contains(err.Error(), "Only applicable to members") {
		t.Errorf("error = %v", err)
	}
}

func TestNumberBaseRoundTrip(t *testing.T) {
	const src = `class com.example.Foo {
    member int FLAGS {
        number-base hex false;
    }

    member void setColor(int, int) {
        number-base HEX true 1;
    }

    member Foo(long) {
        number-base dec true 0;
    }
}
`
	set, err := tweakfile.ParseString(src, Default())
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	got, err := tweakfile.WriteString(set, tweakfile.Pretty)
	if err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	want := strings.Replace(src, "HEX", "hex", 1)
	if got != want {
		t.Errorf("WriteString() =\n%s\nwant\n%s", got, want)
	}

	again, err := tweakfile.ParseString(got, Default())
	if err != nil {
		t.Fatalf("reparse error = %v", err)
	}
	member := signature.MemberReference{Name: "setColor", Type: signature.MustParseType("void(int,int)")}
	ts := again.Class("com.example.Foo").Member(member)
	if len(ts) != 1 {
		t.Fatalf("tweaks for %s = %d, want 1", member, len(ts))
	}
	nb := ts[0].(*NumberBase)
	if nb.Target != Hex || !nb.TargetVariables || nb.Param != 1 {
		t.Errorf("reparsed = %+v", nb)
	}
}

func TestDefault(t *testing.T) {
	r := Default()
	if keys := r.Keys(); len(keys) != 1 || keys[0] != NumberBaseID {
		t.Errorf("Keys() = %v, want [%s]", keys, NumberBaseID)
	}
	if err := RegisterDefaults(r); !errors.IsCode(err, errors.Registry) {
		t.Errorf("second RegisterDefaults() error = %v, want REGISTRY", err)
	}
}
