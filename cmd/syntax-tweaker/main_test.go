package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
)

const hexPretty = `class demo.Colors {
    member void set(int) {
        number-base hex true 0;
    }

    member int WHITE {
        number-base hex false;
    }
}
`

func testdata(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return abs
}

// resetFlags restores every flag of cmd and its children to its default,
// since the command tree is shared between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI in an empty working directory and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	paths := make(map[string]string)
	for _, name := range []string{"hex.tweaks", "bad.tweaks", "aliases.tweaker.toml"} {
		paths[name] = testdata(t, name)
	}
	for i, a := range args {
		if p, ok := paths[a]; ok {
			args[i] = p
		}
	}
	t.Chdir(t.TempDir())

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"-q"}, args...))
	err := rootCmd.Execute()
	_ = logCloser.Close()
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "syntax-tweaker ") || !strings.Contains(out, "commit: ") {
		t.Errorf("version output = %q", out)
	}
}

func TestRules(t *testing.T) {
	out, err := execute(t, "rules")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if out != "number-base\n" {
		t.Errorf("rules = %q, want number-base", out)
	}

	out, err = execute(t, "rules", "-T", "aliases.tweaker.toml")
	if err != nil {
		t.Fatalf("rules -T: %v", err)
	}
	if out != "hex-arg\nnumber-base\n" {
		t.Errorf("rules -T = %q", out)
	}
}

func TestCheck(t *testing.T) {
	out, err := execute(t, "check", "hex.tweaks")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "hex.tweaks: ok (0 package(s), 1 class(es))") {
		t.Errorf("check output = %q", out)
	}

	_, err = execute(t, "check", "hex.tweaks", "bad.tweaks")
	if err == nil {
		t.Fatal("check bad.tweaks succeeded")
	}
	if !errors.IsCode(err, errors.RuleValidation) || !strings.Contains(err.Error(), "Missing targetVariables") {
		t.Errorf("check error = %v", err)
	}
	if !strings.Contains(err.Error(), "bad.tweaks") {
		t.Errorf("error does not name the file: %v", err)
	}
}

func TestFmt(t *testing.T) {
	out, err := execute(t, "fmt", "hex.tweaks")
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if out != hexPretty {
		t.Errorf("fmt =\n%s\nwant\n%s", out, hexPretty)
	}

	out, err = execute(t, "fmt", "--minify", "hex.tweaks")
	if err != nil {
		t.Fatalf("fmt --minify: %v", err)
	}
	if strings.Count(out, "\n") != 1 || !strings.HasPrefix(out, "class demo.Colors{") {
		t.Errorf("fmt --minify = %q", out)
	}
}

func TestFmtWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hex.tweaks")
	src, err := os.ReadFile(testdata(t, "hex.tweaks"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "fmt", "-w", path)
	if err != nil {
		t.Fatalf("fmt -w: %v", err)
	}
	if out != "" {
		t.Errorf("fmt -w printed %q", out)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != hexPretty {
		t.Errorf("rewritten file =\n%s", got)
	}
}

func TestFmtWriteKeepsSkippedRules(t *testing.T) {
	const aliased = "skip-unknown;\n\nclass demo.Colors {\n    member void set(int) {\n        hex-arg 0;\n    }\n}\n"
	tests := []struct {
		name    string
		src     string
		plugins []string
		wantErr bool
	}{
		{"unknown class rule", "skip-unknown;\nclass a.B {\n    my-custom-rule 1 2;\n}\n", nil, true},
		{"tweaker not passed", aliased, nil, true},
		{"tweaker passed", aliased, []string{"-T", "aliases.tweaker.toml"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.tweaks")
			if err := os.WriteFile(path, []byte(tt.src), 0o644); err != nil {
				t.Fatal(err)
			}

			args := append(append([]string{}, tt.plugins...), "fmt", "-w", path)
			_, err := execute(t, args...)
			if tt.wantErr {
				if !errors.IsCode(err, errors.UnknownRule) {
					t.Errorf("fmt -w error = %v, want %s", err, errors.UnknownRule)
				}
			} else if err != nil {
				t.Fatalf("fmt -w: %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.src {
				t.Errorf("file after fmt -w =\n%s\nwant\n%s", got, tt.src)
			}
		})
	}
}

func TestDump(t *testing.T) {
	out, err := execute(t, "dump", "hex.tweaks")
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	var doc struct {
		Classes []struct {
			Name    string
			Members []struct {
				Kind, Name, Type string
				Rules            []struct {
					ID   string
					Args []string
				}
			}
		}
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("dump output is not JSON: %v\n%s", err, out)
	}
	if len(doc.Classes) != 1 || len(doc.Classes[0].Members) != 2 {
		t.Fatalf("dump = %+v", doc)
	}
	m := doc.Classes[0].Members[0]
	if m.Kind != "method" || m.Name != "set" || m.Rules[0].ID != "number-base" {
		t.Errorf("member = %+v", m)
	}

	for _, format := range []string{"yaml", "toml"} {
		out, err := execute(t, "dump", "--format", format, "hex.tweaks")
		if err != nil {
			t.Fatalf("dump --format %s: %v", format, err)
		}
		if !strings.Contains(out, "number-base") || !strings.Contains(out, "demo.Colors") {
			t.Errorf("dump --format %s =\n%s", format, out)
		}
	}

	if _, err := execute(t, "dump", "--format", "xml", "hex.tweaks"); err == nil {
		t.Error("dump --format xml succeeded")
	}
}

func TestApplyNeedsTweaks(t *testing.T) {
	_, err := execute(t, "apply", "out", "src")
	if !errors.IsCode(err, errors.Config) {
		t.Errorf("apply without -t: error = %v, want CONFIG", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte("workers: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "--config", cfgPath, "rules")
	if !errors.IsCode(err, errors.Config) || !strings.Contains(err.Error(), "workers") {
		t.Errorf("invalid config: error = %v", err)
	}
}
