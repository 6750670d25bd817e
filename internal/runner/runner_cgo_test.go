//go:build cgo

package runner

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gaming32/syntax-tweaker/internal/builtin"
	"github.com/Gaming32/syntax-tweaker/internal/slogutil"
	"github.com/Gaming32/syntax-tweaker/internal/tweakfile"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

const rules = `class demo.Colors {
    member void set(int) {
        number-base hex true 0;
    }
}
`

var sources = map[string]string{
	"demo/Colors.java": `package demo;

public class Colors {
    static void set(int rgb) {}
}
`,
	"demo/Main.java": `package demo;

class Main {
    void run() {
        int white = 16777215;
        Colors.set(white);
        Colors.set(255);
    }
}
`,
	"demo/Other.java": `package demo;

class Other {
    int x = 255;
}
`,
	"README.md": "demo\n",
}

const wantMain = `package demo;

class Main {
    void run() {
        int white = 0xffffff;
        Colors.set(white);
        Colors.set(0xff);
    }
}
`

func newRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	set, err := tweakfile.ParseString(rules, builtin.Default())
	if err != nil {
		t.Fatal(err)
	}
	opts.Workers = 2
	return New(set, opts, slogutil.NewDiscardLogger())
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	src, dest := filepath.Join(dir, "src"), filepath.Join(dir, "out")
	writeTree(t, src, sources)

	stats, err := newRunner(t, Options{Dest: dest, Sources: []string{src}}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := readTree(t, dest)
	if len(got) != len(sources) {
		t.Errorf("dest has %d files, want %d: %v", len(got), len(sources), got)
	}
	if got["demo/Main.java"] != wantMain {
		t.Errorf("Main.java =\n%s\nwant\n%s", got["demo/Main.java"], wantMain)
	}
	for _, name := range []string{"demo/Colors.java", "demo/Other.java", "README.md"} {
		if got[name] != sources[name] {
			t.Errorf("%s was modified:\n%s", name, got[name])
		}
	}

	if stats.ID == "" {
		t.Error("Stats.ID is empty")
	}
	if stats.Files != 4 || stats.Sources != 3 || stats.Changed != 1 || stats.Edits != 2 || stats.Copied != 3 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestRunSkipUnmodified(t *testing.T) {
	dir := t.TempDir()
	src, dest := filepath.Join(dir, "src"), filepath.Join(dir, "out")
	writeTree(t, src, sources)

	stats, err := newRunner(t, Options{Dest: dest, Sources: []string{src}, SkipUnmodified: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := readTree(t, dest)
	if len(got) != 1 || got["demo/Main.java"] != wantMain {
		t.Errorf("dest = %v, want only Main.java", got)
	}
	if stats.Skipped != 3 || stats.Copied != 0 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestRunClean(t *testing.T) {
	dir := t.TempDir()
	src, dest := filepath.Join(dir, "src"), filepath.Join(dir, "out")
	writeTree(t, src, sources)
	writeTree(t, dest, map[string]string{"stale.txt": "old"})

	if _, err := newRunner(t, Options{Dest: dest, Sources: []string{src}}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ok := readTree(t, dest)["stale.txt"]; !ok {
		t.Error("stale.txt removed without Clean")
	}

	if _, err := newRunner(t, Options{Dest: dest, Sources: []string{src}, Clean: true}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, ok := readTree(t, dest)["stale.txt"]; ok {
		t.Error("stale.txt kept with Clean")
	}
}

func TestRunDiff(t *testing.T) {
	dir := t.TempDir()
	src, dest := filepath.Join(dir, "src"), filepath.Join(dir, "out")
	writeTree(t, src, sources)

	var buf bytes.Buffer
	stats, err := newRunner(t, Options{Dest: dest, Sources: []string{src}, Diff: &buf}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	diff := buf.String()
	for _, want := range []string{
		"--- a/demo/Main.java",
		"+++ b/demo/Main.java",
		"-        int white = 16777215;",
		"+        int white = 0xffffff;",
		"+        Colors.set(0xff);",
	} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
	if strings.Contains(diff, "Other.java") {
		t.Errorf("diff mentions unchanged file:\n%s", diff)
	}
	if stats.Added != 2 || stats.Removed != 2 {
		t.Errorf("Added, Removed = %d, %d, want 2, 2", stats.Added, stats.Removed)
	}
	if got := readTree(t, dir); len(got) != len(sources) {
		t.Errorf("diff mode wrote files: %v", got)
	}
}

func TestRunEmptySet(t *testing.T) {
	dir := t.TempDir()
	src, dest := filepath.Join(dir, "src"), filepath.Join(dir, "out")
	writeTree(t, src, sources)

	stats, err := New(tweaks.NewSet(), Options{Dest: dest, Sources: []string{src}}, slogutil.NewDiscardLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Changed != 0 || stats.Copied != 4 {
		t.Errorf("Stats = %+v", stats)
	}
}
