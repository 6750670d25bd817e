// Package testutil runs golden tests stored as txtar archives.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// updateGolden rewrites want sections instead of comparing.
// Use: go test ./... -run TestGolden -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// Archive is one parsed golden archive.
type Archive struct {
	Path string
	*txtar.Archive
}

// File returns the data of the named section.
func (a *Archive) File(name string) ([]byte, bool) {
	for _, f := range a.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}

// Golden runs fn as a subtest for every archive matching pattern and
// compares its output with the archive's want section. With -update the
// section is written instead. fn checks archives without a want section
// itself and its output is ignored.
func Golden(t *testing.T, pattern, want string, fn func(t *testing.T, a *Archive) string) {
	t.Helper()
	files, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatalf("no archives match %s", pattern)
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			a := &Archive{Path: file, Archive: ar}
			got := fn(t, a)
			if t.Failed() {
				return
			}

			expected, ok := a.File(want)
			if *updateGolden {
				if ok {
					UpdateGolden(t, a, want, got)
				}
				return
			}
			if ok && got != string(expected) {
				t.Errorf("Golden mismatch for %s:\ngot:\n%s\nwant:\n%s\n\nRun with -update to refresh:\n  go test ./... -run %s -update",
					file, got, expected, t.Name())
			}
		})
	}
}

// UpdateGolden replaces section name of the archive on disk with data.
func UpdateGolden(t *testing.T, a *Archive, name, data string) {
	t.Helper()
	for i := range a.Files {
		if a.Files[i].Name == name {
			a.Files[i].Data = []byte(data)
		}
	}
	if err := os.WriteFile(a.Path, txtar.Format(a.Archive), 0o644); err != nil {
		t.Fatalf("Failed to write golden file: %v", err)
	}
	t.Logf("Updated golden: %s", a.Path)
}
