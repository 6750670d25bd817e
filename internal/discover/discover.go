// Package discover lists the files under the source roots of a run.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
)

// Entry is a regular file found under a source root.
type Entry struct {
	Root string // Source root the file was found under
	Path string // Relative to Root
	// Source is set when the extension is one of Options.Extensions; those
	// files are parsed and rewritten, everything else is copied.
	Source bool
}

// Abs returns the file's path including its root.
func (e Entry) Abs() string {
	return filepath.Join(e.Root, e.Path)
}

// Options controls which files Files returns.
type Options struct {
	Extensions []string
	// Ignore holds gitignore patterns applied in every root on top of the
	// root's own .gitignore.
	Ignore []string
	// Exclude lists directories that are never entered, typically the
	// destination of a run nested inside a source root.
	Exclude []string
}

var skipDirs = map[string]struct{}{
	".git": {},
	".hg":  {},
	".svn": {},
}

// Files walks every root and returns its files sorted by root order and
// then path. A file reachable from two roots is reported once, under the
// first.
func Files(roots []string, opts Options) ([]Entry, error) {
	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, dir := range opts.Exclude {
		if abs, err := filepath.Abs(dir); err == nil {
			exclude[abs] = struct{}{}
		}
	}

	seen := map[string]struct{}{}
	var results []Entry
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", root)
		}

		entries, err := walkRoot(root, exts, exclude, opts.Ignore)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			abs, err := filepath.Abs(e.Abs())
			if err != nil {
				return nil, err
			}
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			results = append(results, e)
		}
	}
	return results, nil
}

func walkRoot(root string, exts, exclude map[string]struct{}, patterns []string) ([]Entry, error) {
	gitFiles := gitLsFiles(root)
	gi := loadGitignore(root, gitFiles == nil, patterns)

	var results []Entry
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if abs, err := filepath.Abs(path); err == nil {
				if _, skip := exclude[abs]; skip {
					return filepath.SkipDir
				}
			}
			if gi.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip symlinks and other non-regular files
		if !d.Type().IsRegular() {
			return nil
		}
		if gitFiles != nil {
			if _, ok := gitFiles[filepath.ToSlash(rel)]; !ok {
				return nil
			}
		}
		if gi.MatchesPath(rel) {
			return nil
		}

		_, source := exts[strings.ToLower(filepath.Ext(path))]
		results = append(results, Entry{Root: root, Path: rel, Source: source})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

// gitLsFiles lists tracked and untracked, not ignored files when root is a
// git work tree. It returns nil when git is unavailable.
func gitLsFiles(root string) map[string]struct{} {
	info, err := os.Stat(filepath.Join(root, ".git"))
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

// loadGitignore compiles the extra patterns, plus root's .gitignore when
// useFile is set. git already applied .gitignore to what it listed.
func loadGitignore(root string, useFile bool, extra []string) *ignore.GitIgnore {
	if useFile {
		if gi, err := ignore.CompileIgnoreFileAndLines(filepath.Join(root, ".gitignore"), extra...); err == nil {
			return gi
		}
	}
	return ignore.CompileIgnoreLines(extra...)
}
