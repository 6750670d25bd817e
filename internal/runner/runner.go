// Package runner applies a rule set to source trees and writes the result
// to a destination directory.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Gaming32/syntax-tweaker/internal/discover"
	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/javasrc"
	"github.com/Gaming32/syntax-tweaker/internal/rewrite"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// Options configures a run.
type Options struct {
	Dest       string
	Sources    []string
	Extensions []string
	Ignore     []string
	Workers    int
	// SkipUnmodified leaves out unmodified sources and every other file.
	SkipUnmodified bool
	// Clean empties Dest before writing.
	Clean bool
	// Diff, when set, receives a unified diff per modified source instead
	// of anything being written to Dest.
	Diff io.Writer
}

// Stats summarises a finished run.
type Stats struct {
	ID        string        `json:"id"`
	Files     int           `json:"files"`
	Sources   int           `json:"sources"`
	Changed   int           `json:"changed"`
	Copied    int           `json:"copied"`
	Skipped   int           `json:"skipped"`
	Edits     int           `json:"edits"`
	Added     int           `json:"added,omitempty"`
	Removed   int           `json:"removed,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Runner runs one rule set over source trees.
type Runner struct {
	engine *rewrite.Engine
	opts   Options
	logger *slog.Logger
}

// New creates a runner for set.
func New(set *tweaks.Set, opts Options, logger *slog.Logger) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{javasrc.Extension}
	}
	return &Runner{
		engine: rewrite.NewEngine(set),
		opts:   opts,
		logger: logger,
	}
}

type counters struct {
	changed, copied, skipped, edits, added, removed atomic.Int64
}

// job is one source file moving through the run.
type job struct {
	entry discover.Entry
	file  *javasrc.File
	diff  string
}

// Run parses every source, resolves references against the index of all
// of them, and writes rewritten sources and copies of other files to Dest.
// The first error cancels the remaining work.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{ID: uuid.New().String(), StartedAt: time.Now().UTC()}
	logger := r.logger.With("run", stats.ID)
	logger.Info("Starting run",
		"dest", r.opts.Dest,
		"sources", strings.Join(r.opts.Sources, ","),
		"workers", r.opts.Workers,
		"diff", r.opts.Diff != nil,
	)

	if err := r.checkDest(); err != nil {
		return nil, err
	}
	entries, err := discover.Files(r.opts.Sources, discover.Options{
		Extensions: r.opts.Extensions,
		Ignore:     r.opts.Ignore,
		Exclude:    []string{r.opts.Dest},
	})
	if err != nil {
		return nil, errors.Wrap(errors.IO, "Failed to list sources", err)
	}

	var jobs []*job
	var others []discover.Entry
	for _, e := range entries {
		if e.Source {
			jobs = append(jobs, &job{entry: e})
		} else {
			others = append(others, e)
		}
	}
	stats.Files, stats.Sources = len(entries), len(jobs)
	logger.Debug("Discovered files", "sources", len(jobs), "other", len(others))
	if len(jobs) > 0 && !javasrc.IsAvailable() {
		return nil, javasrc.ErrNoCGO
	}

	if r.opts.Diff == nil {
		if r.opts.Clean {
			if err := cleanDir(r.opts.Dest); err != nil {
				return nil, errors.Wrap(errors.IO, "Failed to clean "+r.opts.Dest, err)
			}
		}
		if err := os.MkdirAll(r.opts.Dest, 0o755); err != nil {
			return nil, errors.Wrap(errors.IO, "Failed to create "+r.opts.Dest, err)
		}
	}

	if err := r.parse(ctx, logger, jobs); err != nil {
		return nil, err
	}
	files := make([]*javasrc.File, len(jobs))
	for i, j := range jobs {
		files[i] = j.file
	}
	idx := javasrc.BuildIndex(files)
	logger.Debug("Indexed classes", "classes", idx.Len())

	var c counters
	if err := r.rewrite(ctx, logger, jobs, idx, &c); err != nil {
		return nil, err
	}
	if r.opts.Diff != nil {
		for _, j := range jobs {
			if _, err := io.WriteString(r.opts.Diff, j.diff); err != nil {
				return nil, errors.Wrap(errors.IO, "Failed to write diff", err)
			}
		}
	} else if err := r.copyAll(ctx, others, &c); err != nil {
		return nil, err
	}

	stats.Changed = int(c.changed.Load())
	stats.Copied = int(c.copied.Load())
	stats.Skipped = int(c.skipped.Load())
	stats.Edits = int(c.edits.Load())
	stats.Added = int(c.added.Load())
	stats.Removed = int(c.removed.Load())
	stats.Elapsed = time.Since(stats.StartedAt)
	logger.Info("Run complete",
		"changed", stats.Changed,
		"copied", stats.Copied,
		"skipped", stats.Skipped,
		"edits", stats.Edits,
		"elapsed", stats.Elapsed.String(),
	)
	return stats, nil
}

func (r *Runner) parse(ctx context.Context, logger *slog.Logger, jobs []*job) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			path := j.entry.Abs()
			src, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(errors.IO, "Failed to read "+path, err)
			}
			f, err := javasrc.ParseFile(ctx, path, src)
			if err != nil {
				return err
			}
			if f.HasErrors() {
				logger.Warn("Syntax errors in source, references may be missed", "path", path)
			}
			j.file = f
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) rewrite(ctx context.Context, logger *slog.Logger, jobs []*job, idx *javasrc.Index, c *counters) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.engine.Rewrite(j.file.Source, javasrc.Resolve(j.file, idx))
			if err != nil {
				return fmt.Errorf("rewriting %s: %w", j.entry.Abs(), err)
			}
			logger.Debug("Rewrote source", "path", j.entry.Path, "result", res.Summary())
			if res.Changed {
				c.changed.Add(1)
				c.edits.Add(int64(len(res.Edits)))
			}

			if r.opts.Diff != nil {
				return r.diff(j, res, c)
			}
			switch {
			case res.Changed:
				return writeFile(r.dest(j.entry), []byte(res.Text), j.entry.Abs())
			case r.opts.SkipUnmodified:
				c.skipped.Add(1)
				return nil
			default:
				c.copied.Add(1)
				return copyFile(j.entry.Abs(), r.dest(j.entry))
			}
		})
	}
	return g.Wait()
}

func (r *Runner) diff(j *job, res *rewrite.Result, c *counters) error {
	d, err := rewrite.UnifiedDiff(filepath.ToSlash(j.entry.Path), j.file.Source, res)
	if err != nil {
		return err
	}
	added, removed, err := rewrite.DiffStats(d)
	if err != nil {
		return err
	}
	c.added.Add(int64(added))
	c.removed.Add(int64(removed))
	j.diff = d
	return nil
}

func (r *Runner) copyAll(ctx context.Context, entries []discover.Entry, c *counters) error {
	if r.opts.SkipUnmodified {
		c.skipped.Add(int64(len(entries)))
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.copied.Add(1)
			return copyFile(e.Abs(), r.dest(e))
		})
	}
	return g.Wait()
}

func (r *Runner) dest(e discover.Entry) string {
	return filepath.Join(r.opts.Dest, e.Path)
}

// checkDest rejects a destination that is, or contains, a source root, as
// writing there would overwrite the input.
func (r *Runner) checkDest() error {
	if r.opts.Dest == "" {
		return errors.New(errors.Config, "No destination directory")
	}
	dest, err := filepath.Abs(r.opts.Dest)
	if err != nil {
		return errors.Wrap(errors.IO, "Invalid destination", err)
	}
	for _, src := range r.opts.Sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			return errors.Wrap(errors.IO, "Invalid source "+src, err)
		}
		if abs == dest || strings.HasPrefix(abs, dest+string(filepath.Separator)) {
			return errors.Newf(errors.Config, "Destination %s contains source %s", r.opts.Dest, src)
		}
	}
	return nil
}
