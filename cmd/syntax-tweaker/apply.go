package main

import (
	"github.com/spf13/cobra"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/runner"
)

var (
	applyTweaks         []string
	applySkipUnmodified bool
	applyClean          bool
	applyDiff           bool
	applyWorkers        int
	applyIgnore         []string
)

var applyCmd = &cobra.Command{
	Use:   "apply [flags] DEST SRC...",
	Short: "Rewrite source trees into a destination directory",
	Long: `Apply the rules of one or more .tweaks files to every Java file under
the source directories and write the results to DEST, keeping each file's
path relative to its source directory. Other files are copied unchanged.

Examples:
  syntax-tweaker apply -t hex.tweaks out/ src/main/java
  syntax-tweaker apply -t hex.tweaks -T extra.tweaker.toml --clean out/ src/
  syntax-tweaker apply -t hex.tweaks --diff out/ src/ | less`,
	Args: cobra.MinimumNArgs(2),
	RunE: runApply,
}

func init() {
	f := applyCmd.Flags()
	f.StringArrayVarP(&applyTweaks, "tweaks", "t", nil, ".tweaks files to use")
	f.BoolVarP(&applySkipUnmodified, "skip-unmodified", "s", false, "Skip unmodified files")
	f.BoolVar(&applyClean, "clean", false, "Empty DEST before writing")
	f.BoolVar(&applyDiff, "diff", false, "Print a unified diff instead of writing DEST")
	f.IntVar(&applyWorkers, "workers", 0, "Files processed in parallel (default from config, number of CPUs)")
	f.StringArrayVar(&applyIgnore, "ignore", nil, "Additional gitignore patterns for the sources")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	paths := stringsFlag(cmd, "tweaks", applyTweaks, cfg.Tweaks)
	if len(paths) == 0 {
		return errors.New(errors.Config, "No .tweaks files given (use -t or set tweaks in the config)")
	}
	set, err := loadSet(cmd, paths)
	if err != nil {
		return err
	}

	opts := runner.Options{
		Dest:           args[0],
		Sources:        args[1:],
		Extensions:     cfg.Extensions,
		Ignore:         append(append([]string(nil), cfg.Ignore...), applyIgnore...),
		Workers:        cfg.Workers,
		SkipUnmodified: boolFlag(cmd, "skip-unmodified", applySkipUnmodified, cfg.SkipUnmodified),
		Clean:          applyClean,
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = applyWorkers
	}
	if applyDiff {
		opts.Diff = cmd.OutOrStdout()
	}

	stats, err := runner.New(set, opts, logger).Run(cmd.Context())
	if err != nil {
		return err
	}
	if applyDiff && stats.Changed > 0 {
		logger.Info("Diff summary", "files", stats.Changed, "added", stats.Added, "removed", stats.Removed)
	}
	return nil
}
