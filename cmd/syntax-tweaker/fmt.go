package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/tweakfile"
)

var (
	fmtMinify bool
	fmtWrite  bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] FILE...",
	Short: "Rewrite .tweaks files in canonical form",
	Long: `Print each .tweaks file in canonical form, or with -w rewrite it in place.
Comments are not preserved. A file with rules skipped under skip-unknown is
not rewritten, since the skipped rules would be lost; pass the tweaker that
defines them with -T.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtMinify, "minify", false, "Write everything on one line")
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write the result back to the file")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	r, err := buildRegistry(cmd)
	if err != nil {
		return err
	}
	format := tweakfile.Pretty
	if fmtMinify {
		format = tweakfile.Minified
	}

	for _, path := range args {
		set, err := tweakfile.ParseFile(path, r)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", path, err)
		}
		out, err := tweakfile.WriteString(set, format)
		if err != nil {
			return err
		}
		if fmtMinify {
			out += "\n"
		}

		if !fmtWrite {
			if skipped := set.Skipped(); len(skipped) > 0 {
				logger.Warn("Unknown rules left out of output", "path", path, "rules", strings.Join(skipped, ","))
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			continue
		}
		if skipped := set.Skipped(); len(skipped) > 0 {
			return errors.Newf(errors.UnknownRule,
				"Refusing to rewrite %s: unknown rules would be dropped: %s", path, strings.Join(skipped, ", "))
		}
		old, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(errors.IO, "reading "+path, err)
		}
		if bytes.Equal(old, []byte(out)) {
			continue
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return errors.Wrap(errors.IO, "writing "+path, err)
		}
		logger.Info("Formatted", "path", path)
	}
	return nil
}
