package main

import (
	"github.com/spf13/cobra"

	"github.com/Gaming32/syntax-tweaker/internal/builtin"
	"github.com/Gaming32/syntax-tweaker/internal/loader"
	"github.com/Gaming32/syntax-tweaker/internal/tweakfile"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

var (
	tweakerPaths     []string
	multipleTweakers bool
)

// stringsFlag returns the flag's values when it was given and the
// configured ones otherwise.
func stringsFlag(cmd *cobra.Command, name string, flag, configured []string) []string {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return configured
}

func boolFlag(cmd *cobra.Command, name string, flag, configured bool) bool {
	if cmd.Flags().Changed(name) {
		return flag
	}
	return configured
}

// buildRegistry returns the default registry extended with the tweakers
// from the command line or the configuration.
func buildRegistry(cmd *cobra.Command) (*tweaks.Registry, error) {
	r := builtin.Default()
	r.DefaultReplace = boolFlag(cmd, "multiple-tweakers", multipleTweakers, cfg.MultipleTweakers)
	for _, path := range stringsFlag(cmd, "tweakers", tweakerPaths, cfg.Tweakers) {
		regs, err := loader.LoadFile(path, logger)
		if err != nil {
			return nil, err
		}
		if err := loader.RegisterAll(r, regs); err != nil {
			return nil, err
		}
		logger.Debug("Loaded tweaker", "path", path, "rules", len(regs))
	}
	return r, nil
}

// loadSet parses and merges tweaks files with the registry for cmd.
func loadSet(cmd *cobra.Command, paths []string) (*tweaks.Set, error) {
	r, err := buildRegistry(cmd)
	if err != nil {
		return nil, err
	}
	return tweakfile.ParseFiles(paths, r)
}
