package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gaming32/syntax-tweaker/internal/tweakfile"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Validate .tweaks files",
	Long:  "Parse each .tweaks file and validate every rule in it, stopping at the first error.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	r, err := buildRegistry(cmd)
	if err != nil {
		return err
	}
	for _, path := range args {
		set, err := tweakfile.ParseFile(path, r)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d package(s), %d class(es))\n",
			path, len(set.Packages()), len(set.Classes()))
	}
	return nil
}
