package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered rule ids",
	Long:  "List the built-in rule ids and those added by tweakers (-T or the config).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRegistry(cmd)
		if err != nil {
			return err
		}
		for _, key := range r.Keys() {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
