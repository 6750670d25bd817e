package main

import (
	"encoding/json"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// OutputFormat is a data format dump can print.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatTOML OutputFormat = "toml"
)

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] FILE...",
	Short: "Print the merged rules of .tweaks files as data",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "json", "Output format (json, yaml, toml)")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	set, err := loadSet(cmd, args)
	if err != nil {
		return err
	}
	out, err := FormatDocument(set.Describe(), OutputFormat(dumpFormat))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

// FormatDocument encodes doc in the given format.
func FormatDocument(doc tweaks.Document, format OutputFormat) (string, error) {
	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	case FormatTOML:
		data, err = toml.Marshal(doc)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", format, err)
	}
	return string(data), nil
}
