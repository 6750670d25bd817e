package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Gaming32/syntax-tweaker/internal/config"
	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/slogutil"
	"github.com/Gaming32/syntax-tweaker/internal/version"
)

var (
	configPath string
	verbose    int
	quiet      bool
	logFormat  string

	// Set by PersistentPreRunE for every subcommand.
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer = nopCloser{}
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "syntax-tweaker",
	Short: "Apply declarative rewrite rules to Java sources",
	Long: `syntax-tweaker rewrites Java source trees according to .tweaks files.

A .tweaks file names packages, classes and members and lists the rules to
apply wherever a reference to them appears, for example turning the integer
literals passed to a method into hexadecimal.`,
	Version:           version.Resolved(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate("syntax-tweaker {{.Version}}\n")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default: ./"+config.FileName+".{yaml,toml,json})")
	pf.CountVarP(&verbose, "verbose", "v", "Log more (-v info, -vv debug)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Log nothing")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	pf.StringArrayVarP(&tweakerPaths, "tweakers", "T", nil, "Additional tweaker manifests (.tweaker.toml or .tweaker.yaml)")
	pf.BoolVarP(&multipleTweakers, "multiple-tweakers", "m", false, "Allow tweakers to override each other; the last one wins")
}

// setup loads the configuration and builds the logger. Flags given on the
// command line take precedence over the configuration.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.Config, "Invalid configuration", err)
	}

	level := slogutil.LevelFromVerbosity(verbose, quiet)
	flags := cmd.Flags()
	if !flags.Changed("verbose") && !flags.Changed("quiet") && cfg.Logging.Level != "" {
		level = slogutil.LevelFromString(cfg.Logging.Level)
	}
	format := cfg.Logging.Format
	if flags.Changed("log-format") {
		format = logFormat
	}

	logger, logCloser, err = slogutil.Setup(cmd.ErrOrStderr(), slogutil.Options{
		Level:      level,
		Format:     format,
		File:       cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return errors.Wrap(errors.Config, "Invalid logging configuration", err)
	}
	logger.Debug("Loaded configuration", "config", configPath, "workers", cfg.Workers)
	return nil
}
