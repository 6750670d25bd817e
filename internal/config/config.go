package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/slogutil"
)

const (
	// FileName is the config file base name searched for in the working
	// directory, with a .yaml, .toml or .json extension.
	FileName = ".syntax-tweaker"
	// EnvPrefix prefixes environment overrides, e.g. SYNTAX_TWEAKER_WORKERS
	// or SYNTAX_TWEAKER_LOGGING_LEVEL.
	EnvPrefix = "SYNTAX_TWEAKER"
)

// Config represents the complete syntax-tweaker configuration
type Config struct {
	// Tweaks are the .tweaks files applied by apply when -t is not given.
	Tweaks []string `json:"tweaks" mapstructure:"tweaks"`
	// Tweakers are rule plugin manifests loaded before parsing tweaks.
	Tweakers         []string `json:"tweakers" mapstructure:"tweakers"`
	MultipleTweakers bool     `json:"multipleTweakers" mapstructure:"multipleTweakers"`
	SkipUnmodified   bool     `json:"skipUnmodified" mapstructure:"skipUnmodified"`

	Workers    int      `json:"workers" mapstructure:"workers"`
	Extensions []string `json:"extensions" mapstructure:"extensions"`
	// Ignore holds gitignore-style patterns applied on top of .gitignore.
	Ignore []string `json:"ignore" mapstructure:"ignore"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level overrides the -v/-q derived level when set.
	Level      string `json:"level" mapstructure:"level"`
	Format     string `json:"format" mapstructure:"format"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:    runtime.NumCPU(),
		Extensions: []string{".java"},
		Logging: LoggingConfig{
			Format:     "text",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("tweaks", d.Tweaks)
	v.SetDefault("tweakers", d.Tweakers)
	v.SetDefault("multipleTweakers", d.MultipleTweakers)
	v.SetDefault("skipUnmodified", d.SkipUnmodified)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("ignore", d.Ignore)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads the configuration file at path, or searches the working
// directory for .syntax-tweaker.{yaml,toml,json} when path is empty. A
// missing file is not an error: defaults and the environment still apply.
// A .env file next to the configuration is loaded into the environment
// first, without overriding variables that are already set.
func LoadConfig(path string) (*Config, error) {
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.Config, "Failed to load .env", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(errors.Config, "Failed to read config", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.Config, "Failed to decode config", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return &ConfigError{Field: "workers", Message: "must be at least 1"}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return &ConfigError{Field: "extensions", Message: "extension " + ext + " must start with a dot"}
		}
	}
	if c.Logging.Level != "" && !slogutil.ValidLevel(c.Logging.Level) {
		return &ConfigError{Field: "logging.level", Message: "unknown level " + c.Logging.Level}
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be text or json"}
	}
	if _, err := slogutil.ParseSize(c.Logging.MaxSize); err != nil {
		return &ConfigError{Field: "logging.maxSize", Message: err.Error()}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
