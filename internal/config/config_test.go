package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// unsetEnv clears key for the duration of the test so that .env files can
// set it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, []string{".java"}, cfg.Extensions)
	assert.Empty(t, cfg.Tweaks)
	assert.False(t, cfg.SkipUnmodified)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"extension without dot", func(c *Config) { c.Extensions = []string{"java"} }, "extensions"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad size", func(c *Config) { c.Logging.MaxSize = "lots" }, "logging.maxSize"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.maxBackups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "workers", Message: "must be at least 1"}
	assert.Equal(t, "config error in field 'workers': must be at least 1", err.Error())
}

func TestLoadConfig_Default(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, []string{".java"}, cfg.Extensions)
	assert.Empty(t, cfg.Tweaks)
	assert.Equal(t, DefaultConfig().Logging, cfg.Logging)
}

func TestLoadConfig_Search(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName+".yaml", `
tweaks: [hex.tweaks]
skipUnmodified: true
workers: 2
logging:
  level: debug
`)
	t.Chdir(dir)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{"hex.tweaks"}, cfg.Tweaks)
	assert.True(t, cfg.SkipUnmodified)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, []string{".java"}, cfg.Extensions)
	assert.Equal(t, "10MB", cfg.Logging.MaxSize)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.toml", `
tweakers = ["extra.tweaker.toml"]
multipleTweakers = true
extensions = [".java", ".jav"]

[logging]
format = "json"
maxBackups = 0
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"extra.tweaker.toml"}, cfg.Tweakers)
	assert.True(t, cfg.MultipleTweakers)
	assert.Equal(t, []string{".java", ".jav"}, cfg.Extensions)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 0, cfg.Logging.MaxBackups)
}

func TestLoadConfig_Env(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"workers": 3}`)
	t.Setenv("SYNTAX_TWEAKER_WORKERS", "5")
	t.Setenv("SYNTAX_TWEAKER_LOGGING_LEVEL", "error")
	t.Setenv("SYNTAX_TWEAKER_IGNORE", "build/,*.gen.java")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, []string{"build/", "*.gen.java"}, cfg.Ignore)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "SYNTAX_TWEAKER_WORKERS=7\nSYNTAX_TWEAKER_SKIPUNMODIFIED=true\n")
	unsetEnv(t, "SYNTAX_TWEAKER_WORKERS")
	// variables already in the environment win over .env
	t.Setenv("SYNTAX_TWEAKER_SKIPUNMODIFIED", "false")
	t.Chdir(dir)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.False(t, cfg.SkipUnmodified)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.Config))

	bad := writeFile(t, dir, "bad.json", `{"workers": `)
	_, err = LoadConfig(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.Config))

	wrongType := writeFile(t, dir, "wrong.yaml", "workers: many\n")
	_, err = LoadConfig(wrongType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to decode config")
}
