// Package loader extends a rule registry from tweaker files given on the
// command line.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// Registrar adds rules to a registry.
type Registrar func(r *tweaks.Registry) error

// RegisterAll runs registrars in order and stops at the first error.
func RegisterAll(r *tweaks.Registry, registrars []Registrar) error {
	for _, reg := range registrars {
		if err := reg(r); err != nil {
			return err
		}
	}
	return nil
}

// Loader turns the content of one tweaker file into registrars. A loader
// that does not recognize the content returns an error.
type Loader interface {
	Name() string
	// Suffixes are matched case-insensitively against the file name.
	Suffixes() []string
	Load(data []byte) ([]Registrar, error)
}

// Loaders is the built-in loader list, tried in order.
var Loaders = []Loader{TOMLLoader{}, YAMLLoader{}}

// LoadFile reads a tweaker file. Loaders whose suffix matches are tried
// first; if none of them yields a registrar every loader is tried in turn.
func LoadFile(path string, logger *slog.Logger) ([]Registrar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.IO, "reading tweaker "+path, err)
	}
	return load(path, data, Loaders, logger)
}

func load(path string, data []byte, loaders []Loader, logger *slog.Logger) ([]Registrar, error) {
	name := strings.ToLower(filepath.Base(path))
	var matchErr error
	for _, l := range loaders {
		if !hasSuffix(name, l.Suffixes()) {
			continue
		}
		regs, err := l.Load(data)
		if err != nil {
			matchErr = errors.Wrap(errors.Config, "Failed to load tweaker "+path, err)
			continue
		}
		if len(regs) > 0 {
			return regs, nil
		}
	}
	if matchErr != nil {
		return nil, matchErr
	}

	for _, l := range loaders {
		regs, err := l.Load(data)
		if err != nil {
			logger.Debug("Tweaker format did not match", "path", path, "loader", l.Name(), "error", err.Error())
			continue
		}
		if len(regs) > 0 {
			return regs, nil
		}
	}
	return nil, errors.Newf(errors.Config, "Couldn't load tweaker %s", path)
}

func hasSuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// TOMLLoader reads manifests written in TOML.
type TOMLLoader struct{}

func (TOMLLoader) Name() string       { return "toml" }
func (TOMLLoader) Suffixes() []string { return []string{".tweaker.toml"} }

func (TOMLLoader) Load(data []byte) ([]Registrar, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s", undecoded[0])
	}
	return m.Registrars()
}

// YAMLLoader reads manifests written in YAML.
type YAMLLoader struct{}

func (YAMLLoader) Name() string       { return "yaml" }
func (YAMLLoader) Suffixes() []string { return []string{".tweaker.yaml", ".tweaker.yml"} }

func (YAMLLoader) Load(data []byte) ([]Registrar, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, err
	}
	return m.Registrars()
}
