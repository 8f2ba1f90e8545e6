// Package config loads project-level defaults from xmlshred.yaml. Values
// from the file seed CLI flags; explicit flags and environment variables
// take precedence.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// CompileConfig holds compiler limits. Zero values mean "use default".
type CompileConfig struct {
	FlattenDepth      int `yaml:"flatten_depth,omitempty"`
	MaxRecursionDepth int `yaml:"max_recursion_depth,omitempty"`
	MaxColumns        int `yaml:"max_columns,omitempty"`
	MaxIdentifier     int `yaml:"max_identifier,omitempty"`
}

// ProjectConfig is the on-disk shape of xmlshred.yaml.
type ProjectConfig struct {
	Schema      string        `yaml:"schema"`
	RootElement string        `yaml:"root_element"`
	Connection  string        `yaml:"connection"`
	Documents   string        `yaml:"documents,omitempty"`
	Output      string        `yaml:"output,omitempty"`
	Audit       bool          `yaml:"audit,omitempty"`
	Compile     CompileConfig `yaml:"compile,omitempty"`
}

const ConfigFileName = "xmlshred.yaml"

// Load reads xmlshred.yaml from the given directory.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
