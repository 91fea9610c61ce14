// Package config loads the project identity and run options of nativeabi from a YAML
// file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"nativeabi/internal/safe"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "nativeabi.yaml"

// ErrMissingProjectInfo is returned when the header path cannot be derived.
var ErrMissingProjectInfo = errors.New("missing project information")

// Config is the complete run configuration.
type Config struct {
	// RootNamespace becomes the C++ namespace of the header, dots turned into `::`.
	RootNamespace string `yaml:"rootNamespace" env:"NATIVEABI_ROOT_NAMESPACE"`
	AssemblyName  string `yaml:"assemblyName" env:"NATIVEABI_ASSEMBLY_NAME"`
	ProjectDir    string `yaml:"projectDir" env:"NATIVEABI_PROJECT_DIR"`
	// Platform selects the default calling convention (windows or anything else).
	Platform string `yaml:"platform" env:"NATIVEABI_PLATFORM"`
	// Workers bounds concurrent per-function analysis.
	Workers int       `yaml:"workers" env:"NATIVEABI_WORKERS"`
	Log     LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"NATIVEABI_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"NATIVEABI_LOG_PRETTY"`
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		Platform: runtime.GOOS,
		Workers:  runtime.GOMAXPROCS(0),
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error when path is the default file name.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultFileName
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	if path != "" {
		data, err := safe.ReadFile(path, 0)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := LoadFromEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to apply environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the options that have a fixed range.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// ProjectInfo reports ErrMissingProjectInfo naming every empty project field.
func (c *Config) ProjectInfo() error {
	var missing []string
	if c.RootNamespace == "" {
		missing = append(missing, "rootNamespace")
	}
	if c.AssemblyName == "" {
		missing = append(missing, "assemblyName")
	}
	if c.ProjectDir == "" {
		missing = append(missing, "projectDir")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingProjectInfo, strings.Join(missing, ", "))
	}
	return nil
}
