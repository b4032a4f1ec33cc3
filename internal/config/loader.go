package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project configuration directory.
const DirName = ".minimap"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	file    string
}

// NewLoader creates a loader that looks for .minimap/config.yml or
// .minimap/config.yaml under rootDir. A missing file is not an error.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader for an explicit config file. The file must
// exist.
func NewFileLoader(path string) Loader {
	return &loader{
		file: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (MINIMAP_*)
// 2. Config file
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	// Replace . with _ in env var names (e.g., MINIMAP_GENERATE_LANGUAGE)
	v.SetEnvPrefix("MINIMAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("generate.language")
	v.BindEnv("generate.redact")
	v.BindEnv("generate.diagnostics")
	v.BindEnv("generate.diagnostic_limit")
	v.BindEnv("generate.max_source_bytes")

	v.BindEnv("redaction.token_patterns")

	v.BindEnv("batch.output_dir")

	v.BindEnv("watch.debounce_ms")

	v.BindEnv("mcp.cache_size")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("generate.language", defaults.Generate.Language)
	v.SetDefault("generate.redact", defaults.Generate.Redact)
	v.SetDefault("generate.diagnostics", defaults.Generate.Diagnostics)
	v.SetDefault("generate.diagnostic_limit", defaults.Generate.DiagnosticLimit)
	v.SetDefault("generate.max_source_bytes", defaults.Generate.MaxSourceBytes)

	v.SetDefault("redaction.token_patterns", defaults.Redaction.TokenPatterns)

	v.SetDefault("batch.include", defaults.Batch.Include)
	v.SetDefault("batch.ignore", defaults.Batch.Ignore)
	v.SetDefault("batch.output_dir", defaults.Batch.OutputDir)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	v.SetDefault("mcp.cache_size", defaults.MCP.CacheSize)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
