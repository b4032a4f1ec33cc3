package config

import (
	"github.com/reuno721/MiniMapPad/internal/minimap"
)

// Config represents the complete minimap configuration.
// It can be loaded from .minimap/config.yml with environment variable overrides.
type Config struct {
	Generate  GenerateConfig  `yaml:"generate" mapstructure:"generate"`
	Redaction RedactionConfig `yaml:"redaction" mapstructure:"redaction"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
	MCP       MCPConfig       `yaml:"mcp" mapstructure:"mcp"`
}

// GenerateConfig configures map generation.
type GenerateConfig struct {
	Language        string `yaml:"language" mapstructure:"language"`                 // auto, python, php, kotlin or java
	Redact          bool   `yaml:"redact" mapstructure:"redact"`                     // mask PII and secrets in the output
	Diagnostics     bool   `yaml:"diagnostics" mapstructure:"diagnostics"`           // include TODO/FIXME warnings
	DiagnosticLimit int    `yaml:"diagnostic_limit" mapstructure:"diagnostic_limit"` // max warning lines
	MaxSourceBytes  int64  `yaml:"max_source_bytes" mapstructure:"max_source_bytes"` // input size guard
}

// RedactionConfig toggles optional redaction passes.
type RedactionConfig struct {
	TokenPatterns bool `yaml:"token_patterns" mapstructure:"token_patterns"`
}

// BatchConfig defines which files a batch run maps and where maps are written.
type BatchConfig struct {
	Include   []string `yaml:"include" mapstructure:"include"`       // glob patterns for source files
	Ignore    []string `yaml:"ignore" mapstructure:"ignore"`         // glob patterns to skip
	OutputDir string   `yaml:"output_dir" mapstructure:"output_dir"` // relative to the batch root unless absolute
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// MCPConfig configures the MCP server.
type MCPConfig struct {
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"` // 0 disables the result cache
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Generate: GenerateConfig{
			Language:        "auto",
			Redact:          true,
			Diagnostics:     true,
			DiagnosticLimit: 12,
			MaxSourceBytes:  2 << 20,
		},
		Redaction: RedactionConfig{
			TokenPatterns: false,
		},
		Batch: BatchConfig{
			Include: []string{
				"**/*.py",
				"**/*.php",
				"**/*.kt",
				"**/*.kts",
				"**/*.java",
			},
			Ignore: []string{
				".git/**",
				".minimap/**",
				"node_modules/**",
				"vendor/**",
				"build/**",
				"dist/**",
				"__pycache__/**",
				"*.pyc",
			},
			OutputDir: ".minimap/maps",
		},
		Watch: WatchConfig{
			DebounceMs: 300,
		},
		MCP: MCPConfig{
			CacheSize: 256,
		},
	}
}

// Selector parses override, or Generate.Language when override is empty.
// Validate guarantees the configured language parses.
func (c *Config) Selector(override string) (minimap.Selector, error) {
	if override != "" {
		return minimap.ParseSelector(override)
	}
	return minimap.ParseSelector(c.Generate.Language)
}

// Options returns the engine options described by the configuration.
func (c *Config) Options() minimap.Options {
	return minimap.Options{
		Redact:          c.Generate.Redact,
		Diagnostics:     c.Generate.Diagnostics,
		TokenPatterns:   c.Redaction.TokenPatterns,
		DiagnosticLimit: c.Generate.DiagnosticLimit,
	}
}
