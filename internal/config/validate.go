package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/files"
	"github.com/reuno721/MiniMapPad/internal/minimap"
)

const maxDiagnosticLimit = 200

var (
	// ErrInvalidLanguage indicates an unknown generate.language value
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidLimit indicates a diagnostic or size limit out of range
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidPattern indicates a batch glob that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrEmptyInclude indicates no batch include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrEmptyOutputDir indicates a missing batch output directory
	ErrEmptyOutputDir = errors.New("empty output directory")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidCacheSize indicates a negative MCP cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")
)

// Validate checks that the configuration is valid and complete. All
// problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateGenerate(&cfg.Generate); err != nil {
		errs = append(errs, err)
	}

	if err := validateBatch(&cfg.Batch); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	if cfg.MCP.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.MCP.CacheSize))
	}

	return joinErrors(errs)
}

func validateGenerate(cfg *GenerateConfig) error {
	var errs []error

	if _, err := minimap.ParseSelector(cfg.Language); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be auto, python, php, kotlin or java, got '%s'", ErrInvalidLanguage, cfg.Language))
	}

	if cfg.DiagnosticLimit < 1 || cfg.DiagnosticLimit > maxDiagnosticLimit {
		errs = append(errs, fmt.Errorf("%w: diagnostic_limit must be between 1 and %d, got %d", ErrInvalidLimit, maxDiagnosticLimit, cfg.DiagnosticLimit))
	}

	if cfg.MaxSourceBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_source_bytes must be positive, got %d", ErrInvalidLimit, cfg.MaxSourceBytes))
	}

	return joinErrors(errs)
}

func validateBatch(cfg *BatchConfig) error {
	var errs []error

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude))
	}

	for _, pattern := range append(append([]string(nil), cfg.Include...), cfg.Ignore...) {
		if _, err := files.CompilePattern(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if strings.TrimSpace(cfg.OutputDir) == "" {
		errs = append(errs, fmt.Errorf("%w: output_dir is required", ErrEmptyOutputDir))
	}

	return joinErrors(errs)
}

// validationErrors formats several failures as one error while keeping
// each one reachable through errors.Is and errors.As.
type validationErrors []error

func (e validationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e validationErrors) Unwrap() []error {
	return e
}

// joinErrors combines multiple errors into a single error with clear
// formatting. Nested validation errors are flattened.
func joinErrors(errs []error) error {
	var flat validationErrors
	for _, err := range errs {
		var nested validationErrors
		if errors.As(err, &nested) {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, err)
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return flat
	}
}
