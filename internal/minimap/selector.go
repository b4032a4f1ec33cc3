package minimap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

// Selector chooses how Generate picks an extractor.
type Selector int

const (
	// SelectorAuto tries the Python extractor first and falls back to the
	// classifier-chosen scanner.
	SelectorAuto Selector = iota
	// SelectorPrimary forces the Python extractor.
	SelectorPrimary
	// SelectorScannerA forces the PHP scanner.
	SelectorScannerA
	// SelectorScannerB forces the Kotlin scanner.
	SelectorScannerB
	// SelectorScannerC forces the Java scanner.
	SelectorScannerC
)

// ErrUnknownSelector is wrapped by ConfigurationError when a selector name
// is not recognised.
var ErrUnknownSelector = errors.New("unknown language mode")

// ConfigurationError reports an invalid selector value.
type ConfigurationError struct {
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownSelector, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrUnknownSelector
}

var selectorNames = map[string]Selector{
	"auto":        SelectorAuto,
	"python":      SelectorPrimary,
	"php":         SelectorScannerA,
	"kotlin":      SelectorScannerB,
	"kotlin-lite": SelectorScannerB,
	"java":        SelectorScannerC,
	"java-lite":   SelectorScannerC,
}

// ParseSelector accepts auto, python, php, kotlin and java in any letter
// case, plus the display labels Kotlin-lite and Java-lite.
func ParseSelector(s string) (Selector, error) {
	sel, ok := selectorNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return SelectorAuto, &ConfigurationError{Value: s}
	}
	return sel, nil
}

// String returns the canonical lower-case selector name.
func (s Selector) String() string {
	switch s {
	case SelectorPrimary:
		return "python"
	case SelectorScannerA:
		return "php"
	case SelectorScannerB:
		return "kotlin"
	case SelectorScannerC:
		return "java"
	default:
		return "auto"
	}
}

// scannerLanguage returns the language a forced scanner selector runs.
func (s Selector) scannerLanguage() (extraction.Language, bool) {
	switch s {
	case SelectorScannerA:
		return extraction.LanguagePHP, true
	case SelectorScannerB:
		return extraction.LanguageKotlin, true
	case SelectorScannerC:
		return extraction.LanguageJava, true
	default:
		return extraction.LanguageUnknown, false
	}
}

// modeLabel is the display name of the extractor used for lang.
func modeLabel(lang extraction.Language) string {
	switch lang {
	case extraction.LanguagePython:
		return "Python (AST)"
	case extraction.LanguagePHP:
		return "PHP-lite"
	case extraction.LanguageKotlin:
		return "Kotlin-lite"
	case extraction.LanguageJava:
		return "Java-lite"
	default:
		return "unknown"
	}
}
