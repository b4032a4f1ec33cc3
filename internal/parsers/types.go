package parsers

import "github.com/reuno721/MiniMapPad/internal/extraction"

// Scanner is a heuristic line scanner for a secondary language. Scanners
// never fail on malformed input.
type Scanner interface {
	Language() extraction.Language
	Scan(source string) *extraction.StructuralMap
}

// NewScanner returns the scanner for lang, or nil when lang has none.
func NewScanner(lang extraction.Language) Scanner {
	switch lang {
	case extraction.LanguagePHP:
		return NewPHPScanner()
	case extraction.LanguageKotlin:
		return NewKotlinScanner()
	case extraction.LanguageJava:
		return NewJavaScanner()
	default:
		return nil
	}
}
