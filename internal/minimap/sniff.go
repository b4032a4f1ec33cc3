package minimap

import (
	"path/filepath"

	"github.com/reuno721/MiniMapPad/internal/classify"
	"github.com/reuno721/MiniMapPad/internal/extraction"
)

// SniffReport explains how Auto mode would treat a source.
type SniffReport struct {
	// Scanner is the scanner language the classifier picks.
	Scanner extraction.Language
	// ByExtension is set when the filename extension decided Scanner.
	ByExtension bool
	// Scores holds the weighted content scores per scanner language.
	Scores classify.Scores
	// PythonParses reports whether the primary extractor accepts the source,
	// in which case Auto never consults the classifier.
	PythonParses bool
}

// AutoLabel is the mode label Auto would report, ignoring scanner failures.
func (r *SniffReport) AutoLabel() string {
	if r.PythonParses {
		return autoPrefix + modeLabel(extraction.LanguagePython)
	}
	return autoPrefix + modeLabel(r.Scanner)
}

// Sniff runs the classifier and the primary parse check without rendering.
func Sniff(text, filenameHint string) *SniffReport {
	filename := ""
	if filenameHint != "" {
		filename = filepath.Base(filenameHint)
	}

	_, byExt := classify.ByExtension(filename)
	_, err := extractPython(text)

	return &SniffReport{
		Scanner:      classify.Classify(text, filename),
		ByExtension:  byExt,
		Scores:       classify.Score(text),
		PythonParses: err == nil,
	}
}
