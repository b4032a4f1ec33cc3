// Package minimap turns a single source file into a read-only code map.
//
// Generate picks an extractor from the Selector, renders the resulting
// structural map and optionally redacts it. It is synchronous, keeps no
// state between calls and never logs.
package minimap

import (
	"fmt"
	"path/filepath"

	"github.com/reuno721/MiniMapPad/internal/classify"
	"github.com/reuno721/MiniMapPad/internal/extraction"
	"github.com/reuno721/MiniMapPad/internal/parsers"
	"github.com/reuno721/MiniMapPad/internal/redact"
	"github.com/reuno721/MiniMapPad/internal/render"
)

const (
	autoPrefix   = "Auto → "
	autoFallback = "Auto (lite fallback)"
	partial      = " (partial)"
)

// Source is one unit of input.
type Source struct {
	Text string
	// FilenameHint is an optional path; only its base name is used.
	FilenameHint string
	Selector     Selector
}

// Options toggles the optional output stages.
type Options struct {
	Redact          bool
	Diagnostics     bool
	TokenPatterns   bool
	DiagnosticLimit int
}

// DefaultOptions enables redaction and diagnostics with the default limit.
func DefaultOptions() Options {
	return Options{
		Redact:          true,
		Diagnostics:     true,
		DiagnosticLimit: parsers.DefaultDiagnosticLimit,
	}
}

// Result is a rendered map.
type Result struct {
	Text      string
	ModeLabel string
	Language  extraction.Language
	Degraded  bool
}

// Generate builds the code map for src.
//
// With SelectorPrimary a Python syntax error is returned as a
// *extraction.ParseError. With SelectorAuto the error is swallowed and the
// classifier picks a scanner. Scanner failures never surface as errors; they
// produce a degraded placeholder map instead.
func Generate(src Source, opts Options) (*Result, error) {
	filename := ""
	if src.FilenameHint != "" {
		filename = filepath.Base(src.FilenameHint)
	}

	var diagnostics []extraction.DiagnosticLine
	if opts.Diagnostics {
		diagnostics = parsers.FindDiagnostics(src.Text, opts.DiagnosticLimit)
	}

	var (
		m   *extraction.StructuralMap
		res = &Result{}
	)

	switch src.Selector {
	case SelectorPrimary:
		var err error
		m, err = extractPython(src.Text)
		if err != nil {
			return nil, err
		}
		res.ModeLabel = modeLabel(extraction.LanguagePython)

	case SelectorAuto:
		if pm, err := extractPython(src.Text); err == nil {
			m = pm
			res.ModeLabel = autoPrefix + modeLabel(extraction.LanguagePython)
			break
		}
		lang := classify.Classify(src.Text, filename)
		m = scan(lang, src.Text, autoFallback)
		if m.Degraded != nil {
			res.ModeLabel = autoPrefix + "lite" + partial
		} else {
			res.ModeLabel = autoPrefix + modeLabel(lang)
		}

	case SelectorScannerA, SelectorScannerB, SelectorScannerC:
		lang, _ := src.Selector.scannerLanguage()
		m = scan(lang, src.Text, modeLabel(lang))
		res.ModeLabel = modeLabel(lang)
		if m.Degraded != nil {
			res.ModeLabel += partial
		}

	default:
		return nil, &ConfigurationError{Value: fmt.Sprintf("selector(%d)", int(src.Selector))}
	}

	m.Filename = filename
	m.Diagnostics = diagnostics

	res.Language = m.Language
	res.Degraded = m.Degraded != nil
	res.Text = render.Render(m)
	if opts.Redact {
		res.Text = redact.Redact(res.Text, redact.Options{TokenPatterns: opts.TokenPatterns})
	}
	return res, nil
}

// extractPython runs the primary extractor. A panic inside the extractor is
// reported as an error so Auto can still fall back.
func extractPython(source string) (m *extraction.StructuralMap, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("python extraction failed: %v", r)
		}
	}()
	return parsers.NewPythonExtractor().Extract(source)
}

// scan runs the scanner for lang. A panic becomes a degraded map whose
// placeholder shows degradedMode.
func scan(lang extraction.Language, source, degradedMode string) *extraction.StructuralMap {
	return runScanner(parsers.NewScanner(lang), lang, source, degradedMode)
}

func runScanner(scanner parsers.Scanner, lang extraction.Language, source, degradedMode string) (m *extraction.StructuralMap) {
	degrade := func(msg string) *extraction.StructuralMap {
		d := extraction.NewStructuralMap(lang)
		d.Degraded = &extraction.Degradation{Mode: degradedMode, Message: msg}
		return d
	}
	defer func() {
		if r := recover(); r != nil {
			m = degrade(fmt.Sprint(r))
		}
	}()

	if scanner == nil {
		return degrade(fmt.Sprintf("no scanner for %s", lang))
	}
	return scanner.Scan(source)
}
