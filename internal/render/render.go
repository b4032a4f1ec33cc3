// Package render serialises structural maps into the plain-text code map.
package render

import (
	"fmt"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

const (
	mapHeader     = "### CODE MAP (READ-ONLY) ###"
	ruleStructure = "Rule: This is a structure map. Do NOT rewrite code."
	warningsTitle = "## Warnings (TODO/FIXME/HACK/TEMP)"
	scanFailed    = "[Lite scan failed]"
)

// Render serialises m. The same map always renders to the same text.
func Render(m *extraction.StructuralMap) string {
	if m.Degraded != nil {
		return Degraded(m.Degraded)
	}

	switch m.Language {
	case extraction.LanguagePHP:
		return renderPHP(m)
	case extraction.LanguageKotlin:
		return renderKotlin(m)
	case extraction.LanguageJava:
		return renderJava(m)
	default:
		return renderPython(m)
	}
}

// Degraded renders the placeholder for a scan that failed part-way.
func Degraded(d *extraction.Degradation) string {
	return fmt.Sprintf("%s\nMode: %s\n\n%s\n%s", mapHeader, d.Mode, scanFailed, d.Message)
}

// mapWriter accumulates output lines.
type mapWriter struct {
	lines []string
}

// header writes the fixed preamble. mode may be empty.
func (w *mapWriter) header(filename, mode, askFor string) {
	if filename == "" {
		filename = "-"
	}
	w.add(mapHeader, "File: "+filename)
	if mode != "" {
		w.add("Mode: " + mode)
	}
	w.add(ruleStructure, fmt.Sprintf("Rule: Ask for a specific %s block when needed.", askFor), "")
}

func (w *mapWriter) add(lines ...string) {
	w.lines = append(w.lines, lines...)
}

// section writes a titled list of "- item" lines capped at limit, followed
// by an overflow marker and a blank line. Empty sections are skipped.
// A limit of zero or less means no cap.
func (w *mapWriter) section(title string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	w.add(title)
	w.items("- ", items, limit)
	w.add("")
}

func (w *mapWriter) items(prefix string, items []string, limit int) {
	shown := items
	if limit > 0 && len(items) > limit {
		shown = items[:limit]
	}
	for _, item := range shown {
		w.add(prefix + item)
	}
	if len(shown) < len(items) {
		w.add(overflow(prefix, len(items)-len(shown)))
	}
}

func (w *mapWriter) warnings(diags []extraction.DiagnosticLine) {
	items := make([]string, 0, len(diags))
	for _, d := range diags {
		items = append(items, fmt.Sprintf("L%d: %s", d.Line, d.Text))
	}
	w.section(warningsTitle, items, 0)
}

func (w *mapWriter) single(title, value string) {
	if value == "" {
		return
	}
	w.add(title, "- "+value, "")
}

func (w *mapWriter) String() string {
	return strings.Join(w.lines, "\n")
}

func overflow(prefix string, n int) string {
	return fmt.Sprintf("%s... (+%d more)", prefix, n)
}

// located formats "text  [Ln]".
func located(text string, line int) string {
	return fmt.Sprintf("%s  [L%d]", text, line)
}

func markers(ms []extraction.Marker, format string) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, located(fmt.Sprintf(format, m.Name), m.Line))
	}
	return out
}
