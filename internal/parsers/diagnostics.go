package parsers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

const (
	// DefaultDiagnosticLimit is the number of warning lines kept by default.
	DefaultDiagnosticLimit = 12

	maxDiagnosticRunes = 160
)

var diagnosticTags = []extraction.Tag{
	extraction.TagTODO,
	extraction.TagFIXME,
	extraction.TagHACK,
	extraction.TagTEMP,
}

// FindDiagnostics returns up to limit comment-looking lines that mention
// TODO, FIXME, HACK or TEMP in any letter case. A non-positive limit uses
// DefaultDiagnosticLimit.
func FindDiagnostics(source string, limit int) []extraction.DiagnosticLine {
	if limit <= 0 {
		limit = DefaultDiagnosticLimit
	}

	var out []extraction.DiagnosticLine
	for i, raw := range splitLines(source) {
		tag, ok := findTag(strings.ToUpper(raw))
		if !ok {
			continue
		}

		trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
		if !isCommentish(raw, trimmed) {
			continue
		}

		out = append(out, extraction.DiagnosticLine{
			Line: i + 1,
			Text: truncateRunes(trimmed, maxDiagnosticRunes),
			Tag:  tag,
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

func findTag(upper string) (extraction.Tag, bool) {
	for _, tag := range diagnosticTags {
		if strings.Contains(upper, tag.String()) {
			return tag, true
		}
	}
	return 0, false
}

func isCommentish(raw, trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "//") ||
		strings.Contains(raw, " #") ||
		strings.Contains(raw, " //") ||
		strings.Contains(raw, "/*") ||
		strings.Contains(raw, "*/")
}

// truncateRunes shortens s to n runes followed by "..." when it is longer.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
