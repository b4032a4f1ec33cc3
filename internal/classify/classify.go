// Package classify picks a secondary scanner for source that is not Python.
// It is a heuristic and may misclassify short or mixed-language snippets.
package classify

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

// headLines is how many leading lines are searched for header signals.
const headLines = 120

// tieMargin is the score gap at or below which the tie-break runs.
const tieMargin = 2

// DefaultLanguage is returned when no signal fires at all.
const DefaultLanguage = extraction.LanguageKotlin

// candidates lists the scanner languages in tie order.
var candidates = []extraction.Language{
	extraction.LanguagePHP,
	extraction.LanguageKotlin,
	extraction.LanguageJava,
}

var (
	kotlinPackageRe = regexp.MustCompile(`(?m)^\s*package\s+[a-zA-Z_][\w.]*\s*$`)
	javaPackageRe   = regexp.MustCompile(`(?m)^\s*package\s+[a-zA-Z_][\w.]*\s*;\s*$`)
	kotlinKeywordRe = regexp.MustCompile(`\b(fun|companion\s+object|data\s+class|sealed\s+class|object\s+)\b`)
	phpVarRe        = regexp.MustCompile(`\$\w+`)
)

// Scores holds the weighted score per candidate language.
type Scores map[extraction.Language]int

// Best returns the highest scoring language, earliest candidate first on
// equal scores, together with its score.
func (s Scores) Best() (extraction.Language, int) {
	best, bestScore := candidates[0], s[candidates[0]]
	for _, lang := range candidates[1:] {
		if s[lang] > bestScore {
			best, bestScore = lang, s[lang]
		}
	}
	return best, bestScore
}

// Ranked returns the candidates ordered by descending score. Equal scores
// keep candidate order.
func (s Scores) Ranked() []extraction.Language {
	ranked := append([]extraction.Language(nil), candidates...)
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && s[ranked[j]] > s[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

// Classify resolves the scanner language for source. The file extension of
// filename wins, then header signals, then weighted scoring.
func Classify(source, filename string) extraction.Language {
	if lang, ok := ByExtension(filename); ok {
		return lang
	}
	if lang, ok := byHeader(source); ok {
		return lang
	}

	scores := Score(source)
	if _, best := scores.Best(); best == 0 {
		return DefaultLanguage
	}
	return TieBreak(source, scores)
}

// ByExtension maps .php, .kt, .kts and .java file names to their language.
func ByExtension(filename string) (extraction.Language, bool) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".php":
		return extraction.LanguagePHP, true
	case ".kt", ".kts":
		return extraction.LanguageKotlin, true
	case ".java":
		return extraction.LanguageJava, true
	}
	return extraction.LanguageUnknown, false
}

func byHeader(source string) (extraction.Language, bool) {
	lines := strings.Split(source, "\n")
	if len(lines) > headLines {
		lines = lines[:headLines]
	}
	head := strings.Join(lines, "\n")

	if strings.Contains(strings.ToLower(head), "<?php") {
		return extraction.LanguagePHP, true
	}
	if kotlinPackageRe.MatchString(head) && kotlinKeywordRe.MatchString(source) {
		return extraction.LanguageKotlin, true
	}
	if javaPackageRe.MatchString(head) {
		return extraction.LanguageJava, true
	}
	return extraction.LanguageUnknown, false
}

// TieBreak returns the top scoring language unless the top two are within
// tieMargin. In that case a $variable selects PHP and a Kotlin keyword
// selects Kotlin before falling back to the top score.
func TieBreak(source string, scores Scores) extraction.Language {
	ranked := scores.Ranked()
	if scores[ranked[0]]-scores[ranked[1]] <= tieMargin {
		if phpVarRe.MatchString(source) {
			return extraction.LanguagePHP
		}
		if kotlinKeywordRe.MatchString(source) {
			return extraction.LanguageKotlin
		}
	}
	return ranked[0]
}
