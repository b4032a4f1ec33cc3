package classify

import (
	"regexp"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

// signal adds weight to a language when its pattern matches. Counted
// signals add weight once per match.
type signal struct {
	lang    extraction.Language
	pattern *regexp.Regexp
	weight  int
	counted bool
}

func newSignal(lang extraction.Language, pattern string, weight int) signal {
	return signal{lang: lang, pattern: regexp.MustCompile(pattern), weight: weight}
}

func countedSignal(lang extraction.Language, pattern string, weight int) signal {
	s := newSignal(lang, pattern, weight)
	s.counted = true
	return s
}

var signals = []signal{
	countedSignal(extraction.LanguagePHP, `\$\w+`, 4),
	countedSignal(extraction.LanguagePHP, `->\s*[A-Za-z_]\w*\s*\(`, 3),
	countedSignal(extraction.LanguagePHP, `::\s*[A-Za-z_]\w*\s*\(`, 3),
	newSignal(extraction.LanguagePHP, `(?m)^\s*namespace\s+[^;{]+\s*;`, 8),
	newSignal(extraction.LanguagePHP, `(?m)^\s*use\s+[^;]+\s*;`, 4),
	newSignal(extraction.LanguagePHP, `\bfunction\s+\w+\s*\(`, 2),

	newSignal(extraction.LanguageKotlin, `(?m)^\s*fun\s+\w+\s*\(`, 10),
	newSignal(extraction.LanguageKotlin, `\b(private|public|internal|protected|suspend|inline|override)\s+fun\s+\w+\s*\(`, 10),
	newSignal(extraction.LanguageKotlin, `\boverride\s+fun\s+\w+\s*\(`, 8),
	newSignal(extraction.LanguageKotlin, `\b(companion\s+object|data\s+class|sealed\s+class|object\s+)\b`, 8),
	newSignal(extraction.LanguageKotlin, `\bval\s+\w+\s*[:=]|\bvar\s+\w+\s*[:=]`, 3),
	newSignal(extraction.LanguageKotlin, `\bwhen\s*\(`, 2),
	newSignal(extraction.LanguageKotlin, `@Composable\b`, 6),
	newSignal(extraction.LanguageKotlin, `\bby\s+remember`, 8),

	newSignal(extraction.LanguageJava, `(?m)^\s*import\s+[\w.]+\s*;\s*$`, 4),
	newSignal(extraction.LanguageJava, `\b(public|protected|private)\s+(class|interface|enum|record)\s+\w+`, 9),
	newSignal(extraction.LanguageJava, `\bstatic\b`, 2),
}

// Score computes the weighted signal score of source for every candidate.
func Score(source string) Scores {
	scores := make(Scores, len(candidates))
	for _, lang := range candidates {
		scores[lang] = 0
	}

	for _, s := range signals {
		if s.counted {
			scores[s.lang] += s.weight * len(s.pattern.FindAllStringIndex(source, -1))
			continue
		}
		if s.pattern.MatchString(source) {
			scores[s.lang] += s.weight
		}
	}
	return scores
}
