package parsers

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

const (
	annotationLookback = 6
	maxAnnotations     = 4
	// topLevelIndent is the indentation below which a function counts as
	// top-level.
	topLevelIndent = 4
)

var (
	ktPackageRe  = regexp.MustCompile(`^package\s+(.+)$`)
	ktImportRe   = regexp.MustCompile(`^import\s+(.+)$`)
	ktDeclRe     = regexp.MustCompile(`^(?:data\s+|sealed\s+|open\s+|abstract\s+)?(class|interface|object|enum\s+class)\s+([A-Za-z_]\w*)`)
	ktStateVarRe = regexp.MustCompile(`^(?:var|val)\s+(\w+)\s+by\s+remember(?:Saveable)?`)
	ktEffectRe   = regexp.MustCompile(`^(LaunchedEffect|DisposableEffect|SideEffect|rememberCoroutineScope)\s*\(`)
	ktShowGuard  = regexp.MustCompile(`^if\s*\(\s*(show\w+|overlay\w+)`)
	ktResetGuard = regexp.MustCompile(`^if\s*\(\s*(reset\w*(?:Index|One|All)\b)`)
	ktIfCondRe   = regexp.MustCompile(`^if\s*\(\s*(\w+)`)
	ktLetGuard   = regexp.MustCompile(`^(\w+)\?\.let\s*\{`)
	ktAnnotRe    = regexp.MustCompile(`^@([A-Za-z_]\w*)`)
	ktFunRe      = regexp.MustCompile(`^(?:(?:public|private|protected|internal)\s+)?` +
		`(?:(?:final|open|abstract)\s+)?` +
		`(?:(?:override|suspend|inline|tailrec|operator|infix|external)\s+)*` +
		`fun\s+([A-Za-z_]\w*)\s*\((.*)\)`)
)

// KotlinScanner is the annotation and indentation aware scanner for Kotlin
// and Jetpack Compose sources.
type KotlinScanner struct{}

// NewKotlinScanner creates a new Kotlin scanner.
func NewKotlinScanner() *KotlinScanner {
	return &KotlinScanner{}
}

// Language returns extraction.LanguageKotlin.
func (s *KotlinScanner) Language() extraction.Language {
	return extraction.LanguageKotlin
}

// Scan extracts package, imports, declarations, companion objects,
// top-level and local functions and the Compose idioms.
func (s *KotlinScanner) Scan(source string) *extraction.StructuralMap {
	result := extraction.NewStructuralMap(extraction.LanguageKotlin)
	lines := splitLines(source)
	guardsSeen := make(map[string]bool)

	addGuard := func(cond, text string, line int) {
		if guardsSeen[cond] {
			return
		}
		guardsSeen[cond] = true
		result.OverlayGuards = append(result.OverlayGuards, extraction.Marker{Name: text, Line: line})
	}

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		indent := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))

		if m := ktPackageRe.FindStringSubmatch(line); m != nil && result.Package == "" {
			result.Package = strings.TrimSpace(m[1])
			continue
		}

		if m := ktImportRe.FindStringSubmatch(line); m != nil {
			result.Imports = append(result.Imports, extraction.ImportDecl{Text: strings.TrimSpace(m[1]), Line: lineNo})
			continue
		}

		if strings.Contains(line, "companion object") {
			result.Companions = append(result.Companions, extraction.Marker{Name: "companion object", Line: lineNo})
		}

		if m := ktDeclRe.FindStringSubmatch(line); m != nil {
			result.Types = append(result.Types, extraction.TypeDecl{Kind: kotlinTypeKind(m[1]), Name: m[2], Line: lineNo})
			continue
		}

		if m := ktStateVarRe.FindStringSubmatch(line); m != nil {
			result.StateVars = append(result.StateVars, extraction.Marker{Name: m[1], Line: lineNo})
			continue
		}

		if m := ktEffectRe.FindStringSubmatch(line); m != nil {
			result.EffectBlocks = append(result.EffectBlocks, extraction.Marker{Name: m[1], Line: lineNo})
		}

		if ktShowGuard.MatchString(line) || ktResetGuard.MatchString(line) {
			cond := truncateRunes(line, 30)
			if m := ktIfCondRe.FindStringSubmatch(line); m != nil {
				cond = m[1]
			}
			addGuard(cond, "if ("+cond+")", lineNo)
		} else if m := ktLetGuard.FindStringSubmatch(line); m != nil {
			addGuard(m[1], m[1]+"?.let { }", lineNo)
		}

		if m := ktFunRe.FindStringSubmatch(line); m != nil {
			annotations := previousAnnotations(lines, i)
			sig := extraction.FunctionSignature{
				Name:        m[1],
				ParamText:   collapseSpace(m[2]),
				Annotations: annotations,
				Line:        lineNo,
			}
			if hasAnnotation(annotations, "@Composable") || indent < topLevelIndent {
				result.Functions = append(result.Functions, sig)
			} else {
				result.LocalFunctions = append(result.LocalFunctions, sig)
			}
		}
	}

	return result
}

// previousAnnotations walks upward from the line at idx over blank and
// annotation lines, returning the annotation names in source order. Lines
// with file-scope annotations are skipped. At most maxAnnotations are kept
// and "@..." marks the rest.
func previousAnnotations(lines []string, idx int) []string {
	var tags []string
	start := idx - annotationLookback
	if start < 0 {
		start = 0
	}

	for k := idx - 1; k >= start; k-- {
		t := strings.TrimSpace(lines[k])
		if t == "" || strings.HasPrefix(t, "@file:") {
			continue
		}
		if !strings.HasPrefix(t, "@") {
			break
		}
		if m := ktAnnotRe.FindStringSubmatch(t); m != nil {
			tags = append(tags, "@"+m[1])
		}
	}

	for l, r := 0, len(tags)-1; l < r; l, r = l+1, r-1 {
		tags[l], tags[r] = tags[r], tags[l]
	}
	if len(tags) > maxAnnotations {
		tags = append(tags[:maxAnnotations:maxAnnotations], "@...")
	}
	return tags
}

func hasAnnotation(annotations []string, name string) bool {
	for _, a := range annotations {
		if a == name {
			return true
		}
	}
	return false
}

func kotlinTypeKind(kind string) extraction.TypeKind {
	switch {
	case kind == "interface":
		return extraction.TypeInterface
	case kind == "object":
		return extraction.TypeObject
	case strings.HasPrefix(kind, "enum"):
		return extraction.TypeEnum
	default:
		return extraction.TypeClass
	}
}
