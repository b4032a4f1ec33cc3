package parsers

import (
	"regexp"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

var (
	javaPackageRe = regexp.MustCompile(`^package\s+([^;]+)\s*;`)
	javaImportRe  = regexp.MustCompile(`^import\s+([^;]+)\s*;`)
	javaDeclRe    = regexp.MustCompile(`^(?:public\s+)?(?:abstract\s+|final\s+)?(class|interface|enum|record)\s+([A-Za-z_]\w*)`)
	javaMethodRe  = regexp.MustCompile(`^(?:public|protected|private)?\s*(?:static\s+)?(?:final\s+)?(?:synchronized\s+)?` +
		`([A-Za-z_][\w<>\[\]]*)\s+([A-Za-z_]\w*)\s*\(([^)]*)\)`)
)

// controlFlowPrefixes are line prefixes that look like method headers but
// start statements.
var controlFlowPrefixes = []string{"if", "for", "while", "switch", "return", "throw", "new "}

// JavaScanner is the line scanner for Java sources.
type JavaScanner struct{}

// NewJavaScanner creates a new Java scanner.
func NewJavaScanner() *JavaScanner {
	return &JavaScanner{}
}

// Language returns extraction.LanguageJava.
func (s *JavaScanner) Language() extraction.Language {
	return extraction.LanguageJava
}

// Scan extracts package, imports, type declarations and method headers.
func (s *JavaScanner) Scan(source string) *extraction.StructuralMap {
	result := extraction.NewStructuralMap(extraction.LanguageJava)

	for i, raw := range splitLines(source) {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if m := javaPackageRe.FindStringSubmatch(line); m != nil && result.Package == "" {
			result.Package = strings.TrimSpace(m[1])
			continue
		}

		if m := javaImportRe.FindStringSubmatch(line); m != nil {
			result.Imports = append(result.Imports, extraction.ImportDecl{Text: strings.TrimSpace(m[1]), Line: lineNo})
			continue
		}

		if m := javaDeclRe.FindStringSubmatch(line); m != nil {
			result.Types = append(result.Types, extraction.TypeDecl{Kind: javaTypeKind(m[1]), Name: m[2], Line: lineNo})
			continue
		}

		if hasControlFlowPrefix(line) {
			continue
		}

		if m := javaMethodRe.FindStringSubmatch(line); m != nil {
			result.Functions = append(result.Functions, extraction.FunctionSignature{
				Name:      m[2],
				ParamText: collapseSpace(m[3]),
				Returns:   m[1],
				Line:      lineNo,
			})
		}
	}

	return result
}

func hasControlFlowPrefix(line string) bool {
	for _, p := range controlFlowPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func javaTypeKind(kind string) extraction.TypeKind {
	switch kind {
	case "interface":
		return extraction.TypeInterface
	case "enum":
		return extraction.TypeEnum
	case "record":
		return extraction.TypeRecord
	default:
		return extraction.TypeClass
	}
}
