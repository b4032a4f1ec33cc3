package parsers

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

var (
	phpNamespaceRe = regexp.MustCompile(`^\s*namespace\s+([^;{]+)\s*;`)
	phpUseRe       = regexp.MustCompile(`^\s*use\s+([^;{]+)\s*;`)
	phpConstRe     = regexp.MustCompile(`^\s*const\s+([A-Z0-9_]+)\s*=`)
	phpDefineRe    = regexp.MustCompile(`(?i)\bdefine\s*\(\s*['"]([A-Z0-9_]+)['"]`)

	phpClassRe = regexp.MustCompile(`(?i)^\s*(abstract\s+|final\s+)?(class|interface|trait)\s+([A-Za-z_]\w*)` +
		`(?:\s+extends\s+([A-Za-z_]\w*))?` +
		`(?:\s+implements\s+([\w,\s\\]+?))?(?:\s*\{|$)`)
	phpMethodRe = regexp.MustCompile(`(?i)^\s*(public|protected|private)?\s*(static\s+)?(abstract\s+)?function\s+` +
		`([A-Za-z_]\w*)\s*\(([^)]*)\)(?:\s*:\s*([\w\\?|]+))?`)
	phpGlobalFnRe = regexp.MustCompile(`(?i)^function\s+([A-Za-z_]\w*)\s*\(([^)]*)\)(?:\s*:\s*([\w\\?|]+))?`)

	phpMemberCallRe = regexp.MustCompile(`->\s*([A-Za-z_]\w*)\s*\(`)
	phpStaticCallRe = regexp.MustCompile(`::\s*([A-Za-z_]\w*)\s*\(`)
	phpListSplitRe  = regexp.MustCompile(`[,\s]+`)
)

// PHPScanner is the brace-depth scanner for PHP sources.
type PHPScanner struct{}

// NewPHPScanner creates a new PHP scanner.
func NewPHPScanner() *PHPScanner {
	return &PHPScanner{}
}

// Language returns extraction.LanguagePHP.
func (s *PHPScanner) Language() extraction.Language {
	return extraction.LanguagePHP
}

// Scan extracts namespace, use statements, constants, classes with their
// methods, global functions and call hints.
func (s *PHPScanner) Scan(source string) *extraction.StructuralMap {
	result := extraction.NewStructuralMap(extraction.LanguagePHP)
	stripped := splitLines(stripCommentsAndStrings(source))
	raw := splitLines(source)

	for _, line := range stripped {
		if m := phpNamespaceRe.FindStringSubmatch(line); m != nil {
			result.Package = strings.TrimSpace(m[1])
			break
		}
	}

	depth := 0
	for i, line := range stripped {
		depth += braceDelta(line)
		if depth != 0 {
			continue
		}
		if m := phpUseRe.FindStringSubmatch(line); m != nil {
			if val := strings.TrimSpace(m[1]); strings.Contains(val, `\`) {
				result.Imports = append(result.Imports, extraction.ImportDecl{Text: val, Line: i + 1})
			}
		}
	}

	// Constant names live inside quotes for define(), so these come from the
	// raw lines.
	var defines []extraction.ConstantDecl
	for i, line := range raw {
		if m := phpConstRe.FindStringSubmatch(line); m != nil {
			result.Constants = append(result.Constants, extraction.ConstantDecl{Name: m[1], Line: i + 1, Kind: extraction.ConstPlain})
		}
		if m := phpDefineRe.FindStringSubmatch(line); m != nil {
			defines = append(defines, extraction.ConstantDecl{Name: m[1], Line: i + 1, Kind: extraction.ConstDefine})
		}
	}
	result.Constants = append(result.Constants, defines...)

	s.scanBlocks(stripped, result)
	result.CallHints = phpCallHints(source)
	return result
}

// scanBlocks tracks brace depth to attach methods to the enclosing class and
// keep top-level functions in their own list.
func (s *PHPScanner) scanBlocks(lines []string, result *extraction.StructuralMap) {
	var current *extraction.TypeDecl
	classDepth := 0
	braceDepth := 0

	closeClass := func() {
		if current != nil {
			result.Types = append(result.Types, *current)
			current = nil
		}
	}

	for i, line := range lines {
		lineNo := i + 1

		if m := phpClassRe.FindStringSubmatch(line); m != nil {
			closeClass()
			current = &extraction.TypeDecl{
				Kind: phpTypeKind(m[2]),
				Name: m[3],
				Line: lineNo,
			}
			if m[4] != "" {
				current.Supertypes = []string{m[4]}
			}
			current.Interfaces = splitList(m[5])
			classDepth = braceDepth
			braceDepth += braceDelta(line)
			continue
		}

		braceDepth += braceDelta(line)

		if current != nil && braceDepth <= classDepth {
			closeClass()
			classDepth = 0
			continue
		}

		if current != nil {
			if m := phpMethodRe.FindStringSubmatch(line); m != nil {
				vis := extraction.VisibilityPublic
				if m[1] != "" {
					vis = extraction.ParseVisibility(strings.ToLower(m[1]))
				}
				current.Methods = append(current.Methods, extraction.FunctionSignature{
					Name:       m[4],
					ParamText:  collapseSpace(m[5]),
					Returns:    m[6],
					Visibility: vis,
					Static:     m[2] != "",
					Abstract:   m[3] != "",
					Line:       lineNo,
				})
			}
			continue
		}

		if m := phpGlobalFnRe.FindStringSubmatch(strings.TrimLeftFunc(line, unicode.IsSpace)); m != nil {
			result.Functions = append(result.Functions, extraction.FunctionSignature{
				Name:      m[1],
				ParamText: collapseSpace(m[2]),
				Returns:   m[3],
				Line:      lineNo,
			})
		}
	}
	closeClass()
}

// phpCallHints returns the sorted set of member and static call names. The
// raw source is scanned, so calls inside strings are counted too.
func phpCallHints(source string) []string {
	seen := make(map[string]bool)
	for _, re := range []*regexp.Regexp{phpMemberCallRe, phpStaticCallRe} {
		for _, m := range re.FindAllStringSubmatch(source, -1) {
			seen[m[1]] = true
		}
	}

	hints := make([]string, 0, len(seen))
	for name := range seen {
		hints = append(hints, name)
	}
	sort.Strings(hints)
	return hints
}

func phpTypeKind(kind string) extraction.TypeKind {
	switch strings.ToLower(kind) {
	case "interface":
		return extraction.TypeInterface
	case "trait":
		return extraction.TypeTrait
	default:
		return extraction.TypeClass
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range phpListSplitRe.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}
