package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

const (
	pythonImportLimit   = 60
	pythonConstantLimit = 100
	pythonGlobalLimit   = 120

	// unknownReturn is the placeholder the extractor uses for a return
	// annotation it could not reconstruct.
	unknownReturn = "unknown"
)

var entryPrefixes = []string{"run_", "entry_", "cli_"}

func renderPython(m *extraction.StructuralMap) string {
	w := &mapWriter{}
	w.header(m.Filename, "", "function")
	w.warnings(m.Diagnostics)

	imports := make([]string, 0, len(m.Imports))
	for _, imp := range m.Imports {
		imports = append(imports, imp.Text)
	}
	w.section("## Imports (top-level)", imports, pythonImportLimit)

	constants := make([]string, 0, len(m.Constants))
	for _, c := range m.Constants {
		constants = append(constants, c.Name)
	}
	w.section("## Constants (UPPER_CASE)", constants, pythonConstantLimit)

	globals := make([]string, 0, len(m.Globals))
	for _, g := range m.Globals {
		globals = append(globals, g.Name+" = "+g.Value)
	}
	w.section("## Globals (lite)", globals, pythonGlobalLimit)

	if len(m.Types) > 0 {
		w.add("## Classes")
		for _, cls := range m.Types {
			base := ""
			if len(cls.Supertypes) > 0 {
				base = "(" + strings.Join(cls.Supertypes, ", ") + ")"
			}
			w.add(located("- class "+cls.Name+base, cls.Line))
			for _, method := range cls.Methods {
				w.add("    - " + pythonDef(method, isPrivateMethod(method.Name)))
			}
		}
		w.add("")
	}

	if len(m.Functions) > 0 {
		w.add("## Functions (top-level)")
		for _, fn := range sortedFunctions(m.Functions) {
			w.add("- " + pythonDef(fn, strings.HasPrefix(fn.Name, "_")))
		}
		w.add("")
	}

	return w.String()
}

// pythonDef formats a def line:
// def name(args) -> ret [async] (private)  [Ln] @deco  calls: a, b
func pythonDef(fn extraction.FunctionSignature, private bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "def %s(%s)", fn.Name, strings.Join(fn.Params, ", "))
	if fn.Returns != "" && fn.Returns != unknownReturn {
		b.WriteString(" -> " + fn.Returns)
	}
	if fn.Async {
		b.WriteString(" [async]")
	}
	if private {
		b.WriteString(" (private)")
	}
	fmt.Fprintf(&b, "  [L%d]", fn.Line)
	if len(fn.Decorators) > 0 {
		b.WriteString(" @" + strings.Join(fn.Decorators, ", "))
	}
	if len(fn.Calls) > 0 {
		b.WriteString("  calls: " + strings.Join(fn.Calls, ", "))
		if fn.CallsOmitted > 0 {
			fmt.Fprintf(&b, ", ... (+%d more)", fn.CallsOmitted)
		}
	}
	return b.String()
}

// isPrivateMethod reports a single leading underscore. Dunder names are not
// private.
func isPrivateMethod(name string) bool {
	return strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__")
}

// sortedFunctions orders main first, then entry-point prefixes, then the
// rest, each group by declaration line.
func sortedFunctions(fns []extraction.FunctionSignature) []extraction.FunctionSignature {
	sorted := append([]extraction.FunctionSignature(nil), fns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := functionPriority(sorted[i].Name), functionPriority(sorted[j].Name)
		if pi != pj {
			return pi < pj
		}
		return sorted[i].Line < sorted[j].Line
	})
	return sorted
}

func functionPriority(name string) int {
	name = strings.ToLower(name)
	if name == "main" {
		return 0
	}
	for _, p := range entryPrefixes {
		if strings.HasPrefix(name, p) {
			return 1
		}
	}
	return 9
}
