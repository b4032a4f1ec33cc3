package render

import (
	"fmt"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

const (
	phpUseLimit      = 80
	phpConstLimit    = 120
	phpMethodLimit   = 60
	phpFunctionLimit = 200
	phpCallHintLimit = 18
)

func renderPHP(m *extraction.StructuralMap) string {
	w := &mapWriter{}
	w.header(m.Filename, "PHP-lite (regex/token scan)", "function/class")
	w.warnings(m.Diagnostics)
	w.single("## Namespace", m.Package)

	uses := make([]string, 0, len(m.Imports))
	for _, u := range m.Imports {
		uses = append(uses, u.Text)
	}
	w.section("## Use", uses, phpUseLimit)

	var consts, defines []string
	for _, c := range m.Constants {
		if c.Kind == extraction.ConstDefine {
			defines = append(defines, located(c.Name, c.Line))
		} else {
			consts = append(consts, located(c.Name, c.Line))
		}
	}
	if len(consts) > 0 || len(defines) > 0 {
		w.add("## Constants")
		w.items("- const ", consts, phpConstLimit)
		w.items("- define ", defines, phpConstLimit)
		w.add("")
	}

	if len(m.Types) > 0 {
		w.add("## Classes / Interfaces / Traits")
		for _, cls := range m.Types {
			w.add(located("- "+phpTypeHeader(cls), cls.Line))
			methods := make([]string, 0, len(cls.Methods))
			for _, method := range cls.Methods {
				methods = append(methods, phpMethod(method))
			}
			w.items("    - ", methods, phpMethodLimit)
		}
		w.add("")
	}

	functions := make([]string, 0, len(m.Functions))
	for _, fn := range m.Functions {
		functions = append(functions, located(fmt.Sprintf("function %s(%s)%s", fn.Name, fn.ParamText, phpReturn(fn)), fn.Line))
	}
	w.section("## Global Functions", functions, phpFunctionLimit)

	if len(m.CallHints) > 0 {
		w.add("## Call Hints (-> / ::)")
		shown := m.CallHints
		if len(shown) > phpCallHintLimit {
			shown = shown[:phpCallHintLimit]
		}
		w.add("- " + strings.Join(shown, ", "))
		if len(shown) < len(m.CallHints) {
			w.add(overflow("- ", len(m.CallHints)-len(shown)))
		}
		w.add("")
	}

	return w.String()
}

func phpTypeHeader(cls extraction.TypeDecl) string {
	header := cls.Kind.String() + " " + cls.Name
	if len(cls.Supertypes) > 0 {
		header += " extends " + cls.Supertypes[0]
	}
	if len(cls.Interfaces) > 0 {
		header += " implements " + strings.Join(cls.Interfaces, ", ")
	}
	return header
}

// phpMethod formats "[pub/static/abstract] function name(args) : ret  [Ln]".
func phpMethod(fn extraction.FunctionSignature) string {
	tags := []string{fn.Visibility.Abbrev()}
	if fn.Static {
		tags = append(tags, "static")
	}
	if fn.Abstract {
		tags = append(tags, "abstract")
	}
	return located(fmt.Sprintf("[%s] function %s(%s)%s", strings.Join(tags, "/"), fn.Name, fn.ParamText, phpReturn(fn)), fn.Line)
}

func phpReturn(fn extraction.FunctionSignature) string {
	if fn.Returns == "" {
		return ""
	}
	return " : " + fn.Returns
}
