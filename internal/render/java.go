package render

import (
	"fmt"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

const (
	javaImportLimit = 120
	javaDeclLimit   = 180
	javaMethodLimit = 260
)

func renderJava(m *extraction.StructuralMap) string {
	w := &mapWriter{}
	w.header(m.Filename, "Java-lite (line scan)", "method/class")
	w.warnings(m.Diagnostics)
	w.single("## Package", m.Package)
	w.section("## Imports", locatedImports(m.Imports), javaImportLimit)

	decls := make([]string, 0, len(m.Types))
	for _, t := range m.Types {
		decls = append(decls, located(t.Kind.String()+" "+t.Name, t.Line))
	}
	w.section("## Declarations", decls, javaDeclLimit)

	methods := make([]string, 0, len(m.Functions))
	for _, fn := range m.Functions {
		methods = append(methods, located(fmt.Sprintf("%s(%s) : %s", fn.Name, fn.ParamText, fn.Returns), fn.Line))
	}
	w.section("## Methods (lite)", methods, javaMethodLimit)

	return w.String()
}
