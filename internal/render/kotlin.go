package render

import (
	"fmt"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/extraction"
)

const (
	kotlinImportLimit   = 120
	kotlinDeclLimit     = 160
	kotlinCompanionCap  = 40
	kotlinTopLevelLimit = 220
	kotlinStateVarLimit = 80
	kotlinEffectLimit   = 40
	kotlinLocalLimit    = 100
	kotlinGuardLimit    = 60
)

func renderKotlin(m *extraction.StructuralMap) string {
	w := &mapWriter{}
	w.header(m.Filename, "Kotlin-lite (Compose-aware)", "function/class")
	w.warnings(m.Diagnostics)
	w.single("## Package", m.Package)
	w.section("## Imports", locatedImports(m.Imports), kotlinImportLimit)

	decls := make([]string, 0, len(m.Types))
	for _, t := range m.Types {
		decls = append(decls, located(kotlinKind(t.Kind)+" "+t.Name, t.Line))
	}
	w.section("## Declarations", decls, kotlinDeclLimit)

	w.section("## Companion Object", markers(m.Companions, "%s"), kotlinCompanionCap)
	w.section("## Top-level Functions", kotlinFunctions(m.Functions), kotlinTopLevelLimit)
	w.section("## State Vars (remember / rememberSaveable)", markers(m.StateVars, "var %s"), kotlinStateVarLimit)
	w.section("## Effect / Scope Blocks", markers(m.EffectBlocks, "%s(...)"), kotlinEffectLimit)
	w.section("## Local Functions (in Composable)", kotlinFunctions(m.LocalFunctions), kotlinLocalLimit)
	w.section("## UI Overlay Guards (if-blocks / let-blocks)", markers(m.OverlayGuards, "%s"), kotlinGuardLimit)

	return w.String()
}

func kotlinKind(k extraction.TypeKind) string {
	if k == extraction.TypeEnum {
		return "enum class"
	}
	return k.String()
}

// kotlinFunctions formats "fun name(args) [@A @B]  [Ln]".
func kotlinFunctions(fns []extraction.FunctionSignature) []string {
	out := make([]string, 0, len(fns))
	for _, fn := range fns {
		sig := fmt.Sprintf("fun %s(%s)", fn.Name, fn.ParamText)
		if len(fn.Annotations) > 0 {
			sig += " [" + strings.Join(fn.Annotations, " ") + "]"
		}
		out = append(out, located(sig, fn.Line))
	}
	return out
}

func locatedImports(imports []extraction.ImportDecl) []string {
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		out = append(out, located(imp.Text, imp.Line))
	}
	return out
}
