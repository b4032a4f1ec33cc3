package parsers

import (
	"fmt"
	"strings"

	"github.com/reuno721/MiniMapPad/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// maxCalls bounds the call references kept per function.
const maxCalls = 12

// unknownText replaces a decorator, base or return annotation that could
// not be reconstructed.
const unknownText = "unknown"

// PythonExtractor builds structural maps from Python source using the
// tree-sitter Python grammar.
type PythonExtractor struct {
	language *sitter.Language
}

// NewPythonExtractor creates a new Python extractor.
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{
		language: sitter.NewLanguage(python.Language()),
	}
}

// Extract parses source and returns its structural map. A *extraction.ParseError
// is returned when the source is not valid Python.
func (p *PythonExtractor) Extract(source string) (*extraction.StructuralMap, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to load python grammar: %w", err)
	}

	src := []byte(source)
	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, &extraction.ParseError{Message: "failed to parse source"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if err := syntaxError(root, src); err != nil {
		return nil, err
	}

	w := &pythonWalker{
		source:      src,
		topLevelFns: topLevelFunctionNames(root, src),
		result:      extraction.NewStructuralMap(extraction.LanguagePython),
	}
	for _, child := range namedChildren(root) {
		w.visitModuleChild(child)
	}
	return w.result, nil
}

// topLevelFunctionNames collects the names of functions defined directly in
// the module body.
func topLevelFunctionNames(root *sitter.Node, source []byte) map[string]bool {
	names := make(map[string]bool)
	for _, child := range namedChildren(root) {
		def, _ := unwrapDecorated(child)
		if def != nil && def.Kind() == "function_definition" {
			names[extractNodeText(def.ChildByFieldName("name"), source)] = true
		}
	}
	return names
}

// unwrapDecorated returns the definition inside a decorated_definition along
// with the wrapper. Other nodes are returned unchanged with a nil wrapper.
func unwrapDecorated(node *sitter.Node) (*sitter.Node, *sitter.Node) {
	if node.Kind() != "decorated_definition" {
		return node, nil
	}
	return node.ChildByFieldName("definition"), node
}

type pythonWalker struct {
	source      []byte
	topLevelFns map[string]bool
	result      *extraction.StructuralMap
}

func (w *pythonWalker) visitModuleChild(node *sitter.Node) {
	switch node.Kind() {
	case "import_statement", "import_from_statement", "future_import_statement":
		w.result.Imports = append(w.result.Imports, extraction.ImportDecl{Text: w.importText(node)})

	case "expression_statement":
		if node.NamedChildCount() == 1 && node.NamedChild(0).Kind() == "assignment" {
			w.visitAssignment(node.NamedChild(0))
		}

	case "function_definition", "class_definition", "decorated_definition":
		def, wrapper := unwrapDecorated(node)
		if def == nil {
			return
		}
		if def.Kind() == "function_definition" {
			w.result.Functions = append(w.result.Functions, w.functionSignature(def, wrapper))
		} else if def.Kind() == "class_definition" {
			w.result.Types = append(w.result.Types, w.classDecl(def))
		}
	}
}

// importText rebuilds an import statement in canonical form.
func (w *pythonWalker) importText(node *sitter.Node) string {
	moduleNode := node.ChildByFieldName("module_name")

	var names []string
	for _, child := range namedChildren(node) {
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			names = append(names, dottedText(child, w.source))
		case "aliased_import":
			name := dottedText(child.ChildByFieldName("name"), w.source)
			alias := extractNodeText(child.ChildByFieldName("alias"), w.source)
			names = append(names, name+" as "+alias)
		case "wildcard_import":
			names = append(names, "*")
		}
	}

	switch node.Kind() {
	case "import_statement":
		return "import " + strings.Join(names, ", ")
	case "future_import_statement":
		return "from __future__ import " + strings.Join(names, ", ")
	default:
		return "from " + dottedText(moduleNode, w.source) + " import " + strings.Join(names, ", ")
	}
}

func dottedText(node *sitter.Node, source []byte) string {
	return strings.Join(strings.Fields(extractNodeText(node, source)), "")
}

func (w *pythonWalker) visitAssignment(node *sitter.Node) {
	line := nodeLine(node)

	if node.ChildByFieldName("type") != nil {
		target := node.ChildByFieldName("left")
		if target != nil && target.Kind() == "identifier" {
			name := extractNodeText(target, w.source)
			if isUpperName(name) {
				w.result.Constants = append(w.result.Constants, extraction.ConstantDecl{Name: name, Line: line})
			}
		}
		return
	}

	var targets []*sitter.Node
	value := node
	for value != nil && value.Kind() == "assignment" {
		targets = append(targets, value.ChildByFieldName("left"))
		value = value.ChildByFieldName("right")
	}

	var upper []string
	for _, t := range targets {
		if t == nil || t.Kind() != "identifier" {
			continue
		}
		if name := extractNodeText(t, w.source); isUpperName(name) {
			upper = append(upper, name)
		}
	}
	if len(upper) > 0 {
		w.result.Constants = append(w.result.Constants, extraction.ConstantDecl{Name: strings.Join(upper, ", "), Line: line})
		return
	}

	if len(targets) != 1 || targets[0] == nil || targets[0].Kind() != "identifier" {
		return
	}
	name := extractNodeText(targets[0], w.source)
	if strings.HasPrefix(name, "_") {
		return
	}
	lit, ok := literalValue(value, w.source)
	if !ok || lit.strLen > maxGlobalValueLen {
		return
	}
	w.result.Globals = append(w.result.Globals, extraction.GlobalBinding{Name: name, Value: lit.repr, Line: line})
}

func (w *pythonWalker) classDecl(node *sitter.Node) extraction.TypeDecl {
	decl := extraction.TypeDecl{
		Kind: extraction.TypeClass,
		Name: extractNodeText(node.ChildByFieldName("name"), w.source),
		Line: nodeLine(node),
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for _, base := range namedChildren(supers) {
			switch base.Kind() {
			case "keyword_argument", "dictionary_splat", "comment", "line_continuation":
				continue
			}
			decl.Supertypes = append(decl.Supertypes, w.reconstruct(base))
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for _, item := range namedChildren(body) {
			def, wrapper := unwrapDecorated(item)
			if def != nil && def.Kind() == "function_definition" {
				decl.Methods = append(decl.Methods, w.functionSignature(def, wrapper))
			}
		}
	}

	return decl
}

func (w *pythonWalker) functionSignature(def, wrapper *sitter.Node) extraction.FunctionSignature {
	sig := extraction.FunctionSignature{
		Name:   extractNodeText(def.ChildByFieldName("name"), w.source),
		Params: w.parameters(def.ChildByFieldName("parameters")),
		Line:   nodeLine(def),
		Async:  def.ChildCount() > 0 && def.Child(0).Kind() == "async",
	}

	if ret := def.ChildByFieldName("return_type"); ret != nil {
		sig.Returns = w.reconstruct(ret)
	}

	var decorators []*sitter.Node
	if wrapper != nil {
		for _, d := range namedChildren(wrapper) {
			if d.Kind() == "decorator" {
				decorators = append(decorators, d)
				expr := d.NamedChild(0)
				if expr == nil {
					sig.Decorators = append(sig.Decorators, unknownText)
					continue
				}
				sig.Decorators = append(sig.Decorators, w.reconstruct(expr))
			}
		}
	}

	sig.Calls, sig.CallsOmitted = w.collectCalls(def, decorators)
	return sig
}

// parameters flattens a parameter list, prefixing var-positional and
// var-keyword parameters with * and **.
func (w *pythonWalker) parameters(node *sitter.Node) []string {
	var params []string
	for _, param := range namedChildren(node) {
		if name := w.parameterName(param); name != "" {
			params = append(params, name)
		}
	}
	return params
}

func (w *pythonWalker) parameterName(param *sitter.Node) string {
	switch param.Kind() {
	case "identifier":
		return extractNodeText(param, w.source)
	case "default_parameter", "typed_default_parameter":
		return w.parameterName(param.ChildByFieldName("name"))
	case "typed_parameter":
		if param.NamedChildCount() > 0 {
			return w.parameterName(param.NamedChild(0))
		}
	case "list_splat_pattern":
		if id := findChildByType(param, "identifier"); id != nil {
			return "*" + extractNodeText(id, w.source)
		}
	case "dictionary_splat_pattern":
		if id := findChildByType(param, "identifier"); id != nil {
			return "**" + extractNodeText(id, w.source)
		}
	}
	return ""
}

// collectCalls gathers callee names that are top-level functions of the
// module, visiting the parameters, body, decorators and return annotation in
// that order. The returned list holds at most maxCalls names; omitted counts
// the distinct matches beyond the cap.
func (w *pythonWalker) collectCalls(def *sitter.Node, decorators []*sitter.Node) ([]string, int) {
	seen := make(map[string]bool)
	var calls []string

	visit := func(n *sitter.Node) bool {
		if n.Kind() != "call" {
			return true
		}
		if name := calleeName(n.ChildByFieldName("function"), w.source); name != "" && w.topLevelFns[name] && !seen[name] {
			seen[name] = true
			calls = append(calls, name)
		}
		return true
	}

	walkTree(def.ChildByFieldName("parameters"), visit)
	walkTree(def.ChildByFieldName("body"), visit)
	for _, d := range decorators {
		walkTree(d, visit)
	}
	walkTree(def.ChildByFieldName("return_type"), visit)

	if len(calls) > maxCalls {
		return calls[:maxCalls], len(calls) - maxCalls
	}
	return calls, 0
}

// calleeName returns the called identifier for name(...) and the trailing
// attribute for obj.attr(...).
func calleeName(fn *sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return extractNodeText(fn, source)
	case "attribute":
		return extractNodeText(fn.ChildByFieldName("attribute"), source)
	}
	return ""
}

// reconstruct renders an expression as single-line source text.
func (w *pythonWalker) reconstruct(node *sitter.Node) string {
	text := collapsedText(node, w.source)
	if text == "" {
		return unknownText
	}
	return text
}
