package extraction

import "fmt"

// Language identifies the language a structural map was extracted for.
type Language int

const (
	LanguageUnknown Language = iota
	LanguagePython
	LanguagePHP
	LanguageKotlin
	LanguageJava
)

// String returns the lower-case language name.
func (l Language) String() string {
	switch l {
	case LanguagePython:
		return "python"
	case LanguagePHP:
		return "php"
	case LanguageKotlin:
		return "kotlin"
	case LanguageJava:
		return "java"
	default:
		return "unknown"
	}
}

// MarshalText encodes the language by name.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// TypeKind is the declared kind of a type.
type TypeKind int

const (
	TypeClass TypeKind = iota
	TypeInterface
	TypeTrait
	TypeObject
	TypeEnum
	TypeRecord
)

// String returns the keyword used for the kind. Kotlin enums render as
// "enum class" and are handled by the renderer.
func (k TypeKind) String() string {
	switch k {
	case TypeInterface:
		return "interface"
	case TypeTrait:
		return "trait"
	case TypeObject:
		return "object"
	case TypeEnum:
		return "enum"
	case TypeRecord:
		return "record"
	default:
		return "class"
	}
}

func (k TypeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Visibility is a declared access modifier.
type Visibility int

const (
	VisibilityUnspecified Visibility = iota
	VisibilityPublic
	VisibilityProtected
	VisibilityPrivate
	VisibilityInternal
)

// ParseVisibility maps a modifier keyword to a Visibility.
func ParseVisibility(s string) Visibility {
	switch s {
	case "public":
		return VisibilityPublic
	case "protected":
		return VisibilityProtected
	case "private":
		return VisibilityPrivate
	case "internal":
		return VisibilityInternal
	default:
		return VisibilityUnspecified
	}
}

// Abbrev returns the three-letter form used in PHP method lines.
func (v Visibility) Abbrev() string {
	switch v {
	case VisibilityProtected:
		return "pro"
	case VisibilityPrivate:
		return "pri"
	case VisibilityInternal:
		return "int"
	default:
		return "pub"
	}
}

// Tag is a diagnostic marker found in a comment.
type Tag int

const (
	TagTODO Tag = iota
	TagFIXME
	TagHACK
	TagTEMP
)

func (t Tag) String() string {
	switch t {
	case TagFIXME:
		return "FIXME"
	case TagHACK:
		return "HACK"
	case TagTEMP:
		return "TEMP"
	default:
		return "TODO"
	}
}

func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ConstantKind distinguishes class/file constants from PHP define() calls.
type ConstantKind int

const (
	ConstPlain ConstantKind = iota
	ConstDefine
)

// ImportDecl is an import or use statement. Line is zero when unknown.
type ImportDecl struct {
	Text string
	Line int
}

// ConstantDecl is a declared constant. Name may hold several comma-joined
// targets of a chained assignment.
type ConstantDecl struct {
	Name string
	Line int
	Kind ConstantKind
}

// GlobalBinding is a module-level binding to a short scalar literal.
// Value holds the literal in Python repr form.
type GlobalBinding struct {
	Name  string
	Value string
	Line  int
}

// FunctionSignature describes a function or method header.
type FunctionSignature struct {
	Name string
	// Params is the ordered parameter list with "*" and "**" prefixes.
	Params []string
	// ParamText is the whitespace-collapsed raw parameter text.
	ParamText   string
	Returns     string
	Decorators  []string
	Annotations []string
	Line        int
	Async       bool
	Visibility  Visibility
	Static      bool
	Abstract    bool
	// Calls lists sibling top-level functions called from the body.
	Calls        []string
	CallsOmitted int
}

// TypeDecl describes a class-like declaration.
type TypeDecl struct {
	Kind       TypeKind
	Name       string
	Supertypes []string
	Interfaces []string
	Line       int
	Methods    []FunctionSignature
}

// DiagnosticLine is a comment line carrying a TODO-style tag.
type DiagnosticLine struct {
	Line int
	Text string
	Tag  Tag
}

// Marker is a named source location such as an effect block or a state var.
type Marker struct {
	Name string
	Line int
}

// Degradation marks a map whose scanner failed part-way.
type Degradation struct {
	Mode    string
	Message string
}

// StructuralMap is the full extraction result for one source file.
type StructuralMap struct {
	Language Language
	// Filename is the display name shown in the header.
	Filename    string
	Diagnostics []DiagnosticLine

	// Package holds the Kotlin/Java package or the PHP namespace.
	Package   string
	Imports   []ImportDecl
	Constants []ConstantDecl
	Globals   []GlobalBinding
	Types     []TypeDecl
	Functions []FunctionSignature

	CallHints      []string
	Companions     []Marker
	StateVars      []Marker
	EffectBlocks   []Marker
	OverlayGuards  []Marker
	LocalFunctions []FunctionSignature

	Degraded *Degradation
}

// NewStructuralMap returns an empty map for the given language.
func NewStructuralMap(lang Language) *StructuralMap {
	return &StructuralMap{Language: lang}
}

// ParseError reports source the primary extractor could not parse.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (L%d:%d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}
