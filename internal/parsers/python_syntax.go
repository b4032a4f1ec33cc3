package parsers

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/reuno721/MiniMapPad/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/text/unicode/runenames"
)

const (
	msgInvalidSyntax    = "invalid syntax"
	msgUnexpectedIndent = "unexpected indent"
	msgBadDedent        = "unindent does not match any outer indentation level"
	msgUnknownRuneName  = "(unicode error) 'unicodeescape' codec can't decode bytes: unknown Unicode character name"
	msgIllegalRune      = "(unicode error) 'unicodeescape' codec can't decode bytes: illegal Unicode character"
)

var utf8BOM = []byte("\xef\xbb\xbf")

var (
	// typeAliasRe matches a real PEP 695 alias. tree-sitter also reads
	// `type(obj).attr = v` as an alias statement.
	typeAliasRe = regexp.MustCompile(`^type(?:[ \t\f]|\\\r?\n)+[\p{L}_][\p{L}\p{N}_]*\s*[\[=]`)

	// legacyOctalRe matches decimal literals with a leading zero, like 0777.
	legacyOctalRe = regexp.MustCompile(`^0+[1-9][0-9_]*$`)
)

// syntaxError reports the first construct the Python 3.11 compiler rejects.
// tree-sitter recovers from several of these without producing an ERROR
// node, so the tree is checked again after the error scan.
func syntaxError(root *sitter.Node, source []byte) *extraction.ParseError {
	if n := firstSyntaxError(root); n != nil {
		msg := msgInvalidSyntax
		if n.IsMissing() {
			msg = fmt.Sprintf("invalid syntax: missing %s", n.Kind())
		}
		return parseErrorAt(n, msg)
	}

	c := &syntaxChecker{source: source}
	if bytes.HasPrefix(source, utf8BOM) {
		c.bomLen = uint(len(utf8BOM))
	}
	walkTree(root, c.visit)
	return c.err
}

func parseErrorAt(n *sitter.Node, msg string) *extraction.ParseError {
	pos := n.StartPosition()
	return &extraction.ParseError{Message: msg, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
}

type syntaxChecker struct {
	source []byte
	bomLen uint
	err    *extraction.ParseError
}

func (c *syntaxChecker) fail(n *sitter.Node, msg string) {
	if c.err == nil {
		c.err = parseErrorAt(n, msg)
	}
}

func (c *syntaxChecker) visit(n *sitter.Node) bool {
	if c.err != nil {
		return false
	}

	switch n.Kind() {
	case "print_statement":
		// `print >> f, x` is a valid tuple expression in Python 3.
		if findChildByType(n, "chevron") == nil {
			c.fail(n, "Missing parentheses in call to 'print'")
		}
	case "exec_statement":
		c.fail(n, "Missing parentheses in call to 'exec'")
	case "module", "block":
		c.checkIndentation(n)
	case "if_statement", "for_statement", "while_statement":
		c.checkClauses(n)
	case "try_statement":
		c.checkClauses(n)
		c.checkHandlers(n)
	case "argument_list":
		c.checkArguments(n)
	case "parameters", "lambda_parameters":
		c.checkDefaults(n)
	case "string":
		c.checkEscapes(n)
	case "integer":
		if legacyOctalRe.MatchString(extractNodeText(n, c.source)) {
			c.fail(n, "leading zeros in decimal integer literals are not permitted; use an 0o prefix for octal integers")
		}
	case "expression_statement":
		// A bare walrus needs parentheses.
		if first := n.NamedChild(0); first != nil && first.Kind() == "named_expression" {
			c.fail(first, msgInvalidSyntax)
		}
	case "assignment":
		c.checkAnnotatedTarget(n)
	case "delete_statement":
		c.checkDeleteTargets(n)
	case "function_definition", "class_definition":
		// Generic definitions arrived in 3.12.
		if params := n.ChildByFieldName("type_parameters"); params != nil {
			c.fail(params, msgInvalidSyntax)
		}
	case "type_alias_statement":
		if typeAliasRe.Match(c.source[n.StartByte():n.EndByte()]) {
			c.fail(n, msgInvalidSyntax)
		}
	}
	return c.err == nil
}

// column returns the indentation column of n, ignoring a leading BOM.
func (c *syntaxChecker) column(n *sitter.Node) uint {
	pos := n.StartPosition()
	if pos.Row == 0 && pos.Column >= c.bomLen {
		return pos.Column - c.bomLen
	}
	return pos.Column
}

// checkIndentation requires every statement that opens a line in body to
// start at the same column. Module statements start at column 0.
func (c *syntaxChecker) checkIndentation(body *sitter.Node) {
	var (
		want    uint
		started bool
		lastRow uint
		prev    *sitter.Node
	)
	for _, stmt := range namedChildren(body) {
		if stmt.Kind() == "comment" {
			continue
		}
		row := stmt.StartPosition().Row
		if started && row == lastRow {
			prev = stmt
			continue
		}
		lastRow = row
		last := prev
		prev = stmt

		col := c.column(stmt)
		if !started {
			started = true
			want = col
			if body.Kind() == "module" && col != 0 {
				c.fail(stmt, msgUnexpectedIndent)
				return
			}
			continue
		}
		if col > want {
			// Shallower than the line before it means a dedent that missed
			// every enclosing level.
			if last != nil && c.lineIndent(innermostStatement(last).StartByte()) > col {
				c.fail(stmt, msgBadDedent)
			} else {
				c.fail(stmt, msgUnexpectedIndent)
			}
			return
		}
		if col < want {
			c.fail(stmt, msgBadDedent)
			return
		}
	}
}

// lineIndent returns the leading whitespace width of the line holding the
// byte at offset.
func (c *syntaxChecker) lineIndent(offset uint) uint {
	start := bytes.LastIndexByte(c.source[:offset], '\n') + 1
	if start == 0 {
		start = int(c.bomLen)
	}
	end := start
	for end < len(c.source) && (c.source[end] == ' ' || c.source[end] == '\t' || c.source[end] == '\f') {
		end++
	}
	return uint(end - start)
}

// innermostStatement follows trailing blocks down to the last simple
// statement stmt encloses.
func innermostStatement(stmt *sitter.Node) *sitter.Node {
	for {
		var last *sitter.Node
		for _, child := range namedChildren(stmt) {
			if child.Kind() != "comment" {
				last = child
			}
		}
		if last == nil {
			return stmt
		}
		switch {
		case last.Kind() == "block":
			var inner *sitter.Node
			for _, child := range namedChildren(last) {
				if child.Kind() != "comment" {
					inner = child
				}
			}
			if inner == nil {
				return stmt
			}
			stmt = inner
		case strings.HasSuffix(last.Kind(), "_clause"), strings.HasSuffix(last.Kind(), "_definition"):
			stmt = last
		default:
			return stmt
		}
	}
}

// checkHandlers requires a try statement to have an except or finally clause.
func (c *syntaxChecker) checkHandlers(stmt *sitter.Node) {
	for _, clause := range namedChildren(stmt) {
		switch clause.Kind() {
		case "except_clause", "except_group_clause", "finally_clause":
			return
		}
	}
	c.fail(stmt, "expected 'except' or 'finally' block")
}

// checkDefaults rejects a plain parameter after a defaulted one, unless a
// bare * or *args has already made the rest keyword-only.
func (c *syntaxChecker) checkDefaults(params *sitter.Node) {
	var defaulted, keywordOnly bool
	for _, p := range namedChildren(params) {
		switch p.Kind() {
		case "default_parameter", "typed_default_parameter":
			defaulted = true
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			keywordOnly = true
		case "identifier", "typed_parameter":
			if p.Kind() == "typed_parameter" &&
				(findChildByType(p, "list_splat_pattern") != nil || findChildByType(p, "dictionary_splat_pattern") != nil) {
				keywordOnly = true
				continue
			}
			if defaulted && !keywordOnly {
				c.fail(p, "non-default argument follows default argument")
				return
			}
		}
	}
}

// checkAnnotatedTarget rejects an annotation on a tuple or list target.
func (c *syntaxChecker) checkAnnotatedTarget(assign *sitter.Node) {
	if assign.ChildByFieldName("type") == nil {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil {
		return
	}
	switch left.Kind() {
	case "tuple", "tuple_pattern":
		// (a) is a single parenthesized target.
		if left.NamedChildCount() != 1 || findChildByType(left, ",") != nil {
			c.fail(left, "only single target (not tuple) can be annotated")
		}
	case "pattern_list", "expression_list":
		c.fail(left, "only single target (not tuple) can be annotated")
	case "list", "list_pattern":
		c.fail(left, "only single target (not list) can be annotated")
	}
}

// checkDeleteTargets rejects `del f()`.
func (c *syntaxChecker) checkDeleteTargets(stmt *sitter.Node) {
	targets := namedChildren(stmt)
	if len(targets) == 1 && targets[0].Kind() == "expression_list" {
		targets = namedChildren(targets[0])
	}
	for _, t := range targets {
		if t.Kind() == "call" {
			c.fail(t, "cannot delete function call")
			return
		}
	}
}

// checkClauses requires elif, else, except and finally to line up with the
// statement they continue.
func (c *syntaxChecker) checkClauses(stmt *sitter.Node) {
	row := stmt.StartPosition().Row
	col := c.column(stmt)
	for _, clause := range namedChildren(stmt) {
		switch clause.Kind() {
		case "elif_clause", "else_clause", "except_clause", "except_group_clause", "finally_clause":
			if clause.StartPosition().Row != row && c.column(clause) != col {
				c.fail(clause, msgInvalidSyntax)
				return
			}
		}
	}
}

// checkArguments enforces call argument order: no positional argument after
// a keyword argument, and neither a positional nor *iterable after **mapping.
func (c *syntaxChecker) checkArguments(args *sitter.Node) {
	var keyword, mapping bool
	for _, arg := range namedChildren(args) {
		switch arg.Kind() {
		case "comment", "line_continuation":
		case "keyword_argument":
			keyword = true
		case "dictionary_splat":
			mapping = true
		case "list_splat":
			if mapping {
				c.fail(arg, "iterable argument unpacking follows keyword argument unpacking")
				return
			}
		default:
			if mapping {
				c.fail(arg, "positional argument follows keyword argument unpacking")
				return
			}
			if keyword {
				c.fail(arg, "positional argument follows keyword argument")
				return
			}
		}
	}
}

// checkEscapes validates \N{...} and \U escapes in text string literals.
// Raw and bytes literals have no such escapes.
func (c *syntaxChecker) checkEscapes(str *sitter.Node) {
	prefix := strings.ToLower(strings.TrimRight(extractNodeText(findChildByType(str, "string_start"), c.source), `'"`))
	if strings.ContainsAny(prefix, "rb") {
		return
	}

	for _, content := range namedChildren(str) {
		if content.Kind() != "string_content" {
			continue
		}
		for _, esc := range namedChildren(content) {
			if esc.Kind() != "escape_sequence" {
				continue
			}
			if msg := escapeError(extractNodeText(esc, c.source)); msg != "" {
				c.fail(esc, msg)
				return
			}
		}
	}
}

func escapeError(esc string) string {
	switch {
	case strings.HasPrefix(esc, `\N{`) && strings.HasSuffix(esc, "}"):
		if !knownRuneName(esc[3 : len(esc)-1]) {
			return msgUnknownRuneName
		}
	case strings.HasPrefix(esc, `\U`):
		if v, err := strconv.ParseUint(esc[2:], 16, 32); err == nil && v > unicode.MaxRune {
			return msgIllegalRune
		}
	}
	return ""
}

// Names generated from code points rather than listed individually.
var algorithmicNamePrefixes = []string{
	"CJK UNIFIED IDEOGRAPH-",
	"HANGUL SYLLABLE ",
	"TANGUT IDEOGRAPH-",
	"KHITAN SMALL SCRIPT CHARACTER-",
	"NUSHU CHARACTER-",
}

// Common aliases for control characters, which have no listed name.
var runeNameAliases = map[string]bool{
	"NULL": true, "NUL": true, "BELL": true, "BACKSPACE": true,
	"CHARACTER TABULATION": true, "HORIZONTAL TABULATION": true, "TAB": true,
	"LINE FEED": true, "NEW LINE": true, "LF": true, "NL": true, "EOL": true,
	"LINE TABULATION": true, "VERTICAL TABULATION": true,
	"FORM FEED": true, "FF": true, "CARRIAGE RETURN": true, "CR": true,
	"ESCAPE": true, "ESC": true, "DELETE": true, "DEL": true,
	"NEXT LINE": true, "NEL": true, "BYTE ORDER MARK": true, "BOM": true,
	"ZWSP": true, "ZWJ": true, "ZWNJ": true, "NBSP": true,
}

var (
	runeNamesOnce sync.Once
	runeNames     map[string]struct{}
)

// knownRuneName reports whether name (case-insensitive) names a character.
// The name table is built on first use.
func knownRuneName(name string) bool {
	name = strings.ToUpper(name)
	if runeNameAliases[name] {
		return true
	}
	for _, prefix := range algorithmicNamePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	runeNamesOnce.Do(func() {
		runeNames = make(map[string]struct{}, 1<<16)
		for r := rune(0); r <= unicode.MaxRune; r++ {
			if n := runenames.Name(r); n != "" && n[0] != '<' {
				runeNames[n] = struct{}{}
			}
		}
	})
	_, ok := runeNames[name]
	return ok
}
