package parsers

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// maxGlobalValueLen bounds the str() length of a literal kept as a global.
const maxGlobalValueLen = 120

// scalarLiteral is a decoded module-level literal.
type scalarLiteral struct {
	repr string
	// strLen is the rune length of str(value).
	strLen int
}

// literalValue decodes a str/int/float/bool literal node. ok is false for
// anything else, including f-strings, bytes, None and complex numbers.
func literalValue(node *sitter.Node, source []byte) (scalarLiteral, bool) {
	for node != nil && node.Kind() == "parenthesized_expression" && node.NamedChildCount() == 1 {
		node = node.NamedChild(0)
	}
	if node == nil {
		return scalarLiteral{}, false
	}

	text := extractNodeText(node, source)
	switch node.Kind() {
	case "true":
		return scalarLiteral{repr: "True", strLen: 4}, true
	case "false":
		return scalarLiteral{repr: "False", strLen: 5}, true
	case "integer":
		return intLiteral(text)
	case "float":
		return floatLiteral(text)
	case "string":
		s, ok := decodeStringLiteral(text)
		if !ok {
			return scalarLiteral{}, false
		}
		return scalarLiteral{repr: pyStrRepr(s), strLen: utf8.RuneCountInString(s)}, true
	case "concatenated_string":
		var b strings.Builder
		for _, part := range namedChildren(node) {
			if part.Kind() != "string" {
				continue
			}
			s, ok := decodeStringLiteral(extractNodeText(part, source))
			if !ok {
				return scalarLiteral{}, false
			}
			b.WriteString(s)
		}
		s := b.String()
		return scalarLiteral{repr: pyStrRepr(s), strLen: utf8.RuneCountInString(s)}, true
	}
	return scalarLiteral{}, false
}

func intLiteral(text string) (scalarLiteral, bool) {
	if strings.HasSuffix(text, "j") || strings.HasSuffix(text, "J") {
		return scalarLiteral{}, false
	}
	n, ok := new(big.Int).SetString(text, 0)
	if !ok {
		return scalarLiteral{repr: text, strLen: len(text)}, true
	}
	s := n.String()
	return scalarLiteral{repr: s, strLen: len(s)}, true
}

func floatLiteral(text string) (scalarLiteral, bool) {
	if strings.HasSuffix(text, "j") || strings.HasSuffix(text, "J") {
		return scalarLiteral{}, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return scalarLiteral{repr: text, strLen: len(text)}, true
	}
	s := pyFloatRepr(f)
	return scalarLiteral{repr: s, strLen: len(s)}, true
}

// pyFloatRepr formats a float the way Python's repr does.
func pyFloatRepr(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// decodeStringLiteral returns the value of a plain or raw string literal.
// Byte, format and template strings are rejected.
func decodeStringLiteral(text string) (string, bool) {
	idx := strings.IndexAny(text, `'"`)
	if idx < 0 {
		return "", false
	}
	prefix := strings.ToLower(text[:idx])
	if strings.ContainsAny(prefix, "bft") {
		return "", false
	}

	body := text[idx:]
	quoteLen := 1
	if strings.HasPrefix(body, `"""`) || strings.HasPrefix(body, `'''`) {
		quoteLen = 3
	}
	if len(body) < 2*quoteLen {
		return "", false
	}
	body = body[quoteLen : len(body)-quoteLen]
	body = strings.ReplaceAll(body, "\r\n", "\n")

	if strings.ContainsRune(prefix, 'r') {
		return body, true
	}
	return decodeEscapes(body), true
}

var escapeWidth = map[byte]int{'x': 2, 'u': 4, 'U': 8}

func decodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}

		i++
		switch e := s[i]; e {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
		case 'x', 'u', 'U':
			width := escapeWidth[e]
			if i+1+width <= len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += width
					continue
				}
			}
			b.WriteByte('\\')
			b.WriteByte(e)
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String()
}

// pyStrRepr quotes a string the way Python's repr does.
func pyStrRepr(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r > 0x7f && !unicode.IsPrint(r):
			switch {
			case r <= 0xff:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r <= 0xffff:
				fmt.Fprintf(&b, `\u%04x`, r)
			default:
				fmt.Fprintf(&b, `\U%08x`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}

// isUpperName reports whether a name is upper case in the Python str.isupper
// sense: at least one cased rune and no lower-case runes.
func isUpperName(name string) bool {
	cased := false
	for _, r := range name {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
