package parsers

import (
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// splitLines splits source on \n, \r\n and \r. A trailing line break does
// not produce an empty final line.
func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	lines := lineBreak.Split(source, -1)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	slashComment = regexp.MustCompile(`//[^\n]*`)
	hashComment  = regexp.MustCompile(`#[^\n]*`)
	singleQuoted = regexp.MustCompile(`(?s)'(?:\\.|[^'\\])*'`)
	doubleQuoted = regexp.MustCompile(`(?s)"(?:\\.|[^"\\])*"`)
	backQuoted   = regexp.MustCompile("(?s)`(?:\\\\.|[^`\\\\])*`")
)

// stripCommentsAndStrings blanks comments and empties string literals.
// Every newline inside removed text is kept, so line N of the result is
// line N of the input.
func stripCommentsAndStrings(source string) string {
	s := replaceKeepingLines(blockComment, source, " ")
	s = replaceKeepingLines(slashComment, s, " ")
	s = replaceKeepingLines(hashComment, s, " ")
	s = replaceKeepingLines(singleQuoted, s, "''")
	s = replaceKeepingLines(doubleQuoted, s, `""`)
	s = replaceKeepingLines(backQuoted, s, "``")
	return s
}

func replaceKeepingLines(re *regexp.Regexp, s, repl string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		return repl + strings.Repeat("\n", strings.Count(m, "\n"))
	})
}
