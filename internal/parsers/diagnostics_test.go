package parsers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/reuno721/MiniMapPad/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FindDiagnostics:
// - Tags are matched case-insensitively
// - Only comment-ish lines are kept; identifiers containing a tag are not
// - Text is left-trimmed and truncated to 160 runes plus "..."
// - The limit stops the scan; non-positive limits use the default
// - Line numbers are 1-based

func TestFindDiagnostics_Filtering(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"x = 1  # TODO: fix",
		"todo_list = []",
		"    // fixme later",
		"/* HACK */ call()",
		"temp_value = get_temp()",
		"end() */ temp",
	}, "\n")

	got := FindDiagnostics(source, 12)
	require.Len(t, got, 4)

	assert.Equal(t, extraction.DiagnosticLine{Line: 1, Text: "x = 1  # TODO: fix", Tag: extraction.TagTODO}, got[0])
	assert.Equal(t, extraction.DiagnosticLine{Line: 3, Text: "// fixme later", Tag: extraction.TagFIXME}, got[1])
	assert.Equal(t, extraction.TagHACK, got[2].Tag)
	assert.Equal(t, 4, got[2].Line)
	assert.Equal(t, extraction.TagTEMP, got[3].Tag)
	assert.Equal(t, 6, got[3].Line)
}

func TestFindDiagnostics_Truncation(t *testing.T) {
	t.Parallel()

	line := "# TODO " + strings.Repeat("é", 200)
	got := FindDiagnostics(line, 0)
	require.Len(t, got, 1)

	runes := []rune(got[0].Text)
	assert.Len(t, runes, 163)
	assert.True(t, strings.HasSuffix(got[0].Text, "..."))
}

func TestFindDiagnostics_Limit(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("// TODO item %d", i))
	}
	source := strings.Join(lines, "\n")

	// Test: default limit
	assert.Len(t, FindDiagnostics(source, 0), DefaultDiagnosticLimit)

	// Test: explicit limit
	got := FindDiagnostics(source, 3)
	require.Len(t, got, 3)
	assert.Equal(t, 3, got[2].Line)
}

func TestFindDiagnostics_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FindDiagnostics("", 12))
	assert.Empty(t, FindDiagnostics("print('no tags here')\n", 12))
}
