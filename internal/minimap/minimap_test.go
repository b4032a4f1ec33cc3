package minimap

import (
	"errors"
	"strings"
	"testing"

	"github.com/reuno721/MiniMapPad/internal/extraction"
	"github.com/reuno721/MiniMapPad/internal/redact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Generate:
// - Auto uses the Python extractor when the source parses
// - Auto falls back to the classifier-chosen scanner on a Python syntax error
// - Auto also falls back on source tree-sitter recovers from but Python rejects
// - Valid Python that resembles those errors stays on the primary extractor
// - Primary surfaces the ParseError with line information
// - Forced scanners run regardless of content
// - Scanner panics become a degraded placeholder, never an error
// - Redaction and diagnostics follow Options
// - Only the base name of the filename hint reaches the header
// - Output is deterministic
// - ParseSelector accepts canonical names and display labels

const pythonSource = `import os

contact = "ops@example.com"


def main():  # TODO: add flags
    return os.getcwd()
`

const phpSource = `<?php
namespace App;

class Foo
{
    public function bar($x)
    {
        return $x;
    }
}
`

const kotlinSource = `package com.example

import androidx.compose.runtime.Composable

@Composable
fun Screen() {
    val state by remember { mutableStateOf(0) }
}
`

func TestGenerate_AutoPython(t *testing.T) {
	t.Parallel()

	res, err := Generate(Source{Text: pythonSource, FilenameHint: "/tmp/project/app.py"}, DefaultOptions())
	require.NoError(t, err)

	// Test: valid Python is handled by the primary extractor
	assert.Equal(t, "Auto → Python (AST)", res.ModeLabel)
	assert.Equal(t, extraction.LanguagePython, res.Language)
	assert.False(t, res.Degraded)

	// Test: header carries only the base name
	assert.Contains(t, res.Text, "File: app.py\n")
	assert.NotContains(t, res.Text, "/tmp/project")

	// Test: diagnostics and redaction are on by default
	assert.Contains(t, res.Text, "## Warnings (TODO/FIXME/HACK/TEMP)\n- L6: def main():  # TODO: add flags\n")
	assert.Contains(t, res.Text, "- contact = '"+redact.MarkerEmail+"'")
	assert.NotContains(t, res.Text, "ops@example.com")
}

func TestGenerate_AutoFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		filename string
		label    string
		lang     extraction.Language
	}{
		{"php by content", phpSource, "", "Auto → PHP-lite", extraction.LanguagePHP},
		{"kotlin by content", kotlinSource, "", "Auto → Kotlin-lite", extraction.LanguageKotlin},
		{"extension wins", kotlinSource, "Screen.java", "Auto → Java-lite", extraction.LanguageJava},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := Generate(Source{Text: tt.source, FilenameHint: tt.filename}, DefaultOptions())
			require.NoError(t, err)

			// Test: the Python syntax error is swallowed and a scanner runs
			assert.Equal(t, tt.label, res.ModeLabel)
			assert.Equal(t, tt.lang, res.Language)
			assert.False(t, res.Degraded)
		})
	}
}

func TestGenerate_AutoFallbackOnRecoveredErrors(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"bad dedent":          "def f(x):\n    return x\n   y = 2\n",
		"misaligned else":     "if ready:\n    go = 1\n  else:\n    go = 2\n",
		"mapping then splat":  "f(**{\"a\": 1}, *b)\n",
		"unknown name escape": "label = \"\\N{DASH}\"\n",
		"generic function":    "def first[T](items):\n    return items[0]\n",
	}

	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := Generate(Source{Text: source}, DefaultOptions())
			require.NoError(t, err)

			// Test: a lite scanner handles the file
			assert.True(t, strings.HasPrefix(res.ModeLabel, "Auto → "), res.ModeLabel)
			assert.NotEqual(t, "Auto → Python (AST)", res.ModeLabel)
			assert.NotEqual(t, extraction.LanguagePython, res.Language)
		})
	}
}

func TestGenerate_AutoKeepsValidLookAlikes(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"type call in method":       "class Mock:\n    def reset(self):\n        type(self).x = 0\n",
		"top-level type name":       "type = 3\n",
		"continuation in arguments": "def g():\n    return f(a, b=1, \\\n             c=2)\n",
		"print chevron":             "import sys\nprint >> sys.stderr, \"m\"\n",
		"same line suite":           "if x: a; b\n",
	}

	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := Generate(Source{Text: source}, DefaultOptions())
			require.NoError(t, err)

			// Test: valid Python stays on the primary extractor
			assert.Equal(t, "Auto → Python (AST)", res.ModeLabel)
			assert.Equal(t, extraction.LanguagePython, res.Language)

			forced, err := Generate(Source{Text: source, Selector: SelectorPrimary}, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, "Python (AST)", forced.ModeLabel)
		})
	}
}

func TestGenerate_PrimaryParseError(t *testing.T) {
	t.Parallel()

	res, err := Generate(Source{Text: "def broken(:\n    pass\n", Selector: SelectorPrimary}, DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, res)

	// Test: the error is a ParseError with a line number
	var parseErr *extraction.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Line)
}

func TestGenerate_PrimarySuccess(t *testing.T) {
	t.Parallel()

	res, err := Generate(Source{Text: pythonSource, Selector: SelectorPrimary}, DefaultOptions())
	require.NoError(t, err)

	// Test: forced Python mode has no Auto prefix and no Mode line
	assert.Equal(t, "Python (AST)", res.ModeLabel)
	assert.NotContains(t, res.Text, "Mode:")
	assert.Contains(t, res.Text, "File: -\n")
}

func TestGenerate_ForcedScanners(t *testing.T) {
	t.Parallel()

	tests := []struct {
		selector Selector
		label    string
		mode     string
	}{
		{SelectorScannerA, "PHP-lite", "Mode: PHP-lite (regex/token scan)"},
		{SelectorScannerB, "Kotlin-lite", "Mode: Kotlin-lite (Compose-aware)"},
		{SelectorScannerC, "Java-lite", "Mode: Java-lite (line scan)"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()

			// Test: forced scanners ignore content, even valid Python
			res, err := Generate(Source{Text: pythonSource, Selector: tt.selector}, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.label, res.ModeLabel)
			assert.Contains(t, res.Text, tt.mode+"\n")
		})
	}
}

func TestGenerate_Options(t *testing.T) {
	t.Parallel()

	opts := Options{Redact: false, Diagnostics: false}
	res, err := Generate(Source{Text: pythonSource}, opts)
	require.NoError(t, err)

	// Test: disabling redaction keeps the raw value
	assert.Contains(t, res.Text, "ops@example.com")
	// Test: disabling diagnostics drops the warnings section
	assert.NotContains(t, res.Text, "## Warnings")
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	for _, source := range []string{pythonSource, phpSource, kotlinSource} {
		first, err := Generate(Source{Text: source}, DefaultOptions())
		require.NoError(t, err)
		second, err := Generate(Source{Text: source}, DefaultOptions())
		require.NoError(t, err)

		// Test: identical inputs produce identical results
		assert.Equal(t, first, second)
	}
}

func TestGenerate_InvalidSelector(t *testing.T) {
	t.Parallel()

	_, err := Generate(Source{Text: "x = 1", Selector: Selector(42)}, DefaultOptions())

	// Test: out-of-range selectors are configuration errors
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, ErrUnknownSelector))
}

type panicScanner struct{}

func (panicScanner) Language() extraction.Language { return extraction.LanguageKotlin }

func (panicScanner) Scan(string) *extraction.StructuralMap {
	var lines []string
	_ = lines[3]
	return nil
}

func TestRunScanner_RecoversPanic(t *testing.T) {
	t.Parallel()

	// Test: a panicking scanner yields a degraded map carrying the panic text
	m := runScanner(panicScanner{}, extraction.LanguageKotlin, "fun x()", "Kotlin-lite")
	require.NotNil(t, m.Degraded)
	assert.Equal(t, "Kotlin-lite", m.Degraded.Mode)
	assert.Contains(t, m.Degraded.Message, "index out of range")
	assert.Equal(t, extraction.LanguageKotlin, m.Language)

	// Test: a missing scanner degrades the same way
	m = runScanner(nil, extraction.LanguageUnknown, "", autoFallback)
	require.NotNil(t, m.Degraded)
	assert.True(t, strings.HasPrefix(m.Degraded.Message, "no scanner"))
}

func TestParseSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Selector
	}{
		{"auto", SelectorAuto},
		{"Auto", SelectorAuto},
		{"python", SelectorPrimary},
		{"Python", SelectorPrimary},
		{"php", SelectorScannerA},
		{"PHP", SelectorScannerA},
		{"kotlin", SelectorScannerB},
		{"Kotlin-lite", SelectorScannerB},
		{"java", SelectorScannerC},
		{"Java-lite", SelectorScannerC},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			sel, err := ParseSelector(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sel)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		// Test: unknown names wrap ErrUnknownSelector
		_, err := ParseSelector("rust")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownSelector))
		assert.Contains(t, err.Error(), `"rust"`)
	})
}

func TestSniff(t *testing.T) {
	t.Parallel()

	// Test: valid Python reports the primary path
	report := Sniff(pythonSource, "")
	assert.True(t, report.PythonParses)
	assert.Equal(t, "Auto → Python (AST)", report.AutoLabel())

	// Test: PHP content is scored and picked by the classifier
	report = Sniff(phpSource, "")
	assert.False(t, report.PythonParses)
	assert.False(t, report.ByExtension)
	assert.Equal(t, extraction.LanguagePHP, report.Scanner)
	assert.Greater(t, report.Scores[extraction.LanguagePHP], 0)
	assert.Equal(t, "Auto → PHP-lite", report.AutoLabel())

	// Test: the extension decides when present
	report = Sniff(kotlinSource, "src/Screen.java")
	assert.True(t, report.ByExtension)
	assert.Equal(t, extraction.LanguageJava, report.Scanner)
}
