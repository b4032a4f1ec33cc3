package cli

import (
	"bytes"
	"testing"

	"github.com/reuno721/MiniMapPad/internal/minimap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Test Plan for sniff:
// - Python sources report the primary path
// - Scores are listed highest first
// - The file hint and extension decision are reported

func decodeSniff(t *testing.T, text, hint string) sniffOutput {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, writeSniff(&buf, hint, minimap.Sniff(text, hint)))

	var out sniffOutput
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestWriteSniff(t *testing.T) {
	t.Parallel()

	t.Run("python", func(t *testing.T) {
		t.Parallel()

		out := decodeSniff(t, samplePython, "")
		assert.True(t, out.PythonParses)
		assert.Equal(t, "Auto → Python (AST)", out.AutoMode)
		assert.Empty(t, out.File)
	})

	t.Run("php by content", func(t *testing.T) {
		t.Parallel()

		out := decodeSniff(t, samplePHP, "")
		assert.False(t, out.PythonParses)
		assert.False(t, out.ByExtension)
		assert.Equal(t, "php", out.Scanner)
		assert.Equal(t, "Auto → PHP-lite", out.AutoMode)

		// Test: scores are ranked with the winner first
		require.Len(t, out.Scores, 3)
		assert.Equal(t, "php", out.Scores[0].Language)
		for i := 1; i < len(out.Scores); i++ {
			assert.GreaterOrEqual(t, out.Scores[i-1].Score, out.Scores[i].Score)
		}
	})

	t.Run("extension", func(t *testing.T) {
		t.Parallel()

		out := decodeSniff(t, sampleKotlin, "ui/HomeScreen.kt")
		assert.Equal(t, "ui/HomeScreen.kt", out.File)
		assert.True(t, out.ByExtension)
		assert.Equal(t, "kotlin", out.Scanner)
	})
}
