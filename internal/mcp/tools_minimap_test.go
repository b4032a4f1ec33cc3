package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/reuno721/MiniMapPad/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for minimap tools:
// - Tools register on a server
// - minimap_generate returns the map, mode and language as JSON
// - String-typed toggles from clients are coerced
// - A repeated request is served from the cache
// - Empty source, bad language, forced-Python syntax errors and oversized
//   sources come back as tool errors, not handler errors
// - Non-map arguments are rejected
// - minimap_classify reports the scanner pick and scores
// - minimap_stats reflects earlier generate calls

const toolPython = `import os

api_key = "abc123"


def main():
    return os.getcwd()
`

const toolKotlin = `package com.example

fun main() {
    println("hi")
}
`

func newTestGenerator(t *testing.T, mutate func(*config.Config)) *Generator {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	g, err := NewGenerator(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args any) *mcp.CallToolResult {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "content should be text")
	return text.Text
}

func TestAddMinimapTools(t *testing.T) {
	t.Parallel()

	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	g := newTestGenerator(t, nil)

	AddMinimapGenerateTool(mcpServer, g)
	AddMinimapClassifyTool(mcpServer, g)
	AddMinimapStatsTool(mcpServer, g)

	// mcp-go doesn't expose the tool list, handlers are exercised below
	assert.NotNil(t, mcpServer)
}

func TestMinimapGenerateHandler_Success(t *testing.T) {
	t.Parallel()

	handler := createMinimapGenerateHandler(newTestGenerator(t, nil))
	result := callTool(t, handler, map[string]interface{}{
		"source":   toolPython,
		"filename": "src/app.py",
	})
	require.False(t, result.IsError)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))

	assert.Equal(t, "Auto → Python (AST)", resp.Mode)
	assert.Equal(t, "python", resp.Language)
	assert.False(t, resp.Degraded)
	assert.False(t, resp.Cached)
	assert.True(t, strings.HasPrefix(resp.Map, "### CODE MAP (READ-ONLY) ###\n"))
	assert.Contains(t, resp.Map, "app.py")
	assert.NotContains(t, resp.Map, "src/app.py")
	assert.Contains(t, resp.Map, "- def main()")
}

func TestMinimapGenerateHandler_CoercedArguments(t *testing.T) {
	t.Parallel()

	handler := createMinimapGenerateHandler(newTestGenerator(t, nil))

	// Test: clients sending booleans as strings still toggle options
	result := callTool(t, handler, map[string]interface{}{
		"source":   toolKotlin,
		"language": "kotlin",
		"redact":   "false",
	})
	require.False(t, result.IsError)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, "Kotlin-lite", resp.Mode)
	assert.Equal(t, "kotlin", resp.Language)
	assert.Contains(t, resp.Map, "fun main()")
}

func TestMinimapGenerateHandler_Cache(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, nil)
	handler := createMinimapGenerateHandler(g)
	args := map[string]interface{}{"source": toolPython}

	var first, second GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, callTool(t, handler, args))), &first))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, callTool(t, handler, args))), &second))

	// Test: the second call is a hit with identical content
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Map, second.Map)

	// Test: changing a toggle is a different entry
	var third GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, callTool(t, handler, map[string]interface{}{
		"source": toolPython,
		"redact": false,
	}))), &third))
	assert.False(t, third.Cached)

	assert.Equal(t, int64(1), g.Metrics().CacheHits)
}

func TestMinimapGenerateHandler_CacheDisabled(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, func(cfg *config.Config) { cfg.MCP.CacheSize = 0 })
	handler := createMinimapGenerateHandler(g)
	args := map[string]interface{}{"source": toolPython}

	callTool(t, handler, args)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, callTool(t, handler, args))), &resp))
	assert.False(t, resp.Cached)
}

func TestMinimapGenerateHandler_UserErrors(t *testing.T) {
	t.Parallel()

	handler := createMinimapGenerateHandler(newTestGenerator(t, func(cfg *config.Config) {
		cfg.Generate.MaxSourceBytes = 64
	}))

	tests := []struct {
		name    string
		args    map[string]interface{}
		message string
	}{
		{
			name:    "missing source",
			args:    map[string]interface{}{"filename": "a.py"},
			message: "source parameter is required",
		},
		{
			name:    "blank source",
			args:    map[string]interface{}{"source": "   \n"},
			message: "source parameter is required",
		},
		{
			name:    "unknown language",
			args:    map[string]interface{}{"source": "x = 1\n", "language": "rust"},
			message: "rust",
		},
		{
			name:    "forced python syntax error",
			args:    map[string]interface{}{"source": "def (:\n", "language": "python"},
			message: "Parse failed:",
		},
		{
			name:    "source too large",
			args:    map[string]interface{}{"source": strings.Repeat("x = 1\n", 20)},
			message: "source too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := callTool(t, handler, tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.message)
		})
	}
}

func TestMinimapGenerateHandler_InvalidArgumentsFormat(t *testing.T) {
	t.Parallel()

	handler := createMinimapGenerateHandler(newTestGenerator(t, nil))

	// Test: a non-object argument payload is rejected
	result := callTool(t, handler, "not a map")
	assert.True(t, result.IsError)
	assert.Equal(t, "invalid arguments format", resultText(t, result))
}

func TestMinimapClassifyHandler(t *testing.T) {
	t.Parallel()

	handler := createMinimapClassifyHandler(newTestGenerator(t, nil))

	// Test: Kotlin content fails the Python parse and is scored
	result := callTool(t, handler, map[string]interface{}{"source": toolKotlin})
	require.False(t, result.IsError)

	var resp ClassifyResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, "kotlin", resp.Scanner)
	assert.False(t, resp.PythonParses)
	assert.False(t, resp.ByExtension)
	assert.Equal(t, "Auto → Kotlin-lite", resp.AutoMode)
	assert.Greater(t, resp.Scores["kotlin"], 0)

	// Test: the extension decides the scanner
	result = callTool(t, handler, map[string]interface{}{"source": toolKotlin, "filename": "Main.java"})
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, "java", resp.Scanner)
	assert.True(t, resp.ByExtension)

	// Test: empty source is a tool error
	result = callTool(t, handler, map[string]interface{}{"source": ""})
	assert.True(t, result.IsError)
}

func TestMinimapStatsTool(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, nil)
	generate := createMinimapGenerateHandler(g)
	callTool(t, generate, map[string]interface{}{"source": toolPython})
	callTool(t, generate, map[string]interface{}{"source": "def (:\n", "language": "python"})

	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	AddMinimapStatsTool(mcpServer, g)

	// Test: the snapshot counts both calls
	snapshot := g.Metrics()
	assert.Equal(t, int64(2), snapshot.TotalRequests)
	assert.Equal(t, int64(1), snapshot.Failures)
	assert.Equal(t, int64(1), snapshot.ByMode["Auto → Python (AST)"])
	assert.NotEmpty(t, snapshot.LastError)
}
