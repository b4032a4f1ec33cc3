package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/reuno721/MiniMapPad/internal/extraction"
	mcputils "github.com/reuno721/MiniMapPad/internal/mcp-utils"
	"github.com/reuno721/MiniMapPad/internal/minimap"
)

// AddMinimapGenerateTool registers the minimap_generate tool with an MCP server.
//
// The tool renders a compact read-only code map of a single source file so
// an assistant can reason about its structure without reading the body.
func AddMinimapGenerateTool(s *server.MCPServer, g *Generator) {
	tool := mcp.NewTool(
		"minimap_generate",
		mcp.WithDescription("Generate a compact structural code map (imports, constants, types, functions, calls) for one Python, PHP, Kotlin or Java source file. Secrets and personal data are redacted by default."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Full source text of the file")),
		mcp.WithString("filename",
			mcp.Description("Optional file name; its extension guides language detection and it is shown in the header")),
		mcp.WithString("language",
			mcp.Description("auto (default), python, php, kotlin or java")),
		mcp.WithBoolean("redact",
			mcp.Description("Redact secrets and personal data in the map (default: true)")),
		mcp.WithBoolean("diagnostics",
			mcp.Description("Include TODO/FIXME/HACK warning lines (default: true)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createMinimapGenerateHandler(g))
}

// createMinimapGenerateHandler creates the handler function for minimap_generate.
func createMinimapGenerateHandler(g *Generator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req GenerateRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := g.Generate(&req)
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(userMessage(err)), nil
			}
			return nil, err
		}

		return marshalToolResponse(result)
	}
}

// AddMinimapClassifyTool registers the minimap_classify tool with an MCP server.
func AddMinimapClassifyTool(s *server.MCPServer, g *Generator) {
	tool := mcp.NewTool(
		"minimap_classify",
		mcp.WithDescription("Report which language Auto mode would pick for a source file, with the per-language classifier scores."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Full source text of the file")),
		mcp.WithString("filename",
			mcp.Description("Optional file name; a known extension decides the scanner")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createMinimapClassifyHandler(g))
}

func createMinimapClassifyHandler(g *Generator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req ClassifyRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := g.Classify(&req)
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(userMessage(err)), nil
			}
			return nil, err
		}

		return marshalToolResponse(result)
	}
}

// AddMinimapStatsTool registers the minimap_stats tool, which reports
// generate call counters since the server started.
func AddMinimapStatsTool(s *server.MCPServer, g *Generator) {
	tool := mcp.NewTool(
		"minimap_stats",
		mcp.WithDescription("Report minimap_generate call statistics: totals, cache hits, failures and counts per mode."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return marshalToolResponse(g.Metrics())
	})
}

// isUserError reports whether err should be shown to the LLM rather than
// treated as an internal failure.
func isUserError(err error) bool {
	var (
		parseErr  *extraction.ParseError
		configErr *minimap.ConfigurationError
	)
	return errors.Is(err, ErrEmptySource) ||
		errors.Is(err, ErrSourceTooLarge) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &configErr)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptySource):
		return "source parameter is required"
	case errors.As(err, new(*extraction.ParseError)):
		return "Parse failed: " + err.Error()
	default:
		return err.Error()
	}
}
