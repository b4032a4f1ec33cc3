// Package mcp exposes the code map engine as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/reuno721/MiniMapPad/internal/config"
)

// ServerName is the name announced to MCP clients.
const ServerName = "minimap"

// MinimapServer manages the MCP server lifecycle.
type MinimapServer struct {
	generator *Generator
	mcp       *server.MCPServer
	logger    *slog.Logger
}

// NewMinimapServer creates a server with the minimap tools registered.
// A nil cfg uses config.Default().
func NewMinimapServer(cfg *config.Config, version string, logger *slog.Logger) (*MinimapServer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	generator, err := NewGenerator(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddMinimapGenerateTool(mcpServer, generator)
	AddMinimapClassifyTool(mcpServer, generator)
	AddMinimapStatsTool(mcpServer, generator)

	return &MinimapServer{
		generator: generator,
		mcp:       mcpServer,
		logger:    logger,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MinimapServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio", "name", ServerName)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *MinimapServer) Close() error {
	s.generator.Close()
	return nil
}
