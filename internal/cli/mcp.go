package cli

import (
	"fmt"
	"os"

	"github.com/reuno721/MiniMapPad/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server exposing code map tools",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
request code maps directly.

The MCP server:
- Provides minimap_generate, minimap_classify and minimap_stats tools
- Caches results in memory (mcp.cache_size, 0 disables)
- Communicates via stdio (standard MCP transport)

Logs go to stderr so they never mix with the protocol stream.

Example:
  minimap mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(os.Stderr)

	server, err := mcp.NewMinimapServer(cfg, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
