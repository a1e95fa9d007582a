package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/audio-renamer/pkg/config"
	"github.com/denysvitali/audio-renamer/pkg/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve plan_rename and rename_files as MCP tools over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout. Tool arguments left empty
fall back to the configured folder, extension, prefix and order. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	logger := GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Info("Serving MCP tools on stdio")
	return mcp.NewServer(logger, cfg.Rename).ServeStdio()
}
