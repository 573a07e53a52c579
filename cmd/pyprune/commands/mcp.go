package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pyprune/pkg/mcp"
	"github.com/Sumatoshi-tech/pyprune/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes pyprune as tools that AI agents can discover and
invoke:
  - pyprune_clean: remove unused imports from Python source
  - pyprune_scan:  report unused imports without modifying the source`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			level := "warn"
			if debug {
				level = "debug"
			}

			logger := observability.NewLogger(os.Stderr, observability.LoggerConfig{
				Level: level,
				JSON:  true,
			})

			srv := mcp.NewServer(mcp.ServerDeps{Logger: logger})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
