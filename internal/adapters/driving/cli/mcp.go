package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cloudstore/pagesmith/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables testing with the
MCP Inspector web UI. The server binds to 127.0.0.1 unless --host says
otherwise.

The extract_text tool only reads files under mcp.allowed_dir, or under the
document library when that key is unset.

Background derivations queued through the enqueue_derivation tool run on
the job queue for as long as the server is up.

Examples:
  # Stdio mode (default, for Claude Desktop)
  pagesmith mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  pagesmith mcp serve --port 8080

  # HTTP mode reachable from other machines
  pagesmith mcp serve --host 0.0.0.0 --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "pagesmith": {
        "command": "/path/to/pagesmith",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", defaultMCPHost, "HTTP listen address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

const defaultMCPHost = "127.0.0.1"

func mcpAddr(host string, port int) string {
	if host == "" {
		host = defaultMCPHost
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}
	ctx := commandContext(cmd)

	ports := &mcp.Ports{
		Pages: pageService,
	}
	if jobService != nil {
		if err := jobService.Start(ctx); err != nil {
			return fmt.Errorf("starting job queue: %w", err)
		}
		defer jobService.Stop() //nolint:errcheck
		ports.Jobs = jobService
	}

	server, err := mcp.NewServer(ports, mcp.WithExtractRoot(extractRoot))
	if err != nil {
		return err
	}

	if port > 0 {
		addr := mcpAddr(host, port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
