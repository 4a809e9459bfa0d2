package cli

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regula/internal/adapters/driving/mcp"
	"github.com/custodia-labs/regula/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ask tool to MCP clients",
	Long: `Serve the "ask" tool and the regula://regulations resources to an MCP client.

Without --port the server speaks JSON-RPC on stdin and stdout, which is what
desktop assistants expect when they launch regula themselves:

  {"mcpServers": {"regula": {"command": "regula", "args": ["mcp", "serve"]}}}

With --port it serves the streamable HTTP transport on localhost instead.`,
	Example: `  regula mcp serve
  regula mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve HTTP on this localhost port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")

	ask, err := requireAsk()
	if err != nil {
		return err
	}
	index, err := requireIndex()
	if err != nil {
		return err
	}
	if err := warmMemoryIndex(cmd); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Ask: ask, Index: index},
		mcp.WithLogger(logger.Named("mcp")),
		mcp.WithVersion(version),
	)
	if err != nil {
		return err
	}

	if port <= 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
