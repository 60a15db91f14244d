package main

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"parallax/internal/logging"
	mcpserver "parallax/internal/mcp"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Serve exposes generate_newsletter, analyze_sentiment and check_connection
as MCP tools over stdin/stdout.

The server exits when its parent process goes away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := root.services()
			if err != nil {
				return err
			}
			srv := mcpserver.NewServer(svc.MCPDeps(version))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			mcpserver.WatchParent(ctx, 0, cancel)

			logging.New("mcp").Info("starting parallax MCP server over stdio", "ollama", svc.Client.BaseURL(), "model", svc.Client.Model())
			return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
		},
	}
}
