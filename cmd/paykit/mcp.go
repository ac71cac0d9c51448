package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/mcp"
)

// version is reported by the MCP server
var version = "dev"

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the paykit MCP tools over stdio",
		Long: `Serves decode_intent_action over stdio. The retrieve tools are added when
a publishable key is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := a.mcpServer()
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), &mcpsdk.StdioTransport{})
		},
	}
}

func (a *app) mcpServer() (*mcpsdk.Server, error) {
	decoder, err := a.decoder()
	if err != nil {
		return nil, err
	}

	var api paykit.APIClient
	if a.cfg.API.PublishableKey != "" {
		client, err := a.apiClient()
		if err != nil {
			return nil, err
		}
		api = client
	} else {
		a.logger.Info("no publishable key configured, retrieve tools disabled")
	}

	a.logger.Debug("starting mcp server", zap.String("version", version))
	return mcp.NewServer(api, mcp.ServerOptions{
		Name:    "paykit",
		Version: version,
		Decoder: decoder,
	}), nil
}
