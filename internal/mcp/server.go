package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"preprint/internal/profiles"
)

// NewServer builds an MCP server exposing the panel's actions as tools.
func NewServer(panel *profiles.Panel, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "preprint",
			Version: version,
		},
		nil,
	)
	registerProfileTools(server, &profileTools{panel: panel})
	return server
}

// RunServer starts the MCP server over stdio transport.
func RunServer(ctx context.Context, panel *profiles.Panel, version string) error {
	return NewServer(panel, version).Run(ctx, &mcpsdk.StdioTransport{})
}
