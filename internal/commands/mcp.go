package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	mcpserver "preprint/internal/mcp"
)

// RunMCP serves the profile tools over stdio. Stdout carries the protocol,
// so logs stay on stderr.
func RunMCP() {
	panel, _, err := newPanel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[mcp] %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := mcpserver.RunServer(ctx, panel, Version); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "[mcp] server error: %v\n", err)
		os.Exit(1)
	}
}
