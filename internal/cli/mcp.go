package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/jseval/pkg/adapters/mcp"
)

// MCPOptions select the MCP transport.
type MCPOptions struct {
	Transport string
	Port      int
}

// RunMCP exposes the channel as MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, opts Options, m MCPOptions) error {
	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	srv := mcp.NewServer(env.channel)

	switch m.Transport {
	case "", "stdio":
		// Stdout carries JSON-RPC, the logger already writes to Stderr.
		env.logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		env.logger.Info("starting MCP server (SSE)", "port", m.Port)
		if err := srv.ServeSSE(ctx, m.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		env.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", m.Transport)
	}
}
