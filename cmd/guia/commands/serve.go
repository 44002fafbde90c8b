// ABOUTME: Serve command starts the Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to use guia via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/guia/internal/app"
	"github.com/harper/guia/internal/mcp"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"mcp"},
		Short:   "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs guia as an MCP (Model Context Protocol) server, enabling LLM agents
like Claude to ask about the Manaus tax legislation and to use the travel
tools via stdio. The sources are ingested once at startup.

Configure in Claude Desktop's config file to enable the tools.`,
		Args: cobra.NoArgs,
		RunE: runServe,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  guia serve

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "guia": {
  #       "command": "guia",
  #       "args": ["serve"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runServe starts the MCP server
func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New(configPath, verbose, quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := mcp.Dependencies{
		Router:  a.Router(),
		Planner: a.Planner(),
	}

	// Travel tools stay usable when the law texts cannot be indexed
	engine, stats, err := a.BuildEngine(cmd.Context())
	if err != nil {
		a.Logger.Error("legislation index unavailable", zap.Error(err))
	} else {
		deps.Engine = engine
		a.Logger.Info("legislation index ready",
			zap.Int("documents", stats.Documents),
			zap.Int("chunks", stats.Chunks))
	}

	server := mcpserver.NewMCPServer(
		"guia",
		versionInfo.Version,
		mcpserver.WithToolCapabilities(false),
	)
	handlers := mcp.RegisterTools(server, deps, a.Logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received, waiting for in-flight tool calls")
		handlers.Shutdown()
	case err := <-serverErr:
		handlers.Shutdown()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	a.Logger.Info("shutdown complete")
	return nil
}
