// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
)

var appVersion = version.Version

// GetVersion returns the version reported by the server.
func GetVersion() string {
	return appVersion
}

// Run executes the MCP server command line with os.Args. Without
// arguments it serves the default tools over stdio until stdin is closed
// or SIGINT or SIGTERM is received.
//
// Parameters:
//   - ver: Version string reported to clients and by --version
//
// Returns:
//   - error: Configuration, build or transport failure; nil on graceful shutdown
func Run(ver string) error {
	appVersion = ver

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tools := DefaultTools()
	framework := NewCLIFramework("", ServerDependencies{
		Version:       ver,
		ToolsWithDeps: tools,
		Instructions:  generateInstructions(nil, tools),
	})
	return framework.BuildRootCommand().ExecuteContext(ctx)
}

// Serve serves s over the stdio transport on in and out until in is
// exhausted or ctx is canceled. The cleanup loop of cache runs for as
// long as Serve does. Cancellation is a graceful shutdown and returns nil.
func Serve(ctx context.Context, s *server.MCPServer, cache *revocation.CRLCache, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cache.StartCleanup(ctx)

	err := server.NewStdioServer(s).Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
