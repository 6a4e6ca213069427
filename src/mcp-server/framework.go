// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend/gonative"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// serverName is announced to clients during initialization.
const serverName = "X.509 Chain Verifier"

// ToolHandler handles a tool call that needs nothing beyond its request.
type ToolHandler = server.ToolHandlerFunc

// ToolHandlerWithDeps handles a tool call using the server dependencies.
type ToolHandlerWithDeps func(ctx context.Context, request mcp.CallToolRequest, deps *ServerDependencies) (*mcp.CallToolResult, error)

// ToolDefinition pairs a tool with its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

// ToolDefinitionWithDeps pairs a tool with a handler that receives the
// server dependencies.
type ToolDefinitionWithDeps struct {
	Tool    mcp.Tool
	Handler ToolHandlerWithDeps
}

// ServerDependencies holds everything a tool handler may need.
//
// Fields:
//   - Config: Loaded configuration; request arguments override its verification section
//   - Version: Server version reported to clients
//   - Decoder: Certificate decoder for PEM, DER, PKCS#7 and base64 input
//   - Evaluator: Chain evaluator bound to the configured backend
//   - CRLCache: Cache holding CRLs for offline checking; cleaned while the server runs
//   - Gatherer: Metrics source for get_verification_metrics
//   - Logger: Diagnostic logger, never stdout since stdout carries the protocol
//   - Tools, ToolsWithDeps: Registered tools
//   - Instructions: Text sent to clients in the initialize response
type ServerDependencies struct {
	Config        *config.Config
	Version       string
	Decoder       *x509certs.Decoder
	Evaluator     *x509chain.Evaluator
	CRLCache      *revocation.CRLCache
	Gatherer      prometheus.Gatherer
	Logger        logger.Logger
	Tools         []ToolDefinition
	ToolsWithDeps []ToolDefinitionWithDeps
	Instructions  string
}

// ServerBuilder assembles an MCP server from its dependencies.
//
// Example usage:
//
//	s, err := NewServerBuilder().
//	    WithConfig(cfg).
//	    WithVersion("0.1.0").
//	    WithDefaultTools().
//	    Build()
type ServerBuilder struct {
	deps ServerDependencies
}

// NewServerBuilder returns an empty builder. Unset dependencies are filled
// with defaults by [ServerBuilder.Build].
func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{}
}

// WithConfig sets the configuration.
func (b *ServerBuilder) WithConfig(cfg *config.Config) *ServerBuilder {
	b.deps.Config = cfg
	return b
}

// WithVersion sets the server version.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.deps.Version = version
	return b
}

// WithDecoder sets the certificate decoder.
func (b *ServerBuilder) WithDecoder(d *x509certs.Decoder) *ServerBuilder {
	b.deps.Decoder = d
	return b
}

// WithEvaluator sets the chain evaluator, bypassing backend construction
// from the configuration.
func (b *ServerBuilder) WithEvaluator(e *x509chain.Evaluator) *ServerBuilder {
	b.deps.Evaluator = e
	return b
}

// WithCRLCache sets the CRL cache used by the go backend.
func (b *ServerBuilder) WithCRLCache(cache *revocation.CRLCache) *ServerBuilder {
	b.deps.CRLCache = cache
	return b
}

// WithGatherer sets the metrics source.
func (b *ServerBuilder) WithGatherer(g prometheus.Gatherer) *ServerBuilder {
	b.deps.Gatherer = g
	return b
}

// WithLogger sets the diagnostic logger.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.deps.Logger = log
	return b
}

// WithTools adds tools that need no dependencies.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.deps.Tools = append(b.deps.Tools, tools...)
	return b
}

// WithToolsWithDeps adds tools whose handlers receive the dependencies.
func (b *ServerBuilder) WithToolsWithDeps(tools ...ToolDefinitionWithDeps) *ServerBuilder {
	b.deps.ToolsWithDeps = append(b.deps.ToolsWithDeps, tools...)
	return b
}

// WithDefaultTools adds verify_cert_chain and get_verification_metrics.
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder {
	return b.WithToolsWithDeps(DefaultTools()...)
}

// WithInstructions sets the instructions sent on initialization.
func (b *ServerBuilder) WithInstructions(instructions string) *ServerBuilder {
	b.deps.Instructions = instructions
	return b
}

// Build fills unset dependencies and creates the server.
//
// Returns:
//   - *server.MCPServer: Server with every tool registered
//   - error: Backend construction failure
func (b *ServerBuilder) Build() (*server.MCPServer, error) {
	deps, err := b.resolve()
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		serverName,
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(deps.Instructions),
	)
	s.AddTools(serverTools(deps)...)
	return s, nil
}

// ServerTools fills unset dependencies and returns the registered tools
// bound to them, ready for any [server.MCPServer].
func (b *ServerBuilder) ServerTools() ([]server.ServerTool, error) {
	deps, err := b.resolve()
	if err != nil {
		return nil, err
	}
	return serverTools(deps), nil
}

// resolve returns a copy of the dependencies with defaults filled in. The
// default evaluator uses the configured backend. The go backend is bound to
// the builder's CRL cache so that CRLs loaded from the configuration and the
// cleanup loop started by [Serve] refer to the cache its checker reads.
func (b *ServerBuilder) resolve() (*ServerDependencies, error) {
	deps := b.deps
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if deps.Decoder == nil {
		deps.Decoder = x509certs.New()
	}
	if deps.CRLCache == nil {
		deps.CRLCache = revocation.Default
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.Evaluator == nil {
		e, err := newEvaluator(deps.Config, deps.CRLCache, deps.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create evaluator: %w", err)
		}
		deps.Evaluator = e
	}
	if deps.Instructions == "" {
		deps.Instructions = generateInstructions(deps.Tools, deps.ToolsWithDeps)
	}
	return &deps, nil
}

func serverTools(deps *ServerDependencies) []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(deps.Tools)+len(deps.ToolsWithDeps))
	for _, tool := range deps.Tools {
		tools = append(tools, server.ServerTool{Tool: tool.Tool, Handler: tool.Handler})
	}
	for _, tool := range deps.ToolsWithDeps {
		handler := tool.Handler
		tools = append(tools, server.ServerTool{
			Tool: tool.Tool,
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handler(ctx, request, deps)
			},
		})
	}
	return tools
}

func newEvaluator(cfg *config.Config, cache *revocation.CRLCache, log logger.Logger) (*x509chain.Evaluator, error) {
	var (
		b   backend.Backend
		err error
	)
	if cfg.Backend.Name == gonative.Name {
		b, err = gonative.New(cfg.BackendOptions(log), gonative.WithCRLCache(cache))
	} else {
		b, err = backend.New(cfg.Backend.Name, cfg.BackendOptions(log))
	}
	if err != nil {
		return nil, err
	}
	return x509chain.NewEvaluator(b, x509chain.WithLogger(log)), nil
}

// generateInstructions describes the registered tools for the client.
func generateInstructions(tools []ToolDefinition, toolsWithDeps []ToolDefinitionWithDeps) string {
	all := make([]mcp.Tool, 0, len(tools)+len(toolsWithDeps))
	for _, t := range tools {
		all = append(all, t.Tool)
	}
	for _, t := range toolsWithDeps {
		all = append(all, t.Tool)
	}

	var sb strings.Builder
	sb.WriteString("# X.509 Chain Verifier\n\n")
	sb.WriteString("Builds and evaluates certificate chains and reports a status for every certificate on the path.\n")
	sb.WriteString("Certificates may be given as file paths or base64 (PEM, DER or PKCS#7). ")
	sb.WriteString("Status names such as PartialChain, UntrustedRoot or Revoked are flags; NoError means the certificate has none.\n\n")
	sb.WriteString("## Tools\n\n")
	for _, t := range all {
		fmt.Fprintf(&sb, "- `%s`: %s\n", t.Name, t.Description)
	}
	sb.WriteString("\n## Workflow\n\n")
	sb.WriteString("1. Call `verify_cert_chain` with the leaf certificate, optionally adding intermediates in `extra` and private anchors in `roots`.\n")
	sb.WriteString("2. Inspect the overall status and the per-certificate entries.\n")
	sb.WriteString("3. Call `get_verification_metrics` to review totals and CRL cache usage.\n")
	return sb.String()
}
