// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultTools returns the tool definitions served by default.
//
// The function defines the following tools:
//   - verify_cert_chain: Builds and evaluates the chain of a certificate
//   - get_verification_metrics: Reports verification totals, CRL cache usage and runtime statistics
//
// Omitted verification arguments fall back to the server configuration.
func DefaultTools() []ToolDefinitionWithDeps {
	return []ToolDefinitionWithDeps{
		{
			Tool: mcp.NewTool("verify_cert_chain",
				mcp.WithDescription("Build and evaluate the X.509 chain of a certificate, reporting a status for every certificate on the path"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Leaf certificate file path or base64-encoded certificate data; further certificates in the same input are used as intermediates"),
				),
				mcp.WithString("extra",
					mcp.Description("Comma-separated untrusted certificates (file paths or base64) available for path building"),
				),
				mcp.WithString("roots",
					mcp.Description("Comma-separated trust anchors (file paths or base64); when set, only these roots are trusted"),
				),
				mcp.WithString("revocation_mode",
					mcp.Description("Revocation mode: 'nocheck', 'online' or 'offline' (default: from configuration)"),
					mcp.Enum("nocheck", "online", "offline"),
				),
				mcp.WithString("revocation_scope",
					mcp.Description("Revocation scope: 'entire', 'exclude-root' or 'end-only' (default: from configuration)"),
					mcp.Enum("entire", "exclude-root", "end-only"),
				),
				mcp.WithString("application_policy",
					mcp.Description("Comma-separated application policy (extended key usage) OIDs the chain must satisfy"),
				),
				mcp.WithString("certificate_policy",
					mcp.Description("Comma-separated certificate policy OIDs the chain must satisfy"),
				),
				mcp.WithString("verification_time",
					mcp.Description("Evaluate the chain at this RFC 3339 time instead of now"),
				),
				mcp.WithBoolean("disable_downloads",
					mcp.Description("Disable retrieval of missing issuers from AIA URLs (default: false)"),
					mcp.DefaultBool(false),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'json', 'table' or 'tree' (default: json)"),
					mcp.DefaultString("json"),
					mcp.Enum("json", "table", "tree"),
				),
			),
			Handler: handleVerifyCertChain,
		},
		{
			Tool: mcp.NewTool("get_verification_metrics",
				mcp.WithDescription("Report verification metrics, CRL cache usage and runtime statistics of the server"),
				mcp.WithString("format",
					mcp.Description("Output format: 'json' or 'markdown' (default: json)"),
					mcp.DefaultString("json"),
					mcp.Enum("json", "markdown"),
				),
				mcp.WithBoolean("detailed",
					mcp.Description("Include memory and garbage collector statistics (default: false)"),
					mcp.DefaultBool(false),
				),
			),
			Handler: handleGetVerificationMetrics,
		},
	}
}
