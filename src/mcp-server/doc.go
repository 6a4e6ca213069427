// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver serves [X509] certificate chain verification over the
// Model Context Protocol ([MCP]) stdio transport.
//
// Two tools are registered by default:
//   - verify_cert_chain: Evaluates the chain of a certificate and returns
//     the per-certificate status as JSON, a table or a tree
//   - get_verification_metrics: Reports the verifier metrics gathered by
//     Prometheus together with CRL cache and runtime statistics
//
// Servers are assembled with [ServerBuilder]; [CLIFramework] wraps the
// builder in a cobra command and [Serve] runs it until its context is
// canceled, keeping the CRL cache cleanup loop alive meanwhile.
//
// [X509]: https://grokipedia.com/page/X.509
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
