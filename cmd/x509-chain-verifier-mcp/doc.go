// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// x509-chain-verifier-mcp is a Model Context Protocol (MCP) server that
// exposes X.509 chain verification to AI assistants and automation clients
// over stdio.
//
// # Installation
//
//	go install github.com/H0llyW00dzZ/x509-chain-verifier/cmd/x509-chain-verifier-mcp@latest
//
// # Usage
//
//	x509-chain-verifier-mcp [FLAGS]
//
// # Flags
//
//	--config        Path to the verifier configuration file (JSON or YAML)
//	--instructions  Print the instructions sent to MCP clients
//	--help          Show help information
//	--version       Show version information
//
// # Environment Variables
//
//	X509_VERIFIER_CONFIG_FILE  Path to configuration file (alternative to --config)
//
// # MCP Tools
//
//   - verify_cert_chain: Evaluate the chain of a certificate given as a file
//     path or base64, with optional extra certificates, private roots,
//     revocation mode and scope, required policies and output format
//   - get_verification_metrics: Report verification totals, CRL cache usage
//     and runtime statistics as JSON or markdown
//
// The server stops gracefully on SIGINT or SIGTERM or when stdin is closed.
package main
