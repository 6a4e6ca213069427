// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides the logging abstraction shared by the verifier.
// It defines the Logger interface and two implementations: CLILogger for
// human-readable command-line output and JSONLogger for structured JSON lines,
// which is used by the MCP server where stdout carries the protocol.
// Both implementations are safe for concurrent use.
package logger
