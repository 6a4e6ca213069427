// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides helpers for presenting the running program the same
// way on every operating system.
//
// Example usage in a cobra command definition:
//
//	rootCmd := &cobra.Command{
//	    Use: posix.ExecutableName("x509-chain-verifier-mcp"),
//	}
//
// ExecutableName strips directories and a trailing ".exe":
//
//   - Linux/macOS: "/usr/bin/myapp" → "myapp"
//   - Windows: "C:\bin\myapp.exe" → "myapp"
//   - Empty os.Args: the fallback
package posix
