// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the X.509 chain verifier.
// It implements a Cobra-based CLI whose verify command evaluates a certificate,
// read from a file, a base64 payload or a live TLS endpoint, against a trust
// configuration and prints the per-certificate status as a table, an ASCII
// tree or JSON.
//
// Flags override the configuration file loaded with --config (or
// X509_VERIFIER_CONFIG_FILE). [ExitCode] maps the error returned by
// [Execute] to the process exit status: 0 when the chain is trusted, 2 when
// it is not and 1 on any other failure.
package cli
