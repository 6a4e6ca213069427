// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
)

// Exit codes returned by [ExitCode].
const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitUntrusted = 2
)

var (
	// ErrInputRequired is returned when verify gets neither a certificate nor --host.
	ErrInputRequired = errors.New("cli: exactly one of CERT_FILE or --host is required")
	// ErrNotTrusted is returned after the report of a chain that is not trusted.
	ErrNotTrusted = errors.New("cli: certificate chain is not trusted")
)

// NewRootCommand builds the command tree.
func NewRootCommand(ver string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "x509-chain-verifier",
		Short:         version.Name + " evaluates X.509 certificate chains",
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.AddCommand(newVerifyCommand(), newBackendsCommand())
	return rootCmd
}

func newBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available trust backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range backend.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// Execute runs the root command with the process arguments. Errors are
// printed to stderr and returned; pass them to [ExitCode].
func Execute(ctx context.Context, ver string) error {
	rootCmd := NewRootCommand(ver)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// ExitCode maps an error returned by [Execute] to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNotTrusted):
		return ExitUntrusted
	default:
		return ExitError
	}
}
