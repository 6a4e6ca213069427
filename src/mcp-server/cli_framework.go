// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
)

// defaultExeName is used when the executable name cannot be determined.
const defaultExeName = "x509-chain-verifier-mcp"

// CLIFramework integrates the cobra command line with the MCP server.
//
// Command behavior:
//   - With --instructions: Prints the instructions sent to clients and exits
//   - Without arguments: Starts the server on stdin and stdout
//
// Configuration is read from --config, then from the
// X509_VERIFIER_CONFIG_FILE environment variable, then from defaults.
type CLIFramework struct {
	configFile string
	deps       ServerDependencies
}

// NewCLIFramework creates a framework serving deps. Loading the
// configuration is deferred until the server starts so that --config can
// override configFile.
func NewCLIFramework(configFile string, deps ServerDependencies) *CLIFramework {
	return &CLIFramework{configFile: configFile, deps: deps}
}

// BuildRootCommand creates the root command.
//
// Returns:
//   - *cobra.Command: Root command starting the server by default
//
// Input and output of the server are the command's input and output, so
// tests can drive it with SetIn and SetOut.
func (cf *CLIFramework) BuildRootCommand() *cobra.Command {
	exeName := posix.ExecutableName(defaultExeName)

	var showInstructions bool
	rootCmd := &cobra.Command{
		Use:   exeName,
		Short: "X.509 certificate chain verifier exposed over the Model Context Protocol",
		Long: `Serve certificate chain verification to MCP clients over stdio.

The server offers two tools: verify_cert_chain builds and evaluates the chain
of a certificate, and get_verification_metrics reports verification totals and
CRL cache usage. Verification defaults come from the configuration file.`,
		Example: fmt.Sprintf(`  %[1]s
  %[1]s --config verifier.yaml
  %[1]s --instructions`, exeName),
		Version:       cf.deps.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showInstructions {
				_, err := fmt.Fprint(cmd.OutOrStdout(), cf.instructions())
				return err
			}
			return cf.startMCPServer(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&showInstructions, "instructions", false, "print the instructions sent to MCP clients")
	rootCmd.PersistentFlags().StringVar(&cf.configFile, "config", cf.configFile, "path to the verifier configuration file (JSON or YAML)")
	return rootCmd
}

func (cf *CLIFramework) instructions() string {
	if cf.deps.Instructions != "" {
		return cf.deps.Instructions
	}
	return generateInstructions(cf.deps.Tools, cf.deps.ToolsWithDeps)
}

// startMCPServer loads the configuration, builds the server and serves it
// until the command context is canceled, SIGINT or SIGTERM is received, or
// input is closed.
//
// Returns:
//   - nil: When the server shuts down gracefully
//   - error: Configuration loading, server building or transport errors
func (cf *CLIFramework) startMCPServer(cmd *cobra.Command) error {
	cfg, err := config.Load(cf.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// Stdout carries the protocol.
	log := cfg.Logger(cmd.ErrOrStderr())

	cache := cf.deps.CRLCache
	if cache == nil {
		cache = revocation.Default
	}
	cache.SetConfig(cfg.CRLCacheConfig())
	if err := cfg.LoadCRLs(cache); err != nil {
		return fmt.Errorf("failed to load CRLs: %w", err)
	}

	mcpServer, err := NewServerBuilder().
		WithConfig(cfg).
		WithVersion(cf.deps.Version).
		WithDecoder(cf.deps.Decoder).
		WithEvaluator(cf.deps.Evaluator).
		WithCRLCache(cache).
		WithGatherer(cf.deps.Gatherer).
		WithLogger(log).
		WithTools(cf.deps.Tools...).
		WithToolsWithDeps(cf.deps.ToolsWithDeps...).
		WithInstructions(cf.instructions()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("%s MCP server started.", serverName)
	err = Serve(ctx, mcpServer, cache, cmd.InOrStdin(), cmd.OutOrStdout())
	if ctx.Err() != nil {
		log.Printf("Shutting down %s MCP server...", serverName)
	}
	return err
}
