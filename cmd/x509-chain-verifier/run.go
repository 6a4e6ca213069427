// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/cli"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
	verpkg "github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

// exitSignaled is the conventional status for a run ended by SIGINT.
const exitSignaled = 130

func main() {
	log := logger.NewCLILogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version)
	}()

	select {
	case err := <-done:
		os.Exit(cli.ExitCode(err))
	case <-ctx.Done():
		log.Println("Operation cancelled by signal. Exiting...")
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
		os.Exit(exitSignaled)
	}
}
