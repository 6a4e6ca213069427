// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
)

const (
	formatTable = "table"
	formatTree  = "tree"
	formatJSON  = "json"
)

type verifyOptions struct {
	configPath  string
	backendName string
	host        string
	extra       []string
	roots       []string
	crls        []string
	revocation  string
	scope       string
	appPolicy   []string
	certPolicy  []string
	at          string
	noDownload  bool
	timeout     time.Duration
	format      string
	output      string
}

func newVerifyCommand() *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify [CERT_FILE]",
		Short: "Evaluate the trust chain of a certificate",
		Long: `Build and evaluate the chain of a certificate read from CERT_FILE (PEM, DER,
PKCS#7 or base64) or presented by a TLS server, and report the status of
every certificate on the path.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  x509-chain-verifier verify leaf.pem
  x509-chain-verifier verify --host example.com --format tree
  x509-chain-verifier verify leaf.pem --root private-root.pem --revocation offline --crl root.crl`,
		RunE: opts.run,
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "configuration file (JSON or YAML)")
	f.StringVar(&opts.backendName, "backend", "", "trust backend name")
	f.StringVar(&opts.host, "host", "", "fetch the chain from a TLS server (host[:port])")
	f.StringArrayVarP(&opts.extra, "extra", "e", nil, "additional untrusted certificates")
	f.StringArrayVarP(&opts.roots, "root", "r", nil, "trust anchors; selects custom root trust")
	f.StringArrayVar(&opts.crls, "crl", nil, "CRL files for offline revocation checking")
	f.StringVar(&opts.revocation, "revocation", "", "revocation mode: nocheck, online or offline")
	f.StringVar(&opts.scope, "scope", "", "revocation scope: entire, exclude-root or end-only")
	f.StringArrayVar(&opts.appPolicy, "app-policy", nil, "required application policy (EKU) OID")
	f.StringArrayVar(&opts.certPolicy, "cert-policy", nil, "required certificate policy OID")
	f.StringVar(&opts.at, "at", "", "verification time (RFC 3339, default now)")
	f.BoolVar(&opts.noDownload, "no-download", false, "disable issuer certificate downloads")
	f.DurationVar(&opts.timeout, "timeout", 0, "network timeout per retrieval")
	f.StringVarP(&opts.format, "format", "f", formatTable, "output format: table, tree or json")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	return cmd
}

func (o *verifyOptions) run(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (o.host == "") {
		return ErrInputRequired
	}
	switch o.format {
	case formatTable, formatTree, formatJSON:
	default:
		return fmt.Errorf("cli: unknown format %q", o.format)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := o.apply(cmd.Flags(), cfg); err != nil {
		return err
	}
	log := cfg.Logger(cmd.ErrOrStderr())

	decoder := x509certs.New()
	trust, err := cfg.TrustConfig(decoder)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		trust.URLRetrievalTimeout = o.timeout
	}
	if o.at != "" {
		if trust.VerificationTime, err = time.Parse(time.RFC3339, o.at); err != nil {
			return fmt.Errorf("cli: --at: %w", err)
		}
	}

	leaf, extras, err := o.input(cmd.Context(), decoder, trust.URLRetrievalTimeout, args)
	if err != nil {
		return err
	}
	trust.ExtraStore = append(trust.ExtraStore, extras...)

	revocation.Default.SetConfig(cfg.CRLCacheConfig())
	if err := cfg.LoadCRLs(revocation.Default); err != nil {
		return err
	}

	b, err := backend.New(cfg.Backend.Name, cfg.BackendOptions(log))
	if err != nil {
		return err
	}
	log.Printf("Verifying %s with the %s backend", leaf.Subject, b.Name())

	res, err := x509chain.NewEvaluator(b, x509chain.WithLogger(log)).Build(cmd.Context(), leaf, trust)
	if err != nil {
		return err
	}

	if err := o.write(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.Trusted() {
		return fmt.Errorf("%w: %s", ErrNotTrusted, res.Status)
	}
	return nil
}

// apply overrides cfg with the flags given on the command line.
func (o *verifyOptions) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	v := &cfg.Verification
	if flags.Changed("backend") {
		if _, ok := backend.Lookup(o.backendName); !ok {
			return fmt.Errorf("%w: %q", backend.ErrUnknownBackend, o.backendName)
		}
		cfg.Backend.Name = o.backendName
	}
	if flags.Changed("revocation") {
		if _, err := revocation.ParseMode(o.revocation); err != nil {
			return err
		}
		v.RevocationMode = o.revocation
	}
	if flags.Changed("scope") {
		if _, err := revocation.ParseScope(o.scope); err != nil {
			return err
		}
		v.RevocationScope = o.scope
	}
	if len(o.roots) > 0 {
		v.TrustStore = append(v.TrustStore, o.roots...)
		v.TrustMode = backend.CustomRootTrust.String()
	}
	v.ExtraStore = append(v.ExtraStore, o.extra...)
	v.CRLFiles = append(v.CRLFiles, o.crls...)
	if flags.Changed("app-policy") {
		v.ApplicationPolicy = o.appPolicy
	}
	if flags.Changed("cert-policy") {
		v.CertificatePolicy = o.certPolicy
	}
	if o.noDownload {
		v.DisableDownloads = true
	}
	return nil
}

// input returns the leaf to verify and any certificates delivered with it.
func (o *verifyOptions) input(ctx context.Context, d *x509certs.Decoder, timeout time.Duration, args []string) (*x509.Certificate, []*x509.Certificate, error) {
	if o.host != "" {
		addr := o.host
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = net.JoinHostPort(addr, "443")
		}
		return x509chain.FetchPeerCertificates(ctx, addr, timeout)
	}

	certs, err := d.DecodeInput(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("cli: reading %s: %w", args[0], err)
	}
	return certs[0], certs[1:], nil
}

func (o *verifyOptions) write(stdout io.Writer, res *x509chain.Result) error {
	var data []byte
	switch o.format {
	case formatJSON:
		out, err := res.ToJSON()
		if err != nil {
			return err
		}
		data = append(out, '\n')
	case formatTree:
		data = []byte(res.RenderTree())
	default:
		data = []byte(res.RenderTable())
	}

	if o.output != "" {
		if err := os.WriteFile(o.output, data, 0644); err != nil {
			return fmt.Errorf("cli: writing to output file: %w", err)
		}
		return nil
	}
	_, err := stdout.Write(data)
	return err
}
