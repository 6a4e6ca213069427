// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
)

// handleVerifyCertChain evaluates the chain of the given certificate.
//
// Parameters:
//   - ctx: Context bounding the evaluation and any network retrieval
//   - request: Tool request carrying the certificate and verification options
//   - deps: Server dependencies providing configuration, decoder and evaluator
//
// Returns:
//   - *mcp.CallToolResult: The rendered result, or a tool error for bad input
//     and evaluation failures
//   - error: Always nil; failures are reported to the client as tool errors
//
// An untrusted chain is a successful call: the result carries the status.
func handleVerifyCertChain(ctx context.Context, request mcp.CallToolRequest, deps *ServerDependencies) (*mcp.CallToolResult, error) {
	input, err := request.RequireString("certificate")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("certificate parameter required: %v", err)), nil
	}

	format := request.GetString("format", "json")
	switch format {
	case "json", "table", "tree":
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q: use json, table or tree", format)), nil
	}

	trust, err := deps.Config.TrustConfig(deps.Decoder)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load configured trust stores: %v", err)), nil
	}
	if err := applyVerifyArguments(request, deps.Decoder, &trust); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	certs, err := deps.Decoder.DecodeInput(input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode certificate: %v", err)), nil
	}
	trust.ExtraStore = append(trust.ExtraStore, certs[1:]...)

	res, err := deps.Evaluator.Build(ctx, certs[0], trust)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chain evaluation failed: %v", err)), nil
	}
	deps.Logger.Printf("Verified %s: %s", certs[0].Subject.CommonName, res.Status)

	if format == "json" {
		data, err := res.ToJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()
	buf.WriteString(fmt.Sprintf("Backend: %s\nVerified at: %s\nStatus: %s\n\n",
		res.Backend, res.VerificationTime.Format(time.RFC3339), res.Status))
	if format == "tree" {
		buf.WriteString(res.RenderTree())
	} else {
		buf.WriteString(res.RenderTable())
	}
	return mcp.NewToolResultText(string(buf.Bytes())), nil
}

// applyVerifyArguments overrides trust with the options present in request.
func applyVerifyArguments(request mcp.CallToolRequest, d *x509certs.Decoder, trust *x509chain.TrustConfig) error {
	if s := request.GetString("revocation_mode", ""); s != "" {
		mode, err := revocation.ParseMode(s)
		if err != nil {
			return err
		}
		trust.RevocationMode = mode
	}
	if s := request.GetString("revocation_scope", ""); s != "" {
		scope, err := revocation.ParseScope(s)
		if err != nil {
			return err
		}
		trust.RevocationScope = scope
	}

	if roots := splitList(request.GetString("roots", "")); len(roots) > 0 {
		certs, err := decodeList(d, roots)
		if err != nil {
			return fmt.Errorf("failed to decode roots: %w", err)
		}
		trust.TrustMode = backend.CustomRootTrust
		trust.CustomTrustStore = certs
	}
	if extra := splitList(request.GetString("extra", "")); len(extra) > 0 {
		certs, err := decodeList(d, extra)
		if err != nil {
			return fmt.Errorf("failed to decode extra certificates: %w", err)
		}
		trust.ExtraStore = append(trust.ExtraStore, certs...)
	}

	if oids := splitList(request.GetString("application_policy", "")); len(oids) > 0 {
		trust.ApplicationPolicy = oids
	}
	if oids := splitList(request.GetString("certificate_policy", "")); len(oids) > 0 {
		trust.CertificatePolicy = oids
	}
	if s := request.GetString("verification_time", ""); s != "" {
		at, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid verification_time: %w", err)
		}
		trust.VerificationTime = at
	}
	if request.GetBool("disable_downloads", false) {
		trust.DisableCertificateDownloads = true
	}
	return nil
}

// splitList splits a comma-separated argument, dropping empty items.
func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func decodeList(d *x509certs.Decoder, inputs []string) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for _, in := range inputs {
		decoded, err := d.DecodeInput(in)
		if err != nil {
			return nil, err
		}
		certs = append(certs, decoded...)
	}
	return certs, nil
}

// handleGetVerificationMetrics reports the metrics of the running server.
//
// Returns:
//   - *mcp.CallToolResult: JSON or markdown report
//   - error: Always nil; failures are reported as tool errors
func handleGetVerificationMetrics(ctx context.Context, request mcp.CallToolRequest, deps *ServerDependencies) (*mcp.CallToolResult, error) {
	format := request.GetString("format", "json")
	detailed := request.GetBool("detailed", false)

	report, err := CollectMetricsReport(deps.Gatherer, deps.CRLCache, detailed)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to gather metrics: %v", err)), nil
	}

	switch format {
	case "json":
		data, err := report.JSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode metrics: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case "markdown":
		return mcp.NewToolResultText(report.Markdown()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q: use json or markdown", format)), nil
	}
}
