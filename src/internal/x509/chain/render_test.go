// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend/backendtest"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/x509test"
)

func evaluate(t *testing.T, b *backendtest.Backend, ch *x509test.Chain) *x509chain.Result {
	t.Helper()
	res, err := x509chain.NewEvaluator(b).Build(context.Background(), ch.Leaf.Cert, customRoot(ch.Root.Cert))
	require.NoError(t, err)
	return res
}

func TestRender(t *testing.T) {
	ch := x509test.NewChain(t)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "tree of a trusted chain",
			testFunc: func(t *testing.T) {
				tree := evaluate(t, scripted(ch), ch).RenderTree()
				lines := strings.Split(strings.TrimSpace(tree), "\n")
				require.Len(t, lines, 4)
				assert.Equal(t, "├── [✓] leaf.example.com (End-Entity (Server/Leaf) Certificate)", lines[0])
				assert.Equal(t, "├── [✓] Test Intermediate CA (Intermediate CA Certificate)", lines[1])
				assert.Equal(t, "└── [✓] Test Root CA (Root CA Certificate)", lines[2])
				assert.Equal(t, "Overall: trusted", lines[3])
			},
		},
		{
			name: "tree marks flagged elements",
			testFunc: func(t *testing.T) {
				b := scripted(ch, backend.RawTimeInvalid|backend.RawBadSignature)
				b.Path = b.Path[:2]
				b.Path[1].Raw = backend.RawUntrustedAnchor

				tree := evaluate(t, b, ch).RenderTree()
				assert.Contains(t, tree, "├── [✗] leaf.example.com (End-Entity (Server/Leaf) Certificate) NotTimeValid|NotSignatureValid")
				assert.Contains(t, tree, "└── [✗] Test Intermediate CA (Last Available Issuer) PartialChain")
				assert.Contains(t, tree, "Overall: not trusted: NotTimeValid|NotSignatureValid|PartialChain")
			},
		},
		{
			name: "tree of a single self-signed certificate",
			testFunc: func(t *testing.T) {
				self := x509test.NewLeaf(t, "self.example.com", nil)
				b := &backendtest.Backend{Path: []backendtest.Element{{Cert: self.Cert, Raw: backend.RawUntrustedAnchor}}}
				res, err := x509chain.NewEvaluator(b).Build(context.Background(), self.Cert, x509chain.TrustConfig{})
				require.NoError(t, err)
				assert.Contains(t, res.RenderTree(), "└── [✗] self.example.com (Self-Signed Certificate) UntrustedRoot")
			},
		},
		{
			name: "table",
			testFunc: func(t *testing.T) {
				table := evaluate(t, scripted(ch), ch).RenderTable()
				for _, want := range []string{"ROLE", "SUBJECT", "VALID UNTIL", "leaf.example.com", "Test Root CA", "256-bit ECDSA", "NoError"} {
					assert.Contains(t, strings.ToUpper(table), strings.ToUpper(want))
				}
			},
		},
		{
			name: "json",
			testFunc: func(t *testing.T) {
				b := scripted(ch, backend.RawRevocationUnknown)
				cfg := customRoot(ch.Root.Cert)
				cfg.RevocationMode = revocation.Online
				res, err := x509chain.NewEvaluator(b).Build(context.Background(), ch.Leaf.Cert, cfg)
				require.NoError(t, err)

				data, err := res.ToJSON()
				require.NoError(t, err)

				var doc struct {
					Backend     string `json:"backend"`
					Trusted     bool   `json:"trusted"`
					ChainLength int    `json:"chainLength"`
					Status      []struct {
						Flag    string `json:"flag"`
						Message string `json:"message"`
					} `json:"status"`
					Certificates []struct {
						Role      string            `json:"role"`
						Subject   string            `json:"subject"`
						SubjectDN string            `json:"subjectDN"`
						Issuer    string            `json:"issuer"`
						IssuerDN  string            `json:"issuerDN"`
						SHA256    string            `json:"sha256"`
						Status    []json.RawMessage `json:"status"`
					} `json:"certificates"`
					Relationships []struct {
						FromIndex int    `json:"fromIndex"`
						ToIndex   int    `json:"toIndex"`
						Type      string `json:"type"`
					} `json:"relationships"`
				}
				require.NoError(t, json.Unmarshal(data, &doc))

				assert.Equal(t, backendtest.Name, doc.Backend)
				assert.False(t, doc.Trusted)
				assert.Equal(t, 3, doc.ChainLength)
				require.Len(t, doc.Status, 1)
				assert.Equal(t, "RevocationStatusUnknown", doc.Status[0].Flag)
				require.Len(t, doc.Certificates, 3)
				assert.Equal(t, x509certs.Fingerprint(ch.Leaf.Cert), doc.Certificates[0].SHA256)
				assert.Equal(t, "leaf.example.com", doc.Certificates[0].Subject)
				assert.Equal(t, "CN=leaf.example.com,O=Test Organization", doc.Certificates[0].SubjectDN)
				assert.Equal(t, "Test Intermediate CA", doc.Certificates[0].Issuer)
				assert.Equal(t, "CN=Test Intermediate CA,O=Test Organization", doc.Certificates[0].IssuerDN)
				assert.Len(t, doc.Certificates[0].Status, 1)
				assert.NotNil(t, doc.Certificates[1].Status)
				assert.Empty(t, doc.Certificates[1].Status)
				require.Len(t, doc.Relationships, 2)
				assert.Equal(t, "signed_by", doc.Relationships[1].Type)
				assert.Equal(t, 2, doc.Relationships[1].ToIndex)
			},
		},
		{
			name: "empty result",
			testFunc: func(t *testing.T) {
				var res x509chain.Result
				assert.Equal(t, "No certificates in chain", res.RenderTree())
				assert.Equal(t, "No certificates to display", res.RenderTable())
				assert.True(t, res.Trusted())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
