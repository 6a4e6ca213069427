// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

// RenderTree renders the chain as an ASCII tree, leaf first, marking each
// certificate with ✓ when it carries no status flag and ✗ otherwise.
//
// Returns:
//   - string: ASCII tree representation of the certificate chain
func (r *Result) RenderTree() string {
	if len(r.Elements) == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	for i, el := range r.Elements {
		connector := "├── "
		if i == len(r.Elements)-1 {
			connector = "└── "
		}

		statusIcon := "✓"
		if el.Status != status.NoError {
			statusIcon = "✗"
		}

		certInfo := fmt.Sprintf("[%s] %s (%s)", statusIcon, el.Certificate.Subject.CommonName, r.role(i))
		if el.Status != status.NoError {
			certInfo += " " + el.Status.String()
		}
		result.WriteString(connector + certInfo + "\n")
	}

	overall := "trusted"
	if !r.Trusted() {
		overall = "not trusted: " + r.Status.String()
	}
	result.WriteString("Overall: " + overall + "\n")
	return result.String()
}

// RenderTable renders the chain as a markdown table with one row per
// certificate: role, subject, issuer, expiry, key size and status flags.
//
// Returns:
//   - string: Markdown table representation of the certificate chain
func (r *Result) RenderTable() string {
	if len(r.Elements) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"#", "Role", "Subject", "Issuer", "Valid Until", "Key Size", "Status"})

	rows := make([][]string, 0, len(r.Elements))
	for i, el := range r.Elements {
		algo, bits := keyInfo(el.Certificate.PublicKey)
		keySize := "unknown"
		if bits > 0 {
			keySize = fmt.Sprintf("%d-bit %s", bits, algo)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			r.role(i),
			el.Certificate.Subject.CommonName,
			el.Certificate.Issuer.CommonName,
			el.Certificate.NotAfter.Format("2006-01-02"),
			keySize,
			el.Status.String(),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

type certificateJSON struct {
	Index              int            `json:"index"`
	Role               string         `json:"role"`
	Subject            string         `json:"subject"`
	SubjectDN          string         `json:"subjectDN"`
	Issuer             string         `json:"issuer"`
	IssuerDN           string         `json:"issuerDN"`
	SerialNumber       string         `json:"serialNumber"`
	SHA256             string         `json:"sha256"`
	SignatureAlgorithm string         `json:"signatureAlgorithm"`
	PublicKeyAlgorithm string         `json:"publicKeyAlgorithm"`
	KeySize            int            `json:"keySize"`
	NotBefore          time.Time      `json:"notBefore"`
	NotAfter           time.Time      `json:"notAfter"`
	IsCA               bool           `json:"isCA"`
	Status             []status.Entry `json:"status"`
}

type relationshipJSON struct {
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
	Type      string `json:"type"`
}

type resultJSON struct {
	VerificationTime string             `json:"verificationTime"`
	Backend          string             `json:"backend"`
	Trusted          bool               `json:"trusted"`
	ChainLength      int                `json:"chainLength"`
	Status           []status.Entry     `json:"status"`
	Certificates     []certificateJSON  `json:"certificates"`
	Relationships    []relationshipJSON `json:"relationships"`
}

// ToJSON converts the result to an indented JSON document with the overall
// status, every certificate with its own status entries, and the signed_by
// relationships between neighbours.
func (r *Result) ToJSON() ([]byte, error) {
	data := resultJSON{
		VerificationTime: r.VerificationTime.UTC().Format(time.RFC3339),
		Backend:          r.Backend,
		Trusted:          r.Trusted(),
		ChainLength:      len(r.Elements),
		Status:           nonNil(r.Entries),
		Certificates:     make([]certificateJSON, len(r.Elements)),
		Relationships:    make([]relationshipJSON, 0, len(r.Elements)),
	}

	for i, el := range r.Elements {
		cert := el.Certificate
		algo, bits := keyInfo(cert.PublicKey)
		data.Certificates[i] = certificateJSON{
			Index:              i,
			Role:               r.role(i),
			Subject:            cert.Subject.CommonName,
			SubjectDN:          cert.Subject.String(),
			Issuer:             cert.Issuer.CommonName,
			IssuerDN:           cert.Issuer.String(),
			SerialNumber:       cert.SerialNumber.String(),
			SHA256:             x509certs.Fingerprint(cert),
			SignatureAlgorithm: cert.SignatureAlgorithm.String(),
			PublicKeyAlgorithm: algo,
			KeySize:            bits,
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			IsCA:               cert.IsCA,
			Status:             nonNil(el.Entries),
		}
		if i+1 < len(r.Elements) {
			data.Relationships = append(data.Relationships, relationshipJSON{FromIndex: i, ToIndex: i + 1, Type: "signed_by"})
		}
	}

	return json.MarshalIndent(data, "", "  ")
}

func nonNil(entries []status.Entry) []status.Entry {
	if entries == nil {
		return []status.Entry{}
	}
	return entries
}

func keyInfo(pub any) (string, int) {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return "RSA", key.Size() * 8
	case *ecdsa.PublicKey:
		return "ECDSA", key.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return "unknown", 0
	}
}
