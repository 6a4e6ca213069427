// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509test generates certificates for tests.
package x509test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Issued is a generated certificate with its private key.
type Issued struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// Option adjusts a certificate template before signing.
type Option func(tmpl *x509.Certificate)

// WithValidity sets the validity window.
func WithValidity(notBefore, notAfter time.Time) Option {
	return func(tmpl *x509.Certificate) {
		tmpl.NotBefore = notBefore
		tmpl.NotAfter = notAfter
	}
}

// WithSerial sets the serial number.
func WithSerial(serial int64) Option {
	return func(tmpl *x509.Certificate) { tmpl.SerialNumber = big.NewInt(serial) }
}

// WithPolicies sets the certificate policies extension.
func WithPolicies(oids ...string) Option {
	return func(tmpl *x509.Certificate) {
		for _, s := range oids {
			oid, err := x509.ParseOID(s)
			if err != nil {
				panic(err)
			}
			tmpl.Policies = append(tmpl.Policies, oid)
		}
	}
}

// WithExtKeyUsage replaces the extended key usages.
func WithExtKeyUsage(usages ...x509.ExtKeyUsage) Option {
	return func(tmpl *x509.Certificate) { tmpl.ExtKeyUsage = usages }
}

// WithUnknownExtKeyUsage adds custom extended key usage OIDs.
func WithUnknownExtKeyUsage(oids ...asn1.ObjectIdentifier) Option {
	return func(tmpl *x509.Certificate) {
		tmpl.UnknownExtKeyUsage = append(tmpl.UnknownExtKeyUsage, oids...)
	}
}

// WithExtension adds a raw extension.
func WithExtension(id asn1.ObjectIdentifier, critical bool, value []byte) Option {
	return func(tmpl *x509.Certificate) {
		tmpl.ExtraExtensions = append(tmpl.ExtraExtensions, pkix.Extension{Id: id, Critical: critical, Value: value})
	}
}

// WithIssuingCertificateURL sets the AIA caIssuers URL.
func WithIssuingCertificateURL(urls ...string) Option {
	return func(tmpl *x509.Certificate) { tmpl.IssuingCertificateURL = urls }
}

// WithOCSPServer sets the AIA OCSP URL.
func WithOCSPServer(urls ...string) Option {
	return func(tmpl *x509.Certificate) { tmpl.OCSPServer = urls }
}

// WithCRLDistributionPoints sets the CRL distribution points.
func WithCRLDistributionPoints(urls ...string) Option {
	return func(tmpl *x509.Certificate) { tmpl.CRLDistributionPoints = urls }
}

// WithMaxPathLen sets the path length constraint. Zero means MaxPathLenZero.
func WithMaxPathLen(n int) Option {
	return func(tmpl *x509.Certificate) {
		tmpl.MaxPathLen = n
		tmpl.MaxPathLenZero = n == 0
	}
}

// WithDNSNames sets the subject alternative DNS names.
func WithDNSNames(names ...string) Option {
	return func(tmpl *x509.Certificate) { tmpl.DNSNames = names }
}

// WithPermittedDNSDomains sets a permitted DNS name constraint.
func WithPermittedDNSDomains(domains ...string) Option {
	return func(tmpl *x509.Certificate) {
		tmpl.PermittedDNSDomains = domains
		tmpl.PermittedDNSDomainsCritical = true
	}
}

// NotCA clears the CA bit, for certificates meant to be misused as issuers.
func NotCA() Option {
	return func(tmpl *x509.Certificate) {
		tmpl.IsCA = false
		tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	}
}

func serial(t testing.TB) *big.Int {
	t.Helper()
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
	require.NoError(t, err)
	return n
}

// epoch anchors every default validity window, so generated chains nest.
var epoch = time.Now().UTC().Truncate(time.Second)

func template(t testing.TB, cn string, isCA bool) *x509.Certificate {
	now := epoch
	tmpl := &x509.Certificate{
		SerialNumber:          serial(t),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"Test Organization"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	if isCA {
		tmpl.IsCA = true
		tmpl.KeyUsage |= x509.KeyUsageCertSign | x509.KeyUsageCRLSign
		tmpl.MaxPathLen = -1
	} else {
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
		tmpl.DNSNames = []string{cn}
	}
	return tmpl
}

func issue(t testing.TB, tmpl *x509.Certificate, parent *Issued, opts []Option) *Issued {
	t.Helper()

	for _, opt := range opts {
		opt(tmpl)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	signerCert, signerKey := tmpl, key
	if parent != nil {
		signerCert, signerKey = parent.Cert, parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, signerCert, &key.PublicKey, signerKey)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &Issued{Cert: cert, Key: key}
}

// NewRoot creates a self-signed CA.
func NewRoot(t testing.TB, cn string, opts ...Option) *Issued {
	t.Helper()
	return issue(t, template(t, cn, true), nil, opts)
}

// NewIntermediate creates a CA signed by parent.
func NewIntermediate(t testing.TB, cn string, parent *Issued, opts ...Option) *Issued {
	t.Helper()
	return issue(t, template(t, cn, true), parent, opts)
}

// NewLeaf creates an end-entity certificate signed by parent. A nil parent
// produces a self-signed leaf.
func NewLeaf(t testing.TB, cn string, parent *Issued, opts ...Option) *Issued {
	t.Helper()
	return issue(t, template(t, cn, false), parent, opts)
}

// Chain is a conventional leaf, intermediate and root triple.
type Chain struct {
	Root, Intermediate, Leaf *Issued
}

// NewChain creates a three certificate chain. Options apply to the leaf.
func NewChain(t testing.TB, opts ...Option) *Chain {
	t.Helper()
	root := NewRoot(t, "Test Root CA")
	inter := NewIntermediate(t, "Test Intermediate CA", root)
	leaf := NewLeaf(t, "leaf.example.com", inter, opts...)
	return &Chain{Root: root, Intermediate: inter, Leaf: leaf}
}

// Path returns the chain certificates leaf first.
func (c *Chain) Path() []*x509.Certificate {
	return []*x509.Certificate{c.Leaf.Cert, c.Intermediate.Cert, c.Root.Cert}
}

// PEM encodes certificates as concatenated PEM blocks.
func PEM(certs ...*x509.Certificate) []byte {
	var out []byte
	for _, c := range certs {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.Raw})...)
	}
	return out
}

// NewCRL issues a CRL from issuer revoking the given serial numbers.
func NewCRL(t testing.TB, issuer *Issued, nextUpdate time.Time, revoked ...*big.Int) *x509.RevocationList {
	t.Helper()

	entries := make([]x509.RevocationListEntry, 0, len(revoked))
	for _, s := range revoked {
		entries = append(entries, x509.RevocationListEntry{SerialNumber: s, RevocationTime: time.Now().Add(-time.Minute)})
	}
	thisUpdate := time.Now().Add(-time.Hour)
	if !nextUpdate.After(thisUpdate) {
		thisUpdate = nextUpdate.Add(-time.Hour)
	}
	der, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    big.NewInt(1),
		ThisUpdate:                thisUpdate,
		NextUpdate:                nextUpdate,
		RevokedCertificateEntries: entries,
	}, issuer.Cert, issuer.Key)
	require.NoError(t, err)

	crl, err := x509.ParseRevocationList(der)
	require.NoError(t, err)
	return crl
}
