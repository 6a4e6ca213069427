// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/helper/gc"
	"github.com/cloudflare/cfssl/crypto/pkcs7"
	mozpkcs7 "go.mozilla.org/pkcs7"
)

// MaxFileSize bounds certificate files read by [Decoder.DecodeFile].
const MaxFileSize = 4 << 20

var (
	// ErrInvalidBlockType indicates a PEM block that does not hold a certificate.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates data that is neither a certificate nor a PKCS#7 bundle.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrNoCertificates indicates input that decoded to zero certificates.
	ErrNoCertificates = errors.New("x509certs: no certificates found")
)

// Decoder turns PEM, DER and PKCS#7 encoded [X.509] material into
// certificates. The zero value is not usable; call [New].
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Decoder struct {
	blockType string
	pool      gc.Pool
}

// New creates a Decoder that reads files through the shared buffer pool.
func New() *Decoder {
	return &Decoder{
		blockType: "CERTIFICATE",
		pool:      gc.Default,
	}
}

// IsPEM reports whether data starts with (or contains) a PEM block.
func (d *Decoder) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// Decode returns the first certificate found in data.
func (d *Decoder) Decode(data []byte) (*x509.Certificate, error) {
	certs, err := d.DecodeAll(data)
	if err != nil {
		return nil, err
	}
	return certs[0], nil
}

// DecodeAll decodes every certificate in data. PEM input may mix
// certificate blocks with PKCS7 blocks; non-certificate blocks such as
// private keys are rejected. Binary input is tried as concatenated DER
// first and as a degenerate PKCS#7 SignedData second.
func (d *Decoder) DecodeAll(data []byte) ([]*x509.Certificate, error) {
	var (
		certs []*x509.Certificate
		err   error
	)
	if d.IsPEM(data) {
		certs, err = d.decodePEM(data)
	} else {
		certs, err = d.decodeBinary(data)
	}
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}
	return certs, nil
}

func (d *Decoder) decodePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest

		switch block.Type {
		case d.blockType:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
			}
			certs = append(certs, cert)
		case "PKCS7":
			bundle, err := d.decodePKCS7(block.Bytes)
			if err != nil {
				return nil, err
			}
			certs = append(certs, bundle...)
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidBlockType, block.Type)
		}
	}
	return certs, nil
}

func (d *Decoder) decodeBinary(data []byte) ([]*x509.Certificate, error) {
	certs, err := x509.ParseCertificates(data)
	if err == nil {
		return certs, nil
	}
	return d.decodePKCS7(data)
}

// decodePKCS7 extracts the certificates of a SignedData bundle. cfssl
// misreads a SignedData without CRLs, so certificates-only bundles such as
// AIA .p7c responses are parsed by the mozilla decoder when cfssl fails.
func (d *Decoder) decodePKCS7(data []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		p7, mozErr := mozpkcs7.Parse(data)
		if mozErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseCertificate, errors.Join(err, mozErr))
		}
		if len(p7.Certificates) == 0 {
			return nil, ErrNoCertificates
		}
		return p7.Certificates, nil
	}
	if p.ContentInfo != "SignedData" || len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificates
	}
	return p.Content.SignedData.Certificates, nil
}

// DecodeFile reads path and decodes every certificate in it.
func (d *Decoder) DecodeFile(path string) ([]*x509.Certificate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := gc.ReadAll(d.pool, f, MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("x509certs: reading %s: %w", path, err)
	}
	certs, err := d.DecodeAll(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return certs, nil
}

// DecodeBase64 decodes standard base64 text wrapping PEM, DER or PKCS#7 data.
func (d *Decoder) DecodeBase64(s string) ([]*x509.Certificate, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
	}
	return d.DecodeAll(raw)
}

// DecodeInput accepts either a file path or base64 text. Existing files win.
func (d *Decoder) DecodeInput(input string) ([]*x509.Certificate, error) {
	input = strings.TrimSpace(input)
	if st, err := os.Stat(input); err == nil && !st.IsDir() {
		return d.DecodeFile(input)
	}
	return d.DecodeBase64(input)
}

// EncodePEM encodes a certificate to PEM format.
func (d *Decoder) EncodePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: d.blockType, Bytes: cert.Raw})
}

// EncodeMultiplePEM encodes certificates as one PEM bundle.
func (d *Decoder) EncodeMultiplePEM(certs []*x509.Certificate) []byte {
	var buf bytes.Buffer
	for _, cert := range certs {
		buf.Write(d.EncodePEM(cert))
	}
	return buf.Bytes()
}

// Fingerprint returns the lowercase hex SHA-256 digest of the DER encoding.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// NormalizeFingerprint lowercases a fingerprint and strips colons and spaces,
// so "AB:CD" and "abcd" compare equal.
func NormalizeFingerprint(s string) string {
	return strings.ToLower(strings.NewReplacer(":", "", " ", "").Replace(strings.TrimSpace(s)))
}
