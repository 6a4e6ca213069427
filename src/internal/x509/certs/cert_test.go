// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs_test

import (
	"crypto/x509"
	"encoding/asn1"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/x509test"
)

// degeneratePKCS7 builds a certificates-only SignedData, the shape served
// as .p7c by many AIA endpoints.
func degeneratePKCS7(t *testing.T, certs ...*x509.Certificate) []byte {
	t.Helper()

	var certBytes []byte
	for _, c := range certs {
		certBytes = append(certBytes, c.Raw...)
	}

	type signedData struct {
		Version          int
		DigestAlgorithms []asn1.RawValue `asn1:"set"`
		ContentInfo      struct {
			ContentType asn1.ObjectIdentifier
		}
		Certificates asn1.RawValue
		SignerInfos  []asn1.RawValue `asn1:"set"`
	}
	sd := signedData{
		Version:          1,
		DigestAlgorithms: []asn1.RawValue{},
		Certificates:     asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: 0, IsCompound: true, Bytes: certBytes},
		SignerInfos:      []asn1.RawValue{},
	}
	sd.ContentInfo.ContentType = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	inner, err := asn1.Marshal(sd)
	require.NoError(t, err)

	type contentInfo struct {
		ContentType asn1.ObjectIdentifier
		Content     asn1.RawValue
	}
	out, err := asn1.Marshal(contentInfo{
		ContentType: asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2},
		Content:     asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: 0, IsCompound: true, Bytes: inner},
	})
	require.NoError(t, err)
	return out
}

func TestDecoder(t *testing.T) {
	ch := x509test.NewChain(t)
	path := ch.Path()
	decoder := x509certs.New()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "PEM bundle keeps order",
			testFunc: func(t *testing.T) {
				certs, err := decoder.DecodeAll(x509test.PEM(path...))
				require.NoError(t, err)
				require.Len(t, certs, len(path))
				for i := range path {
					assert.True(t, path[i].Equal(certs[i]), "index %d", i)
				}
			},
		},
		{
			name: "concatenated DER",
			testFunc: func(t *testing.T) {
				var der []byte
				for _, c := range path {
					der = append(der, c.Raw...)
				}
				certs, err := decoder.DecodeAll(der)
				require.NoError(t, err)
				assert.Len(t, certs, len(path))
			},
		},
		{
			name: "PKCS7 DER bundle",
			testFunc: func(t *testing.T) {
				certs, err := decoder.DecodeAll(degeneratePKCS7(t, path[1], path[2]))
				require.NoError(t, err)
				require.Len(t, certs, 2)
				assert.Equal(t, path[1].Subject.CommonName, certs[0].Subject.CommonName)
			},
		},
		{
			name: "PKCS7 PEM block mixed with certificate",
			testFunc: func(t *testing.T) {
				data := x509test.PEM(path[0])
				data = append(data, pem.EncodeToMemory(&pem.Block{Type: "PKCS7", Bytes: degeneratePKCS7(t, path[1])})...)
				certs, err := decoder.DecodeAll(data)
				require.NoError(t, err)
				assert.Len(t, certs, 2)
			},
		},
		{
			name: "PKCS7 certificates-only bundle from openssl",
			testFunc: func(t *testing.T) {
				data, err := os.ReadFile(filepath.Join("testdata", "root.p7c"))
				require.NoError(t, err)
				certs, err := decoder.DecodeAll(data)
				require.NoError(t, err)
				require.Len(t, certs, 1)
				assert.Equal(t, "Fixture Root CA", certs[0].Subject.CommonName)
			},
		},
		{
			name: "PKCS7 bundle as base64",
			testFunc: func(t *testing.T) {
				certs, err := decoder.DecodeInput(base64.StdEncoding.EncodeToString(degeneratePKCS7(t, path[2])))
				require.NoError(t, err)
				require.Len(t, certs, 1)
				assert.True(t, path[2].Equal(certs[0]))
			},
		},
		{
			name: "Decode returns first certificate",
			testFunc: func(t *testing.T) {
				cert, err := decoder.Decode(x509test.PEM(path...))
				require.NoError(t, err)
				assert.True(t, path[0].Equal(cert))
			},
		},
		{
			name: "private key block rejected",
			testFunc: func(t *testing.T) {
				data := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1, 2, 3}})
				_, err := decoder.DecodeAll(data)
				assert.ErrorIs(t, err, x509certs.ErrInvalidBlockType)
			},
		},
		{
			name: "garbage rejected",
			testFunc: func(t *testing.T) {
				_, err := decoder.DecodeAll([]byte("not a certificate"))
				assert.ErrorIs(t, err, x509certs.ErrParseCertificate)
			},
		},
		{
			name: "empty input",
			testFunc: func(t *testing.T) {
				_, err := decoder.DecodeAll(nil)
				assert.Error(t, err)
			},
		},
		{
			name: "EncodeMultiplePEM round trip",
			testFunc: func(t *testing.T) {
				out := decoder.EncodeMultiplePEM(path)
				assert.Equal(t, len(path), strings.Count(string(out), "BEGIN CERTIFICATE"))
				certs, err := decoder.DecodeAll(out)
				require.NoError(t, err)
				assert.Len(t, certs, len(path))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestDecoder_Inputs(t *testing.T) {
	ch := x509test.NewChain(t)
	decoder := x509certs.New()
	data := x509test.PEM(ch.Path()...)

	dir := t.TempDir()
	file := filepath.Join(dir, "chain.pem")
	require.NoError(t, os.WriteFile(file, data, 0o600))

	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "file path", input: file, want: 3},
		{name: "base64 PEM", input: base64.StdEncoding.EncodeToString(data), want: 3},
		{name: "base64 DER", input: base64.StdEncoding.EncodeToString(ch.Leaf.Cert.Raw), want: 1},
		{name: "missing file falls back to base64 and fails", input: filepath.Join(dir, "missing.pem"), wantErr: true},
		{name: "directory is not a file", input: dir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certs, err := decoder.DecodeInput(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, certs, tt.want)
		})
	}
}

func TestFingerprint(t *testing.T) {
	leaf := x509test.NewRoot(t, "fp").Cert
	fp := x509certs.Fingerprint(leaf)
	assert.Len(t, fp, 64)
	assert.Equal(t, strings.ToLower(fp), fp)

	var colon []string
	for i := 0; i < len(fp); i += 2 {
		colon = append(colon, strings.ToUpper(fp[i:i+2]))
	}
	assert.Equal(t, fp, x509certs.NormalizeFingerprint(strings.Join(colon, ":")))
}
