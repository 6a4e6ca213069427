// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package backend_test

import (
	"crypto/x509"
	"testing"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct{ name string }

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) ImportCertificate(*x509.Certificate) (backend.CertHandle, error) {
	return nil, nil
}

func (s *stubBackend) OpenContext(backend.Input) (backend.Context, backend.Outcome, backend.NativeStatus) {
	return nil, backend.Failure, -1
}

func TestRegistry(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "RegisterAndNew",
			testFunc: func(t *testing.T) {
				backend.Register("stub-registry", func(backend.Options) (backend.Backend, error) {
					return &stubBackend{name: "stub-registry"}, nil
				})

				assert.Contains(t, backend.Names(), "stub-registry")
				be, err := backend.New("stub-registry", backend.Options{})
				require.NoError(t, err)
				assert.Equal(t, "stub-registry", be.Name())
			},
		},
		{
			name: "Unknown",
			testFunc: func(t *testing.T) {
				_, err := backend.New("does-not-exist", backend.Options{})
				assert.ErrorIs(t, err, backend.ErrUnknownBackend)
			},
		},
		{
			name: "DuplicatePanics",
			testFunc: func(t *testing.T) {
				f := func(backend.Options) (backend.Backend, error) { return &stubBackend{}, nil }
				backend.Register("stub-duplicate", f)
				assert.Panics(t, func() { backend.Register("stub-duplicate", f) })
				assert.Panics(t, func() { backend.Register("stub-nil", nil) })
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.True(t, backend.Success.Valid())
	assert.True(t, backend.Failure.Valid())
	assert.False(t, backend.Outcome(2).Valid())
	assert.False(t, backend.Outcome(-1).Valid())
	assert.Equal(t, "outcome(7)", backend.Outcome(7).String())
}

func TestRawStatus_String(t *testing.T) {
	assert.Equal(t, "ok", backend.RawStatus(0).String())
	assert.Equal(t, "time-invalid|untrusted-anchor", (backend.RawUntrustedAnchor | backend.RawTimeInvalid).String())
	assert.True(t, (backend.RawRevoked | backend.RawCycle).Has(backend.RawCycle))
}

func TestRawStatus_Bits(t *testing.T) {
	s := backend.RawRevoked | backend.RawCycle

	tests := []struct {
		name    string
		bits    backend.RawStatus
		wantHas bool
		wantAny bool
	}{
		{name: "all bits set", bits: backend.RawRevoked | backend.RawCycle, wantHas: true, wantAny: true},
		{name: "one of two set", bits: backend.RawRevoked | backend.RawTimeInvalid, wantHas: false, wantAny: true},
		{name: "none set", bits: backend.RawTimeInvalid | backend.RawUntrustedAnchor, wantHas: false, wantAny: false},
		{name: "empty mask", bits: 0, wantHas: true, wantAny: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantHas, s.Has(tt.bits))
			assert.Equal(t, tt.wantAny, s.Any(tt.bits))
		})
	}
}

func TestParseTrustMode(t *testing.T) {
	tests := []struct {
		in      string
		want    backend.TrustMode
		wantErr bool
	}{
		{"", backend.SystemTrust, false},
		{"system", backend.SystemTrust, false},
		{"Custom", backend.CustomRootTrust, false},
		{"custom-root", backend.CustomRootTrust, false},
		{"bogus", backend.SystemTrust, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := backend.ParseTrustMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
