// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
)

// TrustConfig describes how one chain is evaluated. It is read, never
// modified, by [Evaluator.Build].
type TrustConfig struct {
	RevocationMode  revocation.Mode
	RevocationScope revocation.Scope
	TrustMode       backend.TrustMode

	// ExtraStore holds untrusted certificates available for path building.
	ExtraStore []*x509.Certificate
	// CustomTrustStore holds the trust anchors used with
	// [backend.CustomRootTrust]. Members that are not self-issued are only
	// made available for path building.
	CustomTrustStore []*x509.Certificate

	// VerificationTime is the instant the chain is evaluated at. The zero
	// value means now. Any location is accepted.
	VerificationTime time.Time

	// ApplicationPolicy and CertificatePolicy are dotted OID strings.
	ApplicationPolicy []string
	CertificatePolicy []string

	// DisableCertificateDownloads turns off AIA issuer retrieval.
	DisableCertificateDownloads bool
	// URLRetrievalTimeout bounds each network retrieval. Zero leaves the
	// backend default.
	URLRetrievalTimeout time.Duration
}

// DefaultTrustConfig returns the configuration used when nothing is set:
// system trust, online revocation checking excluding the root, downloads on.
func DefaultTrustConfig() TrustConfig {
	return TrustConfig{
		RevocationMode:  revocation.Online,
		RevocationScope: revocation.ExcludeRoot,
		TrustMode:       backend.SystemTrust,
	}
}

// AllowNetwork reports whether the backend may use the network. A backend
// has a single network toggle, so it is on when either downloads or online
// revocation checking are wanted.
func (c TrustConfig) AllowNetwork() bool {
	return !c.DisableCertificateDownloads || c.RevocationMode == revocation.Online
}
