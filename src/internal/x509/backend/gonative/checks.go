// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gonative

import (
	"context"
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/policy"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

// check fills in the raw status of every element of c.elements.
func (c *evalContext) check(ctx context.Context, allowNetwork, trusted, cycle bool) {
	n := len(c.elements)
	path := make([]*x509.Certificate, n)
	for i, e := range c.elements {
		path[i] = e.cert
	}

	for i := range c.elements {
		cert := path[i]
		var raw backend.RawStatus

		if !timeValid(cert, c.at) {
			raw |= backend.RawTimeInvalid
		}
		if i+1 < n {
			issuer := path[i+1]
			if !nested(cert, issuer) {
				raw |= backend.RawTimeNesting
			}
			raw |= signatureStatus(cert, issuer)
		}
		if i > 0 {
			raw |= caStatus(cert, i)
		}
		if unsupportedCritical(cert) {
			raw |= backend.RawUnsupportedCriticalExtension
		}
		if _, bad := c.owner.distrusted[x509certs.Fingerprint(cert)]; bad {
			raw |= backend.RawBlockedAnchor
		}
		if c.revMode != backend.RevocationNoCheck {
			raw |= c.revocationStatus(ctx, path, i, allowNetwork)
		}
		c.elements[i].raw = raw
	}

	last := n - 1
	if !trusted {
		c.elements[last].raw |= backend.RawUntrustedAnchor
	}
	if cycle {
		c.elements[last].raw |= backend.RawCycle
	}

	for idx, bits := range verifyDiagnostics(path, c.at) {
		c.elements[idx].raw |= bits
	}
}

func timeValid(cert *x509.Certificate, at time.Time) bool {
	return !at.Before(cert.NotBefore) && !at.After(cert.NotAfter)
}

// nested reports whether the validity of cert lies within that of issuer.
func nested(cert, issuer *x509.Certificate) bool {
	return !cert.NotBefore.Before(issuer.NotBefore) && !cert.NotAfter.After(issuer.NotAfter)
}

// verifySignature checks the signature on cert with the key of issuer,
// without the CA checks CheckSignatureFrom adds.
func verifySignature(cert, issuer *x509.Certificate) error {
	return issuer.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature)
}

func signatureStatus(cert, issuer *x509.Certificate) backend.RawStatus {
	err := verifySignature(cert, issuer)
	if err == nil {
		return 0
	}
	var insecure x509.InsecureAlgorithmError
	if errors.As(err, &insecure) {
		return backend.RawWeakDigest
	}
	return backend.RawBadSignature
}

// caStatus checks the issuer at index i (i >= 1). The number of
// intermediates below it, not counting the leaf, is i-1.
func caStatus(cert *x509.Certificate, i int) backend.RawStatus {
	var raw backend.RawStatus
	if !cert.BasicConstraintsValid || !cert.IsCA {
		raw |= backend.RawBasicConstraints
	} else if cert.MaxPathLen >= 0 && (cert.MaxPathLen > 0 || cert.MaxPathLenZero) && i-1 > cert.MaxPathLen {
		raw |= backend.RawBasicConstraints
	}
	if cert.KeyUsage != 0 && cert.KeyUsage&x509.KeyUsageCertSign == 0 {
		raw |= backend.RawUsage
	}
	return raw
}

// unsupportedCritical reports critical extensions crypto/x509 left
// unhandled, ignoring the policy extensions the policy matcher processes.
func unsupportedCritical(cert *x509.Certificate) bool {
	for _, id := range cert.UnhandledCriticalExtensions {
		if !handledByPolicy(id) {
			return true
		}
	}
	return false
}

func handledByPolicy(id asn1.ObjectIdentifier) bool {
	for _, h := range policy.HandledExtensions {
		if id.Equal(h) {
			return true
		}
	}
	return false
}

func (c *evalContext) revocationStatus(ctx context.Context, path []*x509.Certificate, i int, allowNetwork bool) backend.RawStatus {
	cert := path[i]
	var issuer *x509.Certificate
	switch {
	case i+1 < len(path):
		issuer = path[i+1]
	case status.SelfIssued(cert):
		issuer = cert
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	st := c.owner.checker.Check(ctx, cert, issuer, c.revMode, allowNetwork)
	switch st.Result {
	case revocation.Good:
		return 0
	case revocation.Revoked:
		return backend.RawRevoked
	default:
		raw := backend.RawRevocationUnknown
		if st.Offline {
			raw |= backend.RawRevocationOffline
		}
		return raw
	}
}

// verifyDiagnostics runs x509.Verify over the discovered path to pick up
// name constraint and extended key usage violations, which crypto/x509
// does not expose separately. The terminal is treated as the root and the
// verification time is moved inside every validity window when possible,
// so only CertificateInvalidError reasons unrelated to trust and time
// remain. The result maps element index to raw bits.
func verifyDiagnostics(path []*x509.Certificate, at time.Time) map[int]backend.RawStatus {
	roots := x509.NewCertPool()
	roots.AddCert(path[len(path)-1])
	inters := x509.NewCertPool()
	for _, cert := range path[1:] {
		inters.AddCert(cert)
	}

	_, err := path[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: inters,
		CurrentTime:   commonTime(path, at),
		KeyUsages:     requestedUsages(path[0]),
	})

	var invalid x509.CertificateInvalidError
	if !errors.As(err, &invalid) {
		return nil
	}

	var raw backend.RawStatus
	switch invalid.Reason {
	case x509.CANotAuthorizedForThisName:
		if strings.Contains(invalid.Detail, "excluded") {
			raw = backend.RawNameExcluded
		} else {
			raw = backend.RawNamePermitted
		}
	case x509.UnconstrainedName:
		raw = backend.RawNameUnsupported
	case x509.NameConstraintsWithoutSANs:
		raw = backend.RawNameUndefined
	case x509.TooManyConstraints:
		raw = backend.RawNameConstraints
	case x509.CANotAuthorizedForExtKeyUsage, x509.IncompatibleUsage:
		raw = backend.RawUsage
	default:
		return nil
	}

	idx := 0
	for i, cert := range path {
		if invalid.Cert != nil && cert.Equal(invalid.Cert) {
			idx = i
			break
		}
	}
	return map[int]backend.RawStatus{idx: raw}
}

// requestedUsages asks x509.Verify for the usages the leaf claims, so an
// issuer restricting its extended key usages to something else is caught.
func requestedUsages(leaf *x509.Certificate) []x509.ExtKeyUsage {
	if len(leaf.ExtKeyUsage) == 0 {
		return []x509.ExtKeyUsage{x509.ExtKeyUsageAny}
	}
	for _, u := range leaf.ExtKeyUsage {
		if u == x509.ExtKeyUsageAny {
			return []x509.ExtKeyUsage{x509.ExtKeyUsageAny}
		}
	}
	return leaf.ExtKeyUsage
}

// commonTime returns an instant inside every validity window of path, or at
// when the windows do not overlap.
func commonTime(path []*x509.Certificate, at time.Time) time.Time {
	lo, hi := path[0].NotBefore, path[0].NotAfter
	for _, cert := range path[1:] {
		if cert.NotBefore.After(lo) {
			lo = cert.NotBefore
		}
		if cert.NotAfter.Before(hi) {
			hi = cert.NotAfter
		}
	}
	if lo.After(hi) {
		return at
	}
	if !at.Before(lo) && !at.After(hi) {
		return at
	}
	return lo.Add(hi.Sub(lo) / 2)
}
