// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package status

import (
	"bytes"
	"crypto/x509"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
)

// rawTable translates backend raw bits flag-for-flag.
var rawTable = [...]struct {
	raw  backend.RawStatus
	flag Flags
}{
	{backend.RawTimeInvalid, NotTimeValid},
	{backend.RawTimeNesting, NotTimeNested},
	{backend.RawRevoked, Revoked},
	{backend.RawRevocationUnknown, RevocationStatusUnknown},
	{backend.RawRevocationOffline, OfflineRevocation},
	{backend.RawUntrustedAnchor, UntrustedRoot},
	{backend.RawPartialChain, PartialChain},
	{backend.RawBadSignature, NotSignatureValid},
	{backend.RawWeakDigest, HasWeakSignature},
	{backend.RawUsage, NotValidForUsage},
	{backend.RawBasicConstraints, InvalidBasicConstraints},
	{backend.RawNameConstraints, InvalidNameConstraints},
	{backend.RawNamePermitted, HasNotPermittedNameConstraint},
	{backend.RawNameExcluded, HasExcludedNameConstraint},
	{backend.RawNameUnsupported, HasNotSupportedNameConstraint},
	{backend.RawNameUndefined, HasNotDefinedNameConstraint},
	{backend.RawPolicyConstraints, InvalidPolicyConstraints},
	{backend.RawInvalidExtension, InvalidExtension},
	{backend.RawUnsupportedCriticalExtension, HasNotSupportedCriticalExtension},
	{backend.RawNoIssuancePolicy, NoIssuanceChainPolicy},
	{backend.RawBlockedAnchor, ExplicitDistrust},
	{backend.RawCycle, Cyclic},
}

// Translate converts raw backend bits into portable flags without applying
// any heuristics. Unknown raw bits are dropped.
func Translate(raw backend.RawStatus) Flags {
	var f Flags
	for _, e := range rawTable {
		if raw&e.raw != 0 {
			f |= e.flag
		}
	}
	return f
}

// Map converts the raw status reported for cert into portable flags.
//
// UntrustedRoot on a certificate that is not self-issued becomes
// PartialChain: the backend stopped because it found no parent, not because
// it rejected an anchor. On a self-issued certificate UntrustedRoot is kept,
// whether the root is unknown or was tampered with.
//
// With [backend.RevocationNoCheck] every revocation flag is cleared, since a
// backend may surface cached revocation results the caller did not ask for.
func Map(raw backend.RawStatus, cert *x509.Certificate, mode backend.RevocationMode) Flags {
	f := Translate(raw)

	if f.Has(UntrustedRoot) && cert != nil && !SelfIssued(cert) {
		f = f&^UntrustedRoot | PartialChain
	}

	if mode == backend.RevocationNoCheck {
		f &^= RevocationFlags
	}
	return f
}

// SelfIssued reports whether cert names itself as its issuer.
func SelfIssued(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawIssuer, cert.RawSubject)
}
