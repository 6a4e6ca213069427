// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package backend

import "strings"

// RawStatus is the native per-element defect bitmask shared by all backends.
type RawStatus uint32

const (
	RawTimeInvalid RawStatus = 1 << iota
	RawTimeNesting
	RawRevoked
	RawRevocationUnknown
	RawRevocationOffline
	RawUntrustedAnchor
	RawPartialChain
	RawBadSignature
	RawWeakDigest
	RawUsage
	RawBasicConstraints
	RawNameConstraints
	RawNamePermitted
	RawNameExcluded
	RawNameUnsupported
	RawNameUndefined
	RawPolicyConstraints
	RawInvalidExtension
	RawUnsupportedCriticalExtension
	RawNoIssuancePolicy
	RawBlockedAnchor
	RawCycle
)

var rawNames = []struct {
	bit  RawStatus
	name string
}{
	{RawTimeInvalid, "time-invalid"},
	{RawTimeNesting, "time-nesting"},
	{RawRevoked, "revoked"},
	{RawRevocationUnknown, "revocation-unknown"},
	{RawRevocationOffline, "revocation-offline"},
	{RawUntrustedAnchor, "untrusted-anchor"},
	{RawPartialChain, "partial-chain"},
	{RawBadSignature, "bad-signature"},
	{RawWeakDigest, "weak-digest"},
	{RawUsage, "usage"},
	{RawBasicConstraints, "basic-constraints"},
	{RawNameConstraints, "name-constraints"},
	{RawNamePermitted, "name-not-permitted"},
	{RawNameExcluded, "name-excluded"},
	{RawNameUnsupported, "name-unsupported"},
	{RawNameUndefined, "name-undefined"},
	{RawPolicyConstraints, "policy-constraints"},
	{RawInvalidExtension, "invalid-extension"},
	{RawUnsupportedCriticalExtension, "unsupported-critical-extension"},
	{RawNoIssuancePolicy, "no-issuance-policy"},
	{RawBlockedAnchor, "blocked-anchor"},
	{RawCycle, "cycle"},
}

// Has reports whether every bit of b is set in s.
func (s RawStatus) Has(b RawStatus) bool { return s&b == b }

// Any reports whether at least one bit of b is set in s.
func (s RawStatus) Any(b RawStatus) bool { return s&b != 0 }

func (s RawStatus) String() string {
	if s == 0 {
		return "ok"
	}
	var parts []string
	for _, n := range rawNames {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
