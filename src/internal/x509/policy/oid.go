// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"crypto/x509"
	"errors"
	"fmt"
)

// AnyPolicy is the special OID accepting any certificate policy.
const AnyPolicy = "2.5.29.32.0"

// AnyExtendedKeyUsage is the EKU OID allowing every usage.
const AnyExtendedKeyUsage = "2.5.29.37.0"

// ErrInvalidPolicyOID is returned for a requested OID that is not a valid
// dotted decimal object identifier.
var ErrInvalidPolicyOID = errors.New("policy: invalid object identifier")

// Canonicalize validates dotted OID strings and returns them in canonical
// form with duplicates removed, preserving the first occurrence order.
func Canonicalize(oids []string) ([]string, error) {
	if len(oids) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(oids))
	out := make([]string, 0, len(oids))
	for _, s := range oids {
		oid, err := x509.ParseOID(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPolicyOID, s, err)
		}
		c := oid.String()
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

var extKeyUsageOIDs = map[x509.ExtKeyUsage]string{
	x509.ExtKeyUsageAny:                            AnyExtendedKeyUsage,
	x509.ExtKeyUsageServerAuth:                     "1.3.6.1.5.5.7.3.1",
	x509.ExtKeyUsageClientAuth:                     "1.3.6.1.5.5.7.3.2",
	x509.ExtKeyUsageCodeSigning:                    "1.3.6.1.5.5.7.3.3",
	x509.ExtKeyUsageEmailProtection:                "1.3.6.1.5.5.7.3.4",
	x509.ExtKeyUsageIPSECEndSystem:                 "1.3.6.1.5.5.7.3.5",
	x509.ExtKeyUsageIPSECTunnel:                    "1.3.6.1.5.5.7.3.6",
	x509.ExtKeyUsageIPSECUser:                      "1.3.6.1.5.5.7.3.7",
	x509.ExtKeyUsageTimeStamping:                   "1.3.6.1.5.5.7.3.8",
	x509.ExtKeyUsageOCSPSigning:                    "1.3.6.1.5.5.7.3.9",
	x509.ExtKeyUsageMicrosoftServerGatedCrypto:     "1.3.6.1.4.1.311.10.3.3",
	x509.ExtKeyUsageNetscapeServerGatedCrypto:      "2.16.840.1.113730.4.1",
	x509.ExtKeyUsageMicrosoftCommercialCodeSigning: "1.3.6.1.4.1.311.2.1.22",
	x509.ExtKeyUsageMicrosoftKernelCodeSigning:     "1.3.6.1.4.1.311.61.1.1",
}

// extendedKeyUsages returns the EKU OIDs cert allows, or nil with
// unrestricted set to true when the certificate does not restrict usage.
func extendedKeyUsages(cert *x509.Certificate) (set map[string]bool, unrestricted bool) {
	if len(cert.ExtKeyUsage) == 0 && len(cert.UnknownExtKeyUsage) == 0 {
		return nil, true
	}
	set = make(map[string]bool, len(cert.ExtKeyUsage)+len(cert.UnknownExtKeyUsage))
	for _, u := range cert.ExtKeyUsage {
		if u == x509.ExtKeyUsageAny {
			return nil, true
		}
		if s, ok := extKeyUsageOIDs[u]; ok {
			set[s] = true
		}
	}
	for _, oid := range cert.UnknownExtKeyUsage {
		set[oid.String()] = true
	}
	return set, false
}
