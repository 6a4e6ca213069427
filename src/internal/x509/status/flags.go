// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package status

import (
	"math/bits"
	"strconv"
	"strings"
)

// Flags is a bitmask of named conditions found on one certificate.
// The zero value means no defects were found.
type Flags uint32

const (
	NoError                          Flags = 0
	NotTimeValid                     Flags = 0x00000001
	NotTimeNested                    Flags = 0x00000002
	Revoked                          Flags = 0x00000004
	NotSignatureValid                Flags = 0x00000008
	NotValidForUsage                 Flags = 0x00000010
	UntrustedRoot                    Flags = 0x00000020
	RevocationStatusUnknown          Flags = 0x00000040
	Cyclic                           Flags = 0x00000080
	InvalidExtension                 Flags = 0x00000100
	InvalidPolicyConstraints         Flags = 0x00000200
	InvalidBasicConstraints          Flags = 0x00000400
	InvalidNameConstraints           Flags = 0x00000800
	HasNotSupportedNameConstraint    Flags = 0x00001000
	HasNotDefinedNameConstraint      Flags = 0x00002000
	HasNotPermittedNameConstraint    Flags = 0x00004000
	HasExcludedNameConstraint        Flags = 0x00008000
	PartialChain                     Flags = 0x00010000
	CtlNotTimeValid                  Flags = 0x00020000
	CtlNotSignatureValid             Flags = 0x00040000
	CtlNotValidForUsage              Flags = 0x00080000
	HasWeakSignature                 Flags = 0x00100000
	OfflineRevocation                Flags = 0x01000000
	NoIssuanceChainPolicy            Flags = 0x02000000
	ExplicitDistrust                 Flags = 0x04000000
	HasNotSupportedCriticalExtension Flags = 0x08000000
)

// RevocationFlags are the flags describing revocation results.
const RevocationFlags = Revoked | RevocationStatusUnknown | OfflineRevocation

var flagNames = map[Flags]string{
	NotTimeValid:                     "NotTimeValid",
	NotTimeNested:                    "NotTimeNested",
	Revoked:                          "Revoked",
	NotSignatureValid:                "NotSignatureValid",
	NotValidForUsage:                 "NotValidForUsage",
	UntrustedRoot:                    "UntrustedRoot",
	RevocationStatusUnknown:          "RevocationStatusUnknown",
	Cyclic:                           "Cyclic",
	InvalidExtension:                 "InvalidExtension",
	InvalidPolicyConstraints:         "InvalidPolicyConstraints",
	InvalidBasicConstraints:          "InvalidBasicConstraints",
	InvalidNameConstraints:           "InvalidNameConstraints",
	HasNotSupportedNameConstraint:    "HasNotSupportedNameConstraint",
	HasNotDefinedNameConstraint:      "HasNotDefinedNameConstraint",
	HasNotPermittedNameConstraint:    "HasNotPermittedNameConstraint",
	HasExcludedNameConstraint:        "HasExcludedNameConstraint",
	PartialChain:                     "PartialChain",
	CtlNotTimeValid:                  "CtlNotTimeValid",
	CtlNotSignatureValid:             "CtlNotSignatureValid",
	CtlNotValidForUsage:              "CtlNotValidForUsage",
	HasWeakSignature:                 "HasWeakSignature",
	OfflineRevocation:                "OfflineRevocation",
	NoIssuanceChainPolicy:            "NoIssuanceChainPolicy",
	ExplicitDistrust:                 "ExplicitDistrust",
	HasNotSupportedCriticalExtension: "HasNotSupportedCriticalExtension",
}

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Any reports whether at least one bit of f2 is set in f.
func (f Flags) Any(f2 Flags) bool { return f&f2 != 0 }

// Split returns the individual flags set in f, lowest bit first.
func (f Flags) Split() []Flags {
	out := make([]Flags, 0, bits.OnesCount32(uint32(f)))
	for rest := uint32(f); rest != 0; rest &= rest - 1 {
		out = append(out, Flags(rest&-rest))
	}
	return out
}

// String joins the flag names with "|". Unnamed bits are printed in hex.
func (f Flags) String() string {
	if f == NoError {
		return "NoError"
	}
	parts := make([]string, 0, bits.OnesCount32(uint32(f)))
	for _, one := range f.Split() {
		if name, ok := flagNames[one]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, "0x"+strconv.FormatUint(uint64(one), 16))
		}
	}
	return strings.Join(parts, "|")
}

// MarshalText encodes f in its String form.
func (f Flags) MarshalText() ([]byte, error) { return []byte(f.String()), nil }
