// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package status

import (
	"crypto/x509"
	"time"
)

// Element pairs a path certificate with its flags while a run is in progress.
type Element struct {
	Certificate *x509.Certificate
	Flags       Flags
}

// Entry is one distinct flag together with a readable message.
type Entry struct {
	Flag    Flags  `json:"flag"`
	Message string `json:"message"`
}

var messages = map[Flags]string{
	NotTimeNested:                    "the certificate validity period is not nested within its issuer's",
	Revoked:                          "the certificate has been revoked",
	NotSignatureValid:                "the certificate signature is not valid",
	NotValidForUsage:                 "the certificate is not valid for the requested usage",
	UntrustedRoot:                    "the chain terminates in a root certificate that is not trusted",
	RevocationStatusUnknown:          "the revocation status of the certificate could not be determined",
	Cyclic:                           "the certificate chain contains a cycle",
	InvalidExtension:                 "the certificate has an invalid extension",
	InvalidPolicyConstraints:         "the certificate has invalid policy constraints",
	InvalidBasicConstraints:          "the certificate violates its basic constraints",
	InvalidNameConstraints:           "the certificate has invalid name constraints",
	HasNotSupportedNameConstraint:    "the certificate has an unsupported name constraint",
	HasNotDefinedNameConstraint:      "the certificate has an undefined name constraint",
	HasNotPermittedNameConstraint:    "the certificate has a name that is not permitted by its issuer",
	HasExcludedNameConstraint:        "the certificate has a name that is excluded by its issuer",
	PartialChain:                     "the chain could not be built to a root certificate",
	CtlNotTimeValid:                  "the certificate trust list is not time valid",
	CtlNotSignatureValid:             "the certificate trust list signature is not valid",
	CtlNotValidForUsage:              "the certificate trust list is not valid for this usage",
	HasWeakSignature:                 "the certificate is signed with a weak algorithm",
	OfflineRevocation:                "the revocation server was offline",
	NoIssuanceChainPolicy:            "the chain has no issuance policy",
	ExplicitDistrust:                 "the certificate is explicitly distrusted",
	HasNotSupportedCriticalExtension: "the certificate has an unsupported critical extension",
}

const (
	msgExpired     = "the certificate has expired"
	msgNotYetValid = "the certificate is not yet valid"
)

// Message returns the readable message for a single flag. For NotTimeValid
// it compares the certificate's NotBefore with at to tell a not yet valid
// certificate from an expired one.
func Message(flag Flags, cert *x509.Certificate, at time.Time) string {
	if flag == NotTimeValid {
		if cert != nil && at.Before(cert.NotBefore) {
			return msgNotYetValid
		}
		return msgExpired
	}
	if m, ok := messages[flag]; ok {
		return m
	}
	return "unknown status " + flag.String()
}

// Entries expands the flags of one certificate into ordered entries.
func Entries(f Flags, cert *x509.Certificate, at time.Time) []Entry {
	if f == NoError {
		return nil
	}
	out := make([]Entry, 0, len(f.Split()))
	for _, one := range f.Split() {
		out = append(out, Entry{Flag: one, Message: Message(one, cert, at)})
	}
	return out
}

// Summarize ORs the flags of every element and returns one entry per
// distinct flag, lowest bit first. Each message is taken from the first
// element, leaf side, that carries the flag.
func Summarize(elems []Element, at time.Time) (Flags, []Entry) {
	var overall Flags
	for _, e := range elems {
		overall |= e.Flags
	}
	if overall == NoError {
		return overall, nil
	}

	entries := make([]Entry, 0, len(overall.Split()))
	for _, one := range overall.Split() {
		var cert *x509.Certificate
		for _, e := range elems {
			if e.Flags.Has(one) {
				cert = e.Certificate
				break
			}
		}
		entries = append(entries, Entry{Flag: one, Message: Message(one, cert, at)})
	}
	return overall, entries
}
