// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

// Element is one certificate of a result with its status.
type Element struct {
	Certificate *x509.Certificate
	Status      status.Flags
	// Entries expand Status into one message per flag.
	Entries []status.Entry
}

// Result is a fully annotated chain, leaf first.
type Result struct {
	Elements []Element
	// Status is the OR of every element status.
	Status status.Flags
	// Entries hold one entry per distinct flag of Status, lowest bit first.
	Entries []status.Entry

	Backend          string
	VerificationTime time.Time
}

// Trusted reports whether no element carries any flag.
func (r *Result) Trusted() bool { return r.Status == status.NoError }

// Certificates returns the path, leaf first.
func (r *Result) Certificates() []*x509.Certificate {
	out := make([]*x509.Certificate, len(r.Elements))
	for i, e := range r.Elements {
		out[i] = e.Certificate
	}
	return out
}

// role names the position of element index in the path.
func (r *Result) role(index int) string {
	total := len(r.Elements)
	switch {
	case total == 1 && status.SelfIssued(r.Elements[0].Certificate):
		return "Self-Signed Certificate"
	case index == 0:
		return "End-Entity (Server/Leaf) Certificate"
	case index == total-1 && status.SelfIssued(r.Elements[index].Certificate):
		return "Root CA Certificate"
	case index == total-1:
		return "Last Available Issuer"
	default:
		return "Intermediate CA Certificate"
	}
}
