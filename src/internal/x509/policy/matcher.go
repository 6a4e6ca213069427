// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"bytes"
	"crypto/x509"
	"fmt"
)

// Requirements are the policies a caller requires of a path. OIDs are
// dotted decimal strings.
type Requirements struct {
	Application []string
	Certificate []string
}

// Empty reports whether nothing is required.
func (r Requirements) Empty() bool {
	return len(r.Application) == 0 && len(r.Certificate) == 0
}

// MismatchError describes why a path does not satisfy [Requirements].
type MismatchError struct {
	// Kind is "application" or "certificate".
	Kind string
	// OID is the unsatisfied requested policy, empty for path level failures.
	OID string
	// Index is the leaf-first position of the offending certificate, or -1.
	Index  int
	Reason string
}

func (e *MismatchError) Error() string {
	if e.OID != "" {
		return fmt.Sprintf("policy: %s policy %s not satisfied: %s", e.Kind, e.OID, e.Reason)
	}
	return fmt.Sprintf("policy: %s policies not satisfied: %s", e.Kind, e.Reason)
}

// Match reports whether path, ordered leaf first, satisfies req.
// An empty req always matches.
func Match(path []*x509.Certificate, req Requirements) bool {
	return Check(path, req) == nil
}

// Check is like [Match] but returns a *MismatchError describing the first
// unsatisfied requirement.
func Check(path []*x509.Certificate, req Requirements) error {
	if req.Empty() {
		return nil
	}
	if len(path) == 0 {
		return &MismatchError{Kind: "certificate", Index: -1, Reason: "empty path"}
	}
	if err := checkApplication(path, req.Application); err != nil {
		return err
	}
	if len(req.Certificate) > 0 {
		return checkCertificate(path, req.Certificate)
	}
	return nil
}

// checkApplication requires every requested OID to be allowed by the
// extended key usage of every certificate in the path.
func checkApplication(path []*x509.Certificate, requested []string) error {
	for _, oid := range requested {
		for i, cert := range path {
			allowed, unrestricted := extendedKeyUsages(cert)
			if !unrestricted && !allowed[oid] {
				return &MismatchError{
					Kind:   "application",
					OID:    oid,
					Index:  i,
					Reason: "not in extended key usage",
				}
			}
		}
	}
	return nil
}

func checkCertificate(path []*x509.Certificate, requested []string) error {
	satisfied, wildcard, err := authorityPolicies(path)
	if err != nil {
		return err
	}
	if wildcard {
		return nil
	}
	for _, oid := range requested {
		if oid == AnyPolicy && len(satisfied) > 0 {
			continue
		}
		if !satisfied[oid] {
			return &MismatchError{
				Kind:   "certificate",
				OID:    oid,
				Index:  -1,
				Reason: "no valid policy path",
			}
		}
	}
	return nil
}

// authorityPolicies runs RFC 5280 policy processing over path and returns
// the anchor domain policies valid for the leaf.
func authorityPolicies(path []*x509.Certificate) (map[string]bool, bool, error) {
	// Processing runs anchor to leaf. A self-issued terminal is the trust
	// anchor and only seeds the tree.
	proc := make([]*x509.Certificate, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		proc = append(proc, path[i])
	}
	if len(proc) > 1 && selfIssued(proc[0]) {
		proc = proc[1:]
	}

	n := len(proc)
	explicit, mapping, inhibitAny := n+1, n+1, n+1
	t := newTree()
	var leaf Constraints

	for i := 1; i <= n; i++ {
		cert := proc[i-1]
		index := n - i
		c, err := FromCertificate(cert)
		if err != nil {
			return nil, false, &MismatchError{Kind: "certificate", Index: index, Reason: err.Error()}
		}
		self := selfIssued(cert)

		if t != nil {
			if c.HasPoliciesExtension {
				t = t.update(c.Policies, i, inhibitAny > 0 || (i < n && self))
			} else {
				t = nil
			}
		}
		if explicit == 0 && t == nil {
			return nil, false, &MismatchError{Kind: "certificate", Index: index, Reason: "explicit policy required"}
		}

		if i == n {
			leaf = c
			break
		}

		for _, m := range c.Mappings {
			if m.IssuerDomainPolicy == AnyPolicy || m.SubjectDomainPolicy == AnyPolicy {
				return nil, false, &MismatchError{Kind: "certificate", Index: index, Reason: "policy mapping to or from anyPolicy"}
			}
		}
		if t != nil && len(c.Mappings) > 0 {
			t = t.applyMappings(c.Mappings, i, mapping > 0)
		}

		if !self {
			explicit = decrement(explicit)
			mapping = decrement(mapping)
			inhibitAny = decrement(inhibitAny)
		}
		if c.RequireExplicitPolicy >= 0 && c.RequireExplicitPolicy < explicit {
			explicit = c.RequireExplicitPolicy
		}
		if c.InhibitPolicyMapping >= 0 && c.InhibitPolicyMapping < mapping {
			mapping = c.InhibitPolicyMapping
		}
		if c.InhibitAnyPolicy >= 0 && c.InhibitAnyPolicy < inhibitAny {
			inhibitAny = c.InhibitAnyPolicy
		}
	}

	explicit = decrement(explicit)
	if leaf.RequireExplicitPolicy == 0 {
		explicit = 0
	}

	if t == nil {
		reason := "no valid policy tree"
		if explicit == 0 {
			reason = "explicit policy required"
		}
		return nil, false, &MismatchError{Kind: "certificate", Index: -1, Reason: reason}
	}

	satisfied, wildcard := t.authorityPolicies(n)
	return satisfied, wildcard, nil
}

func decrement(v int) int {
	if v > 0 {
		return v - 1
	}
	return v
}

func selfIssued(cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawIssuer, cert.RawSubject)
}
