// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"strconv"
	"strings"
)

var (
	oidExtPolicyMappings    = asn1.ObjectIdentifier{2, 5, 29, 33}
	oidExtPolicyConstraints = asn1.ObjectIdentifier{2, 5, 29, 36}
	oidExtInhibitAnyPolicy  = asn1.ObjectIdentifier{2, 5, 29, 54}
)

// HandledExtensions lists the policy extensions this package interprets.
// Backends may treat them as handled when marked critical.
var HandledExtensions = []asn1.ObjectIdentifier{
	oidExtPolicyMappings,
	oidExtPolicyConstraints,
	oidExtInhibitAnyPolicy,
}

// Mapping maps an issuer domain policy to a subject domain policy.
type Mapping struct {
	IssuerDomainPolicy  string
	SubjectDomainPolicy string
}

// Constraints holds the policy related fields of one certificate. Skip
// counts are -1 when the corresponding field is absent.
type Constraints struct {
	Policies              []string
	HasPoliciesExtension  bool
	Mappings              []Mapping
	RequireExplicitPolicy int
	InhibitPolicyMapping  int
	InhibitAnyPolicy      int
}

type asn1PolicyMapping struct {
	IssuerDomainPolicy  asn1.ObjectIdentifier
	SubjectDomainPolicy asn1.ObjectIdentifier
}

type asn1PolicyConstraints struct {
	RequireExplicitPolicy int `asn1:"optional,tag:0,default:-1"`
	InhibitPolicyMapping  int `asn1:"optional,tag:1,default:-1"`
}

// FromCertificate extracts the policy fields of cert.
func FromCertificate(cert *x509.Certificate) (Constraints, error) {
	c := Constraints{
		RequireExplicitPolicy: -1,
		InhibitPolicyMapping:  -1,
		InhibitAnyPolicy:      -1,
	}

	switch {
	case len(cert.Policies) > 0:
		for _, oid := range cert.Policies {
			c.Policies = append(c.Policies, oid.String())
		}
	case len(cert.PolicyIdentifiers) > 0:
		for _, oid := range cert.PolicyIdentifiers {
			c.Policies = append(c.Policies, oid.String())
		}
	}
	c.HasPoliciesExtension = len(c.Policies) > 0

	for _, ext := range cert.Extensions {
		switch {
		case ext.Id.Equal(oidExtPolicyMappings):
			var raw []asn1PolicyMapping
			if err := unmarshalExact(ext.Value, &raw); err != nil {
				return c, fmt.Errorf("policy: malformed policy mappings: %w", err)
			}
			for _, m := range raw {
				c.Mappings = append(c.Mappings, Mapping{
					IssuerDomainPolicy:  m.IssuerDomainPolicy.String(),
					SubjectDomainPolicy: m.SubjectDomainPolicy.String(),
				})
			}
		case ext.Id.Equal(oidExtPolicyConstraints):
			var pc asn1PolicyConstraints
			if err := unmarshalExact(ext.Value, &pc); err != nil {
				return c, fmt.Errorf("policy: malformed policy constraints: %w", err)
			}
			if pc.RequireExplicitPolicy == -1 && pc.InhibitPolicyMapping == -1 {
				return c, fmt.Errorf("policy: empty policy constraints")
			}
			c.RequireExplicitPolicy = pc.RequireExplicitPolicy
			c.InhibitPolicyMapping = pc.InhibitPolicyMapping
		case ext.Id.Equal(oidExtInhibitAnyPolicy):
			var skip int
			if err := unmarshalExact(ext.Value, &skip); err != nil {
				return c, fmt.Errorf("policy: malformed inhibit any policy: %w", err)
			}
			if skip < 0 {
				return c, fmt.Errorf("policy: negative inhibit any policy %d", skip)
			}
			c.InhibitAnyPolicy = skip
		}
	}
	return c, nil
}

func unmarshalExact(der []byte, v any) error {
	rest, err := asn1.Unmarshal(der, v)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("trailing data")
	}
	return nil
}

// MarshalMappings encodes a policyMappings extension value.
func MarshalMappings(mappings []Mapping) ([]byte, error) {
	raw := make([]asn1PolicyMapping, 0, len(mappings))
	for _, m := range mappings {
		issuer, err := toASN1(m.IssuerDomainPolicy)
		if err != nil {
			return nil, err
		}
		subject, err := toASN1(m.SubjectDomainPolicy)
		if err != nil {
			return nil, err
		}
		raw = append(raw, asn1PolicyMapping{IssuerDomainPolicy: issuer, SubjectDomainPolicy: subject})
	}
	return asn1.Marshal(raw)
}

// MarshalConstraints encodes a policyConstraints extension value. Negative
// values omit the field.
func MarshalConstraints(requireExplicit, inhibitMapping int) ([]byte, error) {
	requireExplicit = max(requireExplicit, -1)
	inhibitMapping = max(inhibitMapping, -1)
	return asn1.Marshal(asn1PolicyConstraints{
		RequireExplicitPolicy: requireExplicit,
		InhibitPolicyMapping:  inhibitMapping,
	})
}

func toASN1(s string) (asn1.ObjectIdentifier, error) {
	if _, err := x509.ParseOID(s); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPolicyOID, s, err)
	}
	parts := strings.Split(s, ".")
	oid := make(asn1.ObjectIdentifier, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q does not fit an asn1 identifier", ErrInvalidPolicyOID, s)
		}
		oid[i] = n
	}
	return oid, nil
}
