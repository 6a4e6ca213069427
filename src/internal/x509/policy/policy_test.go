// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy_test

import (
	"crypto/x509"
	"encoding/asn1"
	"testing"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/policy"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/x509test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	policyA    = "1.3.6.1.4.1.55555.1.1"
	policyB    = "1.3.6.1.4.1.55555.1.2"
	policyC    = "1.3.6.1.4.1.55555.1.3"
	serverAuth = "1.3.6.1.5.5.7.3.1"
	clientAuth = "1.3.6.1.5.5.7.3.2"
	codeSign   = "1.3.6.1.5.5.7.3.3"
)

var (
	oidPolicyMappings    = asn1.ObjectIdentifier{2, 5, 29, 33}
	oidPolicyConstraints = asn1.ObjectIdentifier{2, 5, 29, 36}
	oidInhibitAnyPolicy  = asn1.ObjectIdentifier{2, 5, 29, 54}
)

func withMappings(t *testing.T, mappings ...policy.Mapping) x509test.Option {
	t.Helper()
	der, err := policy.MarshalMappings(mappings)
	require.NoError(t, err)
	return x509test.WithExtension(oidPolicyMappings, false, der)
}

func withConstraints(t *testing.T, requireExplicit, inhibitMapping int) x509test.Option {
	t.Helper()
	der, err := policy.MarshalConstraints(requireExplicit, inhibitMapping)
	require.NoError(t, err)
	return x509test.WithExtension(oidPolicyConstraints, false, der)
}

func withInhibitAny(t *testing.T, skip int) x509test.Option {
	t.Helper()
	der, err := asn1.Marshal(skip)
	require.NoError(t, err)
	return x509test.WithExtension(oidInhibitAnyPolicy, false, der)
}

func leafFirst(certs ...*x509test.Issued) []*x509.Certificate {
	out := make([]*x509.Certificate, len(certs))
	for i, c := range certs {
		out[i] = c.Cert
	}
	return out
}

func TestMatch_CertificatePolicies(t *testing.T) {
	tests := []struct {
		name      string
		build     func(t *testing.T) []*x509.Certificate
		requested []string
		want      bool
	}{
		{
			name: "AssertedAlongPath",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root, x509test.WithPolicies(policyA, policyB))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policyA))
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyA},
			want:      true,
		},
		{
			name: "NotAssertedByLeaf",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root, x509test.WithPolicies(policyA, policyB))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policyA))
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyB},
			want:      false,
		},
		{
			name: "AllRequestedMustMatch",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root, x509test.WithPolicies(policyA))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policyA))
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyA, policyC},
			want:      false,
		},
		{
			name: "IntermediateAnyPolicy",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root, x509test.WithPolicies(policy.AnyPolicy))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policyC))
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyC},
			want:      true,
		},
		{
			name: "AnyPolicyThroughout",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root, x509test.WithPolicies(policy.AnyPolicy))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policy.AnyPolicy))
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyA},
			want:      true,
		},
		{
			name: "LeafWithoutPolicies",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root, x509test.WithPolicies(policyA))
				leaf := x509test.NewLeaf(t, "leaf", inter)
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyA},
			want:      false,
		},
		{
			name: "MappedPolicyInAnchorDomain",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root,
					x509test.WithPolicies(policyA),
					withMappings(t, policy.Mapping{IssuerDomainPolicy: policyA, SubjectDomainPolicy: policyB}))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policyB))
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyA},
			want:      true,
		},
		{
			name: "SubjectDomainPolicyIsNotAnchorDomain",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root,
					x509test.WithPolicies(policyA),
					withMappings(t, policy.Mapping{IssuerDomainPolicy: policyA, SubjectDomainPolicy: policyB}))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policyB))
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyB},
			want:      false,
		},
		{
			name: "InhibitedMappingDeletesBranch",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				upper := x509test.NewIntermediate(t, "upper", root,
					x509test.WithPolicies(policyA),
					withConstraints(t, -1, 0))
				lower := x509test.NewIntermediate(t, "lower", upper,
					x509test.WithPolicies(policyA),
					withMappings(t, policy.Mapping{IssuerDomainPolicy: policyA, SubjectDomainPolicy: policyB}))
				leaf := x509test.NewLeaf(t, "leaf", lower, x509test.WithPolicies(policyB))
				return leafFirst(leaf, lower, upper, root)
			},
			requested: []string{policyA},
			want:      false,
		},
		{
			name: "InhibitAnyPolicyBlocksWildcard",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				upper := x509test.NewIntermediate(t, "upper", root,
					x509test.WithPolicies(policy.AnyPolicy),
					withInhibitAny(t, 0))
				lower := x509test.NewIntermediate(t, "lower", upper, x509test.WithPolicies(policy.AnyPolicy))
				leaf := x509test.NewLeaf(t, "leaf", lower, x509test.WithPolicies(policyA))
				return leafFirst(leaf, lower, upper, root)
			},
			requested: []string{policyA},
			want:      false,
		},
		{
			name: "MappingToAnyPolicyRejected",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root,
					x509test.WithPolicies(policyA),
					withMappings(t, policy.Mapping{IssuerDomainPolicy: policyA, SubjectDomainPolicy: policy.AnyPolicy}))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policyA))
				return leafFirst(leaf, inter, root)
			},
			requested: []string{policyA},
			want:      false,
		},
		{
			name: "PartialPathProcessesTerminal",
			build: func(t *testing.T) []*x509.Certificate {
				root := x509test.NewRoot(t, "root")
				inter := x509test.NewIntermediate(t, "inter", root, x509test.WithPolicies(policyB))
				leaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithPolicies(policyA))
				return leafFirst(leaf, inter)
			},
			requested: []string{policyA},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.build(t)
			got := policy.Match(path, policy.Requirements{Certificate: tt.requested})
			assert.Equal(t, tt.want, got, "check: %v", policy.Check(path, policy.Requirements{Certificate: tt.requested}))
		})
	}
}

func TestMatch_ApplicationPolicies(t *testing.T) {
	root := x509test.NewRoot(t, "root")
	inter := x509test.NewIntermediate(t, "inter", root)
	restricted := x509test.NewIntermediate(t, "restricted", root, x509test.WithExtKeyUsage(x509.ExtKeyUsageClientAuth))
	anyEKU := x509test.NewIntermediate(t, "any", root, x509test.WithExtKeyUsage(x509.ExtKeyUsageAny))

	serverLeaf := x509test.NewLeaf(t, "leaf", inter)
	restrictedLeaf := x509test.NewLeaf(t, "leaf", restricted)
	anyLeaf := x509test.NewLeaf(t, "leaf", anyEKU)
	customLeaf := x509test.NewLeaf(t, "leaf", inter, x509test.WithUnknownExtKeyUsage(asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 55555, 9}))

	tests := []struct {
		name      string
		path      []*x509.Certificate
		requested []string
		want      bool
	}{
		{"UnrestrictedIssuer", leafFirst(serverLeaf, inter, root), []string{serverAuth}, true},
		{"LeafLacksUsage", leafFirst(serverLeaf, inter, root), []string{codeSign}, false},
		{"IssuerRestrictsUsage", leafFirst(restrictedLeaf, restricted, root), []string{serverAuth}, false},
		{"IssuerAllowsAny", leafFirst(anyLeaf, anyEKU, root), []string{serverAuth}, true},
		{"CustomUsage", leafFirst(customLeaf, inter, root), []string{"1.3.6.1.4.1.55555.9"}, true},
		{"EveryRequestedUsage", leafFirst(serverLeaf, inter, root), []string{serverAuth, clientAuth}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Match(tt.path, policy.Requirements{Application: tt.requested}))
		})
	}
}

func TestCheck(t *testing.T) {
	chain := x509test.NewChain(t)

	t.Run("EmptyRequirementsAlwaysMatch", func(t *testing.T) {
		assert.NoError(t, policy.Check(chain.Path(), policy.Requirements{}))
		assert.True(t, policy.Match(nil, policy.Requirements{}))
	})

	t.Run("MismatchError", func(t *testing.T) {
		err := policy.Check(chain.Path(), policy.Requirements{Application: []string{codeSign}})
		var mm *policy.MismatchError
		require.ErrorAs(t, err, &mm)
		assert.Equal(t, "application", mm.Kind)
		assert.Equal(t, codeSign, mm.OID)
		assert.Equal(t, 0, mm.Index)
	})
}

func TestCanonicalize(t *testing.T) {
	got, err := policy.Canonicalize([]string{policyA, policyB, policyA})
	require.NoError(t, err)
	assert.Equal(t, []string{policyA, policyB}, got)

	got, err = policy.Canonicalize(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"", "abc", "1..2", "1.2."} {
		_, err := policy.Canonicalize([]string{bad})
		assert.ErrorIs(t, err, policy.ErrInvalidPolicyOID, "input %q", bad)
	}
}

func TestFromCertificate(t *testing.T) {
	root := x509test.NewRoot(t, "root")
	inter := x509test.NewIntermediate(t, "inter", root,
		x509test.WithPolicies(policyA),
		withMappings(t, policy.Mapping{IssuerDomainPolicy: policyA, SubjectDomainPolicy: policyB}),
		withConstraints(t, 2, -1),
		withInhibitAny(t, 1))

	c, err := policy.FromCertificate(inter.Cert)
	require.NoError(t, err)
	assert.True(t, c.HasPoliciesExtension)
	assert.Equal(t, []string{policyA}, c.Policies)
	assert.Equal(t, []policy.Mapping{{IssuerDomainPolicy: policyA, SubjectDomainPolicy: policyB}}, c.Mappings)
	assert.Equal(t, 2, c.RequireExplicitPolicy)
	assert.Equal(t, -1, c.InhibitPolicyMapping)
	assert.Equal(t, 1, c.InhibitAnyPolicy)

	plain, err := policy.FromCertificate(root.Cert)
	require.NoError(t, err)
	assert.False(t, plain.HasPoliciesExtension)
	assert.Equal(t, -1, plain.RequireExplicitPolicy)
}
