// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gonative

import (
	"bytes"
	"context"
	"crypto/x509"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
)

// maxPathLength bounds path discovery, including AIA retrieval.
const maxPathLength = 16

// buildPath walks from the leaf towards an anchor, one issuer at a time.
//
// The walk stops at a self-issued certificate, when no issuer can be found
// or fetched, or when the next issuer is already on the path. The last case
// is reported as a cycle.
func (c *evalContext) buildPath(ctx context.Context, allowNetwork bool) (path []*x509.Certificate, cycle bool) {
	path = []*x509.Certificate{c.leaf}
	seen := map[string]struct{}{string(c.leaf.Raw): {}}

	for len(path) < maxPathLength {
		cur := path[len(path)-1]
		if status.SelfIssued(cur) {
			break
		}

		candidates := c.issuerCandidates(cur)
		if len(candidates) == 0 && allowNetwork {
			c.available = append(c.available, c.fetchIssuers(ctx, cur)...)
			candidates = c.issuerCandidates(cur)
		}
		if len(candidates) == 0 {
			break
		}

		next := c.pickIssuer(cur, candidates)
		if _, dup := seen[string(next.Raw)]; dup {
			cycle = true
			break
		}
		seen[string(next.Raw)] = struct{}{}
		path = append(path, next)
	}
	return path, cycle
}

// issuerCandidates returns anchors and available certificates whose subject
// matches the issuer of cert, anchors first. Key identifiers, when both are
// present, must agree.
func (c *evalContext) issuerCandidates(cert *x509.Certificate) []*x509.Certificate {
	var out []*x509.Certificate
	add := func(list []*x509.Certificate) {
		for _, cand := range list {
			if cand.Equal(cert) || !bytes.Equal(cand.RawSubject, cert.RawIssuer) {
				continue
			}
			if len(cert.AuthorityKeyId) > 0 && len(cand.SubjectKeyId) > 0 &&
				!bytes.Equal(cert.AuthorityKeyId, cand.SubjectKeyId) {
				continue
			}
			if containsCert(out, cand) {
				continue
			}
			out = append(out, cand)
		}
	}
	add(c.anchors)
	add(c.available)
	return out
}

// pickIssuer ranks candidates: a verifying signature outweighs being an
// anchor, which outweighs being valid at the evaluation time. Ties keep
// the earliest candidate.
func (c *evalContext) pickIssuer(cert *x509.Certificate, candidates []*x509.Certificate) *x509.Certificate {
	best, bestScore := candidates[0], -1
	for _, cand := range candidates {
		score := 0
		if verifySignature(cert, cand) == nil {
			score += 4
		}
		if c.isAnchor(cand) {
			score += 2
		}
		if timeValid(cand, c.at) {
			score++
		}
		if score > bestScore {
			best, bestScore = cand, score
		}
	}
	return best
}

func (c *evalContext) isAnchor(cert *x509.Certificate) bool {
	return containsCert(c.anchors, cert)
}

// fetchIssuers downloads the issuers named by the AIA caIssuers URLs of
// cert. Failures are logged and skipped; a response may carry several
// certificates, as PKCS#7 bundles often do.
func (c *evalContext) fetchIssuers(ctx context.Context, cert *x509.Certificate) []*x509.Certificate {
	var out []*x509.Certificate
	for _, url := range cert.IssuingCertificateURL {
		fctx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		data, err := c.owner.http.Get(fctx, url)
		if err != nil {
			c.owner.log.Warnf("issuer fetch for %s: %v", cert.Subject, err)
			continue
		}
		certs, err := c.owner.decoder.DecodeAll(data)
		if err != nil {
			c.owner.log.Warnf("issuer fetch for %s: %s: %v", cert.Subject, url, err)
			continue
		}
		out = append(out, certs...)
	}
	return out
}

func containsCert(list []*x509.Certificate, cert *x509.Certificate) bool {
	for _, c := range list {
		if c.Equal(cert) {
			return true
		}
	}
	return false
}
