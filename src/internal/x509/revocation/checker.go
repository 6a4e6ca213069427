// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revocation

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/fetch"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
	"golang.org/x/crypto/ocsp"
)

// Result is the revocation state of one certificate.
type Result int

const (
	Unknown Result = iota
	Good
	Revoked
)

func (r Result) String() string {
	switch r {
	case Good:
		return "Good"
	case Revoked:
		return "Revoked"
	default:
		return "Unknown"
	}
}

// Source names where a revocation answer came from.
const (
	SourceOCSP      = "ocsp"
	SourceCRL       = "crl"
	SourceCachedCRL = "crl-cache"
)

// Status is the outcome of one revocation check.
type Status struct {
	Result Result
	// Offline is set when revocation endpoints exist but could not be
	// consulted, because network access was disallowed or failed.
	Offline bool
	Source  string
	// RevokedAt is set for Revoked results.
	RevokedAt time.Time
	// Errs collects the per endpoint failures seen on the way.
	Errs []error
}

// Checker consults OCSP responders and CRL distribution points.
type Checker struct {
	HTTP  *fetch.HTTPConfig
	Cache *CRLCache
	Log   logger.Logger
}

// NewChecker creates a checker. Nil arguments select the defaults.
func NewChecker(httpConfig *fetch.HTTPConfig, cache *CRLCache, log logger.Logger) *Checker {
	if httpConfig == nil {
		httpConfig = fetch.NewHTTPConfig("")
	}
	if cache == nil {
		cache = Default
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Checker{HTTP: httpConfig, Cache: cache, Log: log}
}

// Check determines the revocation state of cert issued by issuer.
//
// Online mode with network access asks OCSP responders first and then CRL
// distribution points, using the cache before downloading. Offline mode and
// online mode without network access only use cached and operator supplied
// CRLs. NoCheck returns Unknown without doing anything.
func (c *Checker) Check(ctx context.Context, cert, issuer *x509.Certificate, mode Mode, allowNetwork bool) Status {
	var st Status
	if mode == NoCheck {
		return st
	}
	if issuer == nil {
		st.Errs = append(st.Errs, errors.New("revocation: issuer not available"))
		return st
	}

	online := mode == Online && allowNetwork
	hasEndpoints := len(cert.OCSPServer) > 0 || len(cert.CRLDistributionPoints) > 0
	networkFailed := false

	if online {
		for _, url := range cert.OCSPServer {
			res, at, err := c.checkOCSP(ctx, url, cert, issuer)
			if err != nil {
				st.Errs = append(st.Errs, err)
				networkFailed = true
				continue
			}
			if res != Unknown {
				return Status{Result: res, Source: SourceOCSP, RevokedAt: at, Errs: st.Errs}
			}
		}
	}

	for _, url := range cert.CRLDistributionPoints {
		if crl, ok := c.Cache.Get(url); ok {
			if res, at, ok := lookup(crl, cert, issuer); ok {
				return Status{Result: res, Source: SourceCachedCRL, RevokedAt: at, Errs: st.Errs}
			}
		}
		if !online {
			continue
		}
		crl, err := c.downloadCRL(ctx, url, issuer)
		if err != nil {
			st.Errs = append(st.Errs, err)
			networkFailed = true
			continue
		}
		c.Cache.Set(url, crl)
		if res, at, ok := lookup(crl, cert, issuer); ok {
			return Status{Result: res, Source: SourceCRL, RevokedAt: at, Errs: st.Errs}
		}
	}

	for _, crl := range c.Cache.ForIssuer(issuer) {
		if res, at, ok := lookup(crl, cert, issuer); ok {
			return Status{Result: res, Source: SourceCachedCRL, RevokedAt: at, Errs: st.Errs}
		}
	}

	st.Offline = hasEndpoints && (!online || networkFailed)
	for _, err := range st.Errs {
		c.Log.Warnf("revocation check for %s: %v", cert.Subject, err)
	}
	return st
}

func (c *Checker) checkOCSP(ctx context.Context, url string, cert, issuer *x509.Certificate) (Result, time.Time, error) {
	req, err := ocsp.CreateRequest(cert, issuer, nil)
	if err != nil {
		return Unknown, time.Time{}, fmt.Errorf("revocation: failed to create OCSP request: %w", err)
	}

	data, err := c.HTTP.Post(ctx, url, "application/ocsp-request", req)
	if err != nil {
		return Unknown, time.Time{}, err
	}

	resp, err := ocsp.ParseResponseForCert(data, cert, issuer)
	if err != nil {
		return Unknown, time.Time{}, fmt.Errorf("revocation: invalid OCSP response from %s: %w", url, err)
	}

	switch resp.Status {
	case ocsp.Good:
		return Good, time.Time{}, nil
	case ocsp.Revoked:
		return Revoked, resp.RevokedAt, nil
	default:
		return Unknown, time.Time{}, nil
	}
}

func (c *Checker) downloadCRL(ctx context.Context, url string, issuer *x509.Certificate) (*x509.RevocationList, error) {
	data, err := c.HTTP.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	crl, err := x509.ParseRevocationList(data)
	if err != nil {
		return nil, fmt.Errorf("revocation: invalid CRL from %s: %w", url, err)
	}
	if err := crl.CheckSignatureFrom(issuer); err != nil {
		return nil, fmt.Errorf("revocation: CRL from %s not signed by issuer: %w", url, err)
	}
	return crl, nil
}

// lookup answers from crl when it was issued and signed by issuer.
func lookup(crl *x509.RevocationList, cert, issuer *x509.Certificate) (Result, time.Time, bool) {
	if crl.CheckSignatureFrom(issuer) != nil {
		return Unknown, time.Time{}, false
	}
	for _, entry := range crl.RevokedCertificateEntries {
		if entry.SerialNumber != nil && entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
			return Revoked, entry.RevocationTime, true
		}
	}
	return Good, time.Time{}, true
}
