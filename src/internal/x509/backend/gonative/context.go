// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gonative

import (
	"context"
	"crypto/x509"
	"errors"
	"sync/atomic"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
)

var timeNow = time.Now

type element struct {
	cert *x509.Certificate
	raw  backend.RawStatus
}

// evalContext is one evaluation run. It is not safe for concurrent use.
type evalContext struct {
	owner     *Backend
	leaf      *x509.Certificate
	available []*x509.Certificate
	anchors   []*x509.Certificate
	trustMode backend.TrustMode
	revMode   backend.RevocationMode
	at        time.Time
	timeout   time.Duration

	elements []element
	released atomic.Bool
}

func (c *evalContext) Release() error {
	if !c.released.CompareAndSwap(false, true) {
		return errDoubleRelease
	}
	c.elements = nil
	c.owner.live.Add(-1)
	return nil
}

func (c *evalContext) Order() backend.Order { return backend.LeafFirst }

func (c *evalContext) ElementCount() int { return len(c.elements) }

func (c *evalContext) ElementStatus(i int) backend.RawStatus {
	if i < 0 || i >= len(c.elements) {
		return 0
	}
	return c.elements[i].raw
}

func (c *evalContext) ElementCertificate(i int) *x509.Certificate {
	if i < 0 || i >= len(c.elements) {
		return nil
	}
	return c.elements[i].cert
}

// Evaluate builds the path and records the raw status of every element.
//
// Defects of individual certificates are reported through ElementStatus and
// still yield Success. Failure is reserved for conditions that prevent an
// evaluation: a released context, an unavailable system store or a context
// canceled before the path was built.
func (c *evalContext) Evaluate(ctx context.Context, p backend.EvalParams) (backend.Outcome, backend.NativeStatus) {
	if c.released.Load() {
		return backend.Failure, StatusReleasedHandle
	}
	if err := ctx.Err(); err != nil {
		return backend.Failure, StatusCanceled
	}

	var system *x509.CertPool
	if c.trustMode == backend.SystemTrust {
		pool, err := c.owner.systemRoots()
		if err != nil || pool == nil {
			c.owner.log.Warnf("system trust store unavailable: %v", err)
			return backend.Failure, StatusNoSystemRoots
		}
		system = pool
	}

	path, cycle := c.buildPath(ctx, p.AllowNetwork)
	if errors.Is(ctx.Err(), context.Canceled) {
		return backend.Failure, StatusCanceled
	}

	trusted := false
	if system != nil {
		var tail []*x509.Certificate
		tail, trusted = completeFromSystem(system, path[len(path)-1])
		path = append(path, tail...)
	} else {
		trusted = c.isAnchor(path[len(path)-1])
	}

	c.elements = make([]element, len(path))
	for i, cert := range path {
		c.elements[i] = element{cert: cert}
	}
	c.check(ctx, p.AllowNetwork, trusted, cycle)
	return backend.Success, StatusOK
}

// completeFromSystem extends a path whose terminal is terminal using pool.
// It reports the certificates to append (possibly none) and whether the
// result ends at a certificate the pool trusts.
func completeFromSystem(pool *x509.CertPool, terminal *x509.Certificate) ([]*x509.Certificate, bool) {
	chains, err := terminal.Verify(x509.VerifyOptions{
		Roots:       pool,
		CurrentTime: midpoint(terminal),
		KeyUsages:   []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil || len(chains) == 0 || len(chains[0]) == 0 {
		return nil, false
	}
	return chains[0][1:], true
}

// midpoint picks an instant inside the validity window of cert, so trust
// store lookups are not confused with expiry.
func midpoint(cert *x509.Certificate) time.Time {
	return cert.NotBefore.Add(cert.NotAfter.Sub(cert.NotBefore) / 2)
}
