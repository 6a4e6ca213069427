// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gonative

import (
	"crypto/x509"
	"errors"
	"sync/atomic"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	x509certs "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/fetch"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// Name is the registry name of this backend.
const Name = "go"

// Native status codes reported alongside a Failure outcome.
const (
	StatusOK backend.NativeStatus = iota
	StatusInvalidInput
	StatusForeignHandle
	StatusReleasedHandle
	StatusNoSystemRoots
	StatusCanceled
)

var (
	errNilCertificate = errors.New("gonative: nil certificate")
	errDoubleRelease  = errors.New("gonative: handle released twice")
)

func init() {
	backend.Register(Name, func(opts backend.Options) (backend.Backend, error) {
		return New(opts)
	})
}

// Option adjusts a Backend beyond what [backend.Options] carries.
type Option func(*Backend)

// WithCRLCache makes revocation checks read and fill cache instead of
// [revocation.Default].
func WithCRLCache(cache *revocation.CRLCache) Option {
	return func(b *Backend) { b.crlCache = cache }
}

// WithSystemRoots replaces the loader of the system trust store.
func WithSystemRoots(load func() (*x509.CertPool, error)) Option {
	return func(b *Backend) { b.systemRoots = load }
}

// Backend evaluates chains with crypto/x509.
//
// A Backend is safe for concurrent use. Each evaluation context it opens is
// independent; the only shared state is the CRL cache, which has its own
// lock, and the live handle counter.
type Backend struct {
	log         logger.Logger
	http        *fetch.HTTPConfig
	decoder     *x509certs.Decoder
	checker     *revocation.Checker
	crlCache    *revocation.CRLCache
	distrusted  map[string]struct{}
	systemRoots func() (*x509.CertPool, error)
	live        atomic.Int64
}

// New creates a backend from opts.
func New(opts backend.Options, extra ...Option) (*Backend, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	b := &Backend{
		log:         log,
		decoder:     x509certs.New(),
		distrusted:  make(map[string]struct{}, len(opts.DistrustedSHA256)),
		systemRoots: x509.SystemCertPool,
		crlCache:    revocation.Default,
	}
	if opts.HTTPClient != nil {
		b.http = fetch.WithClient(opts.HTTPClient, opts.HTTPClient.Timeout)
	} else {
		b.http = fetch.NewHTTPConfig("")
	}
	for _, fp := range opts.DistrustedSHA256 {
		fp = x509certs.NormalizeFingerprint(fp)
		if len(fp) != 64 {
			return nil, errors.New("gonative: distrusted fingerprint is not a SHA-256 hex digest")
		}
		b.distrusted[fp] = struct{}{}
	}
	for _, opt := range extra {
		opt(b)
	}
	b.checker = revocation.NewChecker(b.http, b.crlCache, log)
	return b, nil
}

// Name implements [backend.Backend].
func (b *Backend) Name() string { return Name }

// LiveHandles returns the number of certificate handles and contexts that
// were created by b and not yet released.
func (b *Backend) LiveHandles() int64 { return b.live.Load() }

type certHandle struct {
	owner    *Backend
	cert     *x509.Certificate
	released atomic.Bool
}

func (h *certHandle) Certificate() *x509.Certificate { return h.cert }

func (h *certHandle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return errDoubleRelease
	}
	h.owner.live.Add(-1)
	return nil
}

// ImportCertificate implements [backend.Backend].
func (b *Backend) ImportCertificate(cert *x509.Certificate) (backend.CertHandle, error) {
	if cert == nil {
		return nil, errNilCertificate
	}
	b.live.Add(1)
	return &certHandle{owner: b, cert: cert}, nil
}

// OpenContext implements [backend.Backend]. Handles must have been imported
// by b and must still be live.
func (b *Backend) OpenContext(in backend.Input) (backend.Context, backend.Outcome, backend.NativeStatus) {
	leaf, code := b.unwrap(in.Leaf)
	if code != StatusOK {
		return nil, backend.Failure, code
	}
	available, code := b.unwrapAll(in.Available)
	if code != StatusOK {
		return nil, backend.Failure, code
	}
	anchors, code := b.unwrapAll(in.Anchors)
	if code != StatusOK {
		return nil, backend.Failure, code
	}

	c := &evalContext{
		owner:     b,
		leaf:      leaf,
		available: available,
		anchors:   anchors,
		trustMode: in.TrustMode,
		revMode:   in.RevocationMode,
		at:        in.Time,
		timeout:   in.URLTimeout,
	}
	if c.at.IsZero() {
		c.at = timeNow().UTC()
	}
	b.live.Add(1)
	return c, backend.Success, StatusOK
}

func (b *Backend) unwrap(h backend.CertHandle) (*x509.Certificate, backend.NativeStatus) {
	if h == nil {
		return nil, StatusInvalidInput
	}
	ch, ok := h.(*certHandle)
	if !ok || ch.owner != b {
		return nil, StatusForeignHandle
	}
	if ch.released.Load() {
		return nil, StatusReleasedHandle
	}
	return ch.cert, StatusOK
}

func (b *Backend) unwrapAll(hs []backend.CertHandle) ([]*x509.Certificate, backend.NativeStatus) {
	out := make([]*x509.Certificate, 0, len(hs))
	for _, h := range hs {
		cert, code := b.unwrap(h)
		if code != StatusOK {
			return nil, code
		}
		out = append(out, cert)
	}
	return out, StatusOK
}
