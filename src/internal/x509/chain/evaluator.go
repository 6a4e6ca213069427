// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/metrics"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/handles"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/policy"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/status"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for diagnostics. Nil silences them.
func WithLogger(log logger.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// WithClock replaces time.Now for runs whose TrustConfig has no
// verification time.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// Evaluator runs chain evaluations against one trust backend.
//
// An Evaluator holds no per-run state: concurrent calls to Build each get
// their own handle registry and native context.
type Evaluator struct {
	backend backend.Backend
	log     logger.Logger
	now     func() time.Time
}

// NewEvaluator creates an evaluator for b.
func NewEvaluator(b backend.Backend, opts ...Option) *Evaluator {
	e := &Evaluator{backend: b, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.NewNopLogger()
	}
	return e
}

// Backend returns the name of the trust backend.
func (e *Evaluator) Backend() string {
	if e.backend == nil {
		return ""
	}
	return e.backend.Name()
}

// FromHandle would resume evaluation from a raw native context handle. No
// backend gives that a defined meaning, so it always fails with
// [ErrUnsupportedPlatformFeature].
func (e *Evaluator) FromHandle(h uintptr) (*Result, error) {
	return nil, fmt.Errorf("%w: evaluation from native handle %#x", ErrUnsupportedPlatformFeature, h)
}

// Build evaluates leaf under cfg.
//
// Certificate defects are reported as status flags inside the result.
// An error is returned only when the evaluation itself could not be
// completed, and then no partial result is returned:
//   - [ErrNilCertificate] or [ErrInvalidPolicyOID] for bad input, before
//     the backend is touched,
//   - a *[BackendError] when the backend fails to import, open or evaluate,
//   - an *[InvariantViolationError] when the backend breaks its contract
//     or panics.
//
// ctx is handed to the backend, which decides how cancellation affects a
// running evaluation.
func (e *Evaluator) Build(ctx context.Context, leaf *x509.Certificate, cfg TrustConfig) (*Result, error) {
	start := time.Now()
	res, err := e.run(ctx, leaf, cfg)
	e.record(res, err, time.Since(start))
	return res, err
}

func (e *Evaluator) run(ctx context.Context, leaf *x509.Certificate, cfg TrustConfig) (res *Result, err error) {
	if leaf == nil {
		return nil, ErrNilCertificate
	}
	if e.backend == nil {
		return nil, &InvariantViolationError{Detail: "no trust backend configured"}
	}
	req, err := requirements(cfg)
	if err != nil {
		return nil, err
	}
	at := cfg.VerificationTime
	if at.IsZero() {
		at = e.now()
	}
	at = at.UTC()

	reg := handles.New(e.log, handles.WithFailureHook(func(error) { metrics.RecordReleaseFailure() }))
	defer reg.ReleaseAll()
	defer func() {
		if r := recover(); r != nil {
			e.log.Warnf("trust backend %q panicked: %v", e.backend.Name(), r)
			res, err = nil, &InvariantViolationError{Detail: fmt.Sprintf("backend panic: %v", r)}
		}
	}()

	in, err := e.input(reg, leaf, cfg, at)
	if err != nil {
		return nil, err
	}

	nctx, outcome, code := e.backend.OpenContext(in)
	if nctx != nil {
		if _, err := handles.Acquire(reg, nctx); err != nil {
			return nil, &InvariantViolationError{Detail: err.Error()}
		}
	}
	if err := e.checkOutcome("open", outcome, code); err != nil {
		return nil, err
	}
	if nctx == nil {
		return nil, &InvariantViolationError{Detail: "backend opened no context"}
	}

	outcome, code = nctx.Evaluate(ctx, backend.EvalParams{AllowNetwork: cfg.AllowNetwork()})
	if err := e.checkOutcome("evaluate", outcome, code); err != nil {
		return nil, err
	}

	elems, err := collect(nctx, cfg.RevocationMode)
	if err != nil {
		return nil, err
	}

	if !req.Empty() {
		if err := policy.Check(certificates(elems), req); err != nil {
			e.log.Printf("policy mismatch for %s: %v", leaf.Subject, err)
			for i := range elems {
				elems[i].Flags |= status.NotValidForUsage
			}
		}
	}

	elems = revocation.Adjust(elems, cfg.RevocationScope)
	return finalize(elems, at, e.backend.Name()), nil
}

func requirements(cfg TrustConfig) (policy.Requirements, error) {
	app, err := policy.Canonicalize(cfg.ApplicationPolicy)
	if err != nil {
		return policy.Requirements{}, fmt.Errorf("x509chain: application policy: %w", err)
	}
	cert, err := policy.Canonicalize(cfg.CertificatePolicy)
	if err != nil {
		return policy.Requirements{}, fmt.Errorf("x509chain: certificate policy: %w", err)
	}
	return policy.Requirements{Application: app, Certificate: cert}, nil
}

// input imports the certificates of one run. Duplicates are imported once
// per role: the leaf may also be an anchor, but it is never repeated among
// the available certificates. Self-issued members of the custom trust store
// become anchors in CustomRootTrust mode; the other members are only
// available for path building.
func (e *Evaluator) input(reg *handles.Registry, leaf *x509.Certificate, cfg TrustConfig, at time.Time) (backend.Input, error) {
	in := backend.Input{
		TrustMode:      cfg.TrustMode,
		RevocationMode: cfg.RevocationMode,
		Time:           at,
		URLTimeout:     cfg.URLRetrievalTimeout,
	}

	var err error
	in.Leaf, err = e.importCert(reg, leaf)
	if err != nil {
		return in, err
	}

	add := func(dst *[]backend.CertHandle, seen map[string]struct{}, cert *x509.Certificate) error {
		if _, dup := seen[string(cert.Raw)]; dup {
			return nil
		}
		seen[string(cert.Raw)] = struct{}{}
		h, err := e.importCert(reg, cert)
		if err != nil {
			return err
		}
		*dst = append(*dst, h)
		return nil
	}

	anchors := make(map[string]struct{})
	available := map[string]struct{}{string(leaf.Raw): {}}
	for _, cert := range cfg.CustomTrustStore {
		if cert == nil || !status.SelfIssued(cert) || cfg.TrustMode != backend.CustomRootTrust {
			continue
		}
		if err := add(&in.Anchors, anchors, cert); err != nil {
			return in, err
		}
	}
	for _, cert := range cfg.ExtraStore {
		if cert == nil {
			continue
		}
		if err := add(&in.Available, available, cert); err != nil {
			return in, err
		}
	}
	for _, cert := range cfg.CustomTrustStore {
		if cert == nil || status.SelfIssued(cert) {
			continue
		}
		if err := add(&in.Available, available, cert); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (e *Evaluator) importCert(reg *handles.Registry, cert *x509.Certificate) (backend.CertHandle, error) {
	h, err := e.backend.ImportCertificate(cert)
	if err != nil {
		return nil, &BackendError{Backend: e.backend.Name(), Op: "import", Err: err}
	}
	if _, err := handles.Acquire(reg, h); err != nil {
		return nil, &InvariantViolationError{Detail: "import: " + err.Error()}
	}
	return h, nil
}

func (e *Evaluator) checkOutcome(op string, outcome backend.Outcome, code backend.NativeStatus) error {
	if !outcome.Valid() {
		return &InvariantViolationError{Detail: fmt.Sprintf("%s returned %s", op, outcome)}
	}
	if outcome == backend.Failure {
		return &BackendError{Backend: e.backend.Name(), Op: op, Code: code}
	}
	return nil
}

// collect reads the evaluated path leaf first and maps every raw status.
func collect(nctx backend.Context, mode revocation.Mode) ([]status.Element, error) {
	order := nctx.Order()
	if order != backend.LeafFirst && order != backend.AnchorFirst {
		return nil, &InvariantViolationError{Detail: fmt.Sprintf("unknown element order %d", order)}
	}
	n := nctx.ElementCount()
	if n <= 0 {
		return nil, &InvariantViolationError{Detail: "evaluation produced an empty path"}
	}

	elems := make([]status.Element, n)
	for i := range elems {
		idx := i
		if order == backend.AnchorFirst {
			idx = n - 1 - i
		}
		cert := nctx.ElementCertificate(idx)
		if cert == nil {
			return nil, &InvariantViolationError{Detail: fmt.Sprintf("element %d has no certificate", idx)}
		}
		elems[i] = status.Element{
			Certificate: cert,
			Flags:       status.Map(nctx.ElementStatus(idx), cert, mode),
		}
	}
	return elems, nil
}

func certificates(elems []status.Element) []*x509.Certificate {
	out := make([]*x509.Certificate, len(elems))
	for i, e := range elems {
		out[i] = e.Certificate
	}
	return out
}

func finalize(elems []status.Element, at time.Time, name string) *Result {
	res := &Result{
		Elements:         make([]Element, len(elems)),
		Backend:          name,
		VerificationTime: at,
	}
	for i, el := range elems {
		res.Elements[i] = Element{
			Certificate: el.Certificate,
			Status:      el.Flags,
			Entries:     status.Entries(el.Flags, el.Certificate, at),
		}
	}
	res.Status, res.Entries = status.Summarize(elems, at)
	return res
}

func (e *Evaluator) record(res *Result, err error, d time.Duration) {
	name := e.Backend()
	switch {
	case err != nil:
		stage := "input"
		var be *BackendError
		if errors.As(err, &be) {
			stage = be.Op
		} else if errors.Is(err, ErrInvariantViolation) {
			stage = "invariant"
		}
		metrics.RecordBackendError(name, stage)
		metrics.RecordVerification(name, metrics.ResultError, d.Seconds(), 0)
	case res.Trusted():
		metrics.RecordVerification(name, metrics.ResultTrusted, d.Seconds(), len(res.Elements))
	default:
		metrics.RecordVerification(name, metrics.ResultUntrusted, d.Seconds(), len(res.Elements))
		for _, entry := range res.Entries {
			metrics.RecordStatusFlag(entry.Flag.String())
		}
	}
}
