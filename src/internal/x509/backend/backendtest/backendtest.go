// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package backendtest provides a scripted trust backend for tests.
//
// The backend reports whatever path and raw status it is given, in the
// requested order, and can be told to fail, return out-of-contract
// outcomes, panic or fail releases at chosen points. It records every
// release so tests can check ownership and ordering.
package backendtest

import (
	"context"
	"crypto/x509"
	"errors"
	"slices"
	"sync"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
)

// Name is the name reported by [Backend.Name].
const Name = "scripted"

// Stage names a backend call where a fault can be injected.
type Stage string

const (
	StageImport   Stage = "import"
	StageOpen     Stage = "open"
	StageEvaluate Stage = "evaluate"
	StageStatus   Stage = "status"
)

// Element is one scripted path element.
type Element struct {
	Cert *x509.Certificate
	Raw  backend.RawStatus
}

// Result is a scripted outcome and native status.
type Result struct {
	Outcome backend.Outcome
	Code    backend.NativeStatus
}

// Backend is a scripted [backend.Backend]. Configure the exported fields
// before use; they must not change while an evaluation runs.
type Backend struct {
	// Path is reported leaf first; Order only changes the indexing.
	Path  []Element
	Order backend.Order

	// Open and Evaluate override the default Success outcome.
	Open     *Result
	Evaluate *Result
	// ContextOnOpenFailure makes OpenContext return a live context together
	// with a failing Open result.
	ContextOnOpenFailure bool

	// PanicAt makes the named stage panic.
	PanicAt Stage
	// ImportErr fails every ImportCertificate call.
	ImportErr error
	// ReleaseErr is returned by the release of the context.
	ReleaseErr error

	mu       sync.Mutex
	live     int
	releases []string
	input    backend.Input
	params   backend.EvalParams
	imported int
}

func (b *Backend) Name() string { return Name }

// LiveHandles returns the number of handles not yet released.
func (b *Backend) LiveHandles() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

// Releases lists released handles in release order. Certificates appear as
// "cert:<common name>", contexts as "context".
func (b *Backend) Releases() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.releases)
}

// Imported returns the number of ImportCertificate calls that succeeded.
func (b *Backend) Imported() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.imported
}

// LastInput returns the input of the most recent OpenContext call.
func (b *Backend) LastInput() backend.Input {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.input
}

// LastParams returns the parameters of the most recent Evaluate call.
func (b *Backend) LastParams() backend.EvalParams {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.params
}

func (b *Backend) release(name string, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.live--
	b.releases = append(b.releases, name)
	return err
}

type certHandle struct {
	owner *Backend
	cert  *x509.Certificate
}

func (h *certHandle) Certificate() *x509.Certificate { return h.cert }

func (h *certHandle) Release() error {
	return h.owner.release("cert:"+h.cert.Subject.CommonName, nil)
}

func (b *Backend) ImportCertificate(cert *x509.Certificate) (backend.CertHandle, error) {
	if b.PanicAt == StageImport {
		panic("backendtest: import panic")
	}
	if b.ImportErr != nil {
		return nil, b.ImportErr
	}
	if cert == nil {
		return nil, errors.New("backendtest: nil certificate")
	}
	b.mu.Lock()
	b.live++
	b.imported++
	b.mu.Unlock()
	return &certHandle{owner: b, cert: cert}, nil
}

func (b *Backend) OpenContext(in backend.Input) (backend.Context, backend.Outcome, backend.NativeStatus) {
	b.mu.Lock()
	b.input = in
	b.mu.Unlock()

	if b.PanicAt == StageOpen {
		panic("backendtest: open panic")
	}
	res := Result{Outcome: backend.Success}
	if b.Open != nil {
		res = *b.Open
	}
	if res.Outcome != backend.Success && !b.ContextOnOpenFailure {
		return nil, res.Outcome, res.Code
	}

	b.mu.Lock()
	b.live++
	b.mu.Unlock()
	return &scriptedContext{owner: b}, res.Outcome, res.Code
}

type scriptedContext struct {
	owner     *Backend
	evaluated bool
}

func (c *scriptedContext) Release() error {
	return c.owner.release("context", c.owner.ReleaseErr)
}

func (c *scriptedContext) Evaluate(_ context.Context, p backend.EvalParams) (backend.Outcome, backend.NativeStatus) {
	c.owner.mu.Lock()
	c.owner.params = p
	c.owner.mu.Unlock()

	if c.owner.PanicAt == StageEvaluate {
		panic("backendtest: evaluate panic")
	}
	res := Result{Outcome: backend.Success}
	if c.owner.Evaluate != nil {
		res = *c.owner.Evaluate
	}
	c.evaluated = res.Outcome == backend.Success
	return res.Outcome, res.Code
}

func (c *scriptedContext) ElementCount() int {
	if !c.evaluated {
		return 0
	}
	return len(c.owner.Path)
}

func (c *scriptedContext) index(i int) int {
	if c.owner.Order == backend.AnchorFirst {
		return len(c.owner.Path) - 1 - i
	}
	return i
}

func (c *scriptedContext) ElementStatus(i int) backend.RawStatus {
	if c.owner.PanicAt == StageStatus {
		panic("backendtest: status panic")
	}
	return c.owner.Path[c.index(i)].Raw
}

func (c *scriptedContext) ElementCertificate(i int) *x509.Certificate {
	return c.owner.Path[c.index(i)].Cert
}

func (c *scriptedContext) Order() backend.Order { return c.owner.Order }
