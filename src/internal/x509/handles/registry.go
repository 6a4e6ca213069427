// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package handles

import (
	"errors"
	"fmt"
	"sync"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

var (
	// ErrNilHandle is returned when a nil handle is passed to Acquire.
	ErrNilHandle = errors.New("handles: nil handle")

	// ErrReleased is returned when a handle is acquired after ReleaseAll ran.
	// The handle is released immediately so it cannot leak.
	ErrReleased = errors.New("handles: registry already released")
)

// Handle is a native resource owned by a verification run.
type Handle interface {
	// Release frees the native resource. It is called at most once by the registry.
	Release() error
}

// ReleaseFunc adapts an ordinary function to the Handle interface.
type ReleaseFunc func() error

// Release calls f.
func (f ReleaseFunc) Release() error { return f() }

// ReleaseError records a failed release together with the position of the
// handle in acquisition order.
type ReleaseError struct {
	Index int
	Err   error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("handles: release of handle %d failed: %v", e.Index, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }

// Registry records handles for later release.
//
// Registry is safe for concurrent use, although a verification run is
// expected to use it from a single goroutine.
type Registry struct {
	mu        sync.Mutex
	entries   []Handle
	released  bool
	failures  []error
	log       logger.Logger
	onFailure func(error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithFailureHook installs a callback invoked for every failed release.
func WithFailureHook(fn func(error)) Option {
	return func(r *Registry) { r.onFailure = fn }
}

// New creates an empty registry. A nil logger silences release diagnostics.
func New(log logger.Logger, opts ...Option) *Registry {
	r := &Registry{log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire records h in r and returns it for immediate use.
//
// If r has already been released, h is released on the spot and ErrReleased
// is returned together with the zero value.
func Acquire[T Handle](r *Registry, h T) (T, error) {
	var zero T
	if any(h) == nil {
		return zero, ErrNilHandle
	}
	if err := r.Track(h); err != nil {
		return zero, err
	}
	return h, nil
}

// Track records h for release. See Acquire for the typed variant.
func (r *Registry) Track(h Handle) error {
	if h == nil {
		return ErrNilHandle
	}

	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		if err := safeRelease(h); err != nil {
			r.record(&ReleaseError{Index: -1, Err: err})
		}
		return ErrReleased
	}
	r.entries = append(r.entries, h)
	r.mu.Unlock()
	return nil
}

// Len reports the number of handles still awaiting release.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ReleaseAll releases every recorded handle, most recently acquired first.
//
// It never panics and never stops early: a failing release is recorded and
// the remaining handles are still released. Calling ReleaseAll again is a no-op.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	entries := r.entries
	r.entries = nil
	r.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		if err := safeRelease(entries[i]); err != nil {
			r.record(&ReleaseError{Index: i, Err: err})
		}
	}
}

// Released reports whether ReleaseAll has run.
func (r *Registry) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Failures returns the release failures recorded so far.
func (r *Registry) Failures() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.failures...)
}

func (r *Registry) record(err error) {
	r.mu.Lock()
	r.failures = append(r.failures, err)
	r.mu.Unlock()

	if r.log != nil {
		r.log.Warnf("%v", err)
	}
	if r.onFailure != nil {
		r.onFailure(err)
	}
}

// safeRelease shields cleanup from a panicking release.
func safeRelease(h Handle) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during release: %v", p)
		}
	}()
	return h.Release()
}
