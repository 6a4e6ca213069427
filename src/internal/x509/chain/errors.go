// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/policy"
)

var (
	// ErrBackend matches every *BackendError.
	ErrBackend = errors.New("x509chain: trust backend failure")

	// ErrInvariantViolation matches every *InvariantViolationError.
	ErrInvariantViolation = errors.New("x509chain: invariant violation")

	// ErrUnsupportedPlatformFeature is returned for operations the backend
	// cannot give a defined meaning to.
	ErrUnsupportedPlatformFeature = errors.New("x509chain: unsupported platform feature")

	// ErrNilCertificate is returned when no leaf certificate is given.
	ErrNilCertificate = errors.New("x509chain: nil certificate")

	// ErrInvalidPolicyOID is returned for malformed policy OIDs in a TrustConfig.
	ErrInvalidPolicyOID = policy.ErrInvalidPolicyOID
)

// BackendError reports a non-success result from the trust backend.
type BackendError struct {
	Backend string
	// Op is "import", "open" or "evaluate".
	Op   string
	Code backend.NativeStatus
	Err  error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("x509chain: backend %q failed to %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("x509chain: backend %q failed to %s (native status %d)", e.Backend, e.Op, e.Code)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// InvariantViolationError reports a broken internal postcondition, such as
// an outcome outside the backend contract or a panic raised by the backend.
// It signals a programming defect; the run is aborted.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return "x509chain: invariant violation: " + e.Detail
}

func (e *InvariantViolationError) Is(target error) bool { return target == ErrInvariantViolation }
