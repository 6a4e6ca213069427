// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package backend

import (
	"context"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/handles"
)

// Outcome is the result code of a backend call.
//
// Only [Failure] and [Success] are defined. Any other value breaks the backend
// contract and is treated by callers as an internal defect.
type Outcome int32

const (
	Failure Outcome = 0
	Success Outcome = 1
)

// Valid reports whether o is one of the defined outcomes.
func (o Outcome) Valid() bool { return o == Failure || o == Success }

func (o Outcome) String() string {
	switch o {
	case Failure:
		return "failure"
	case Success:
		return "success"
	default:
		return fmt.Sprintf("outcome(%d)", int32(o))
	}
}

// NativeStatus is a backend specific diagnostic code accompanying an [Outcome].
type NativeStatus int32

// Order is the order in which a context reports its path elements.
type Order int

const (
	// LeafFirst reports the end-entity certificate at index 0.
	LeafFirst Order = iota
	// AnchorFirst reports the trust anchor at index 0.
	AnchorFirst
)

// TrustMode selects where trust anchors come from.
type TrustMode int

const (
	// SystemTrust uses the platform trust store.
	SystemTrust TrustMode = iota
	// CustomRootTrust uses only the anchors supplied in [Input.Anchors].
	CustomRootTrust
)

func (m TrustMode) String() string {
	switch m {
	case SystemTrust:
		return "system"
	case CustomRootTrust:
		return "custom"
	default:
		return fmt.Sprintf("trustmode(%d)", int(m))
	}
}

// ParseTrustMode parses the textual form produced by [TrustMode.String].
func ParseTrustMode(s string) (TrustMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "system":
		return SystemTrust, nil
	case "custom", "customroot", "custom-root":
		return CustomRootTrust, nil
	default:
		return SystemTrust, fmt.Errorf("backend: unknown trust mode %q", s)
	}
}

// RevocationMode tells the backend whether and how to check revocation.
type RevocationMode int

const (
	RevocationNoCheck RevocationMode = iota
	RevocationOnline
	RevocationOffline
)

func (m RevocationMode) String() string {
	switch m {
	case RevocationNoCheck:
		return "nocheck"
	case RevocationOnline:
		return "online"
	case RevocationOffline:
		return "offline"
	default:
		return fmt.Sprintf("revocationmode(%d)", int(m))
	}
}

// CertHandle is a certificate imported into a backend.
type CertHandle interface {
	handles.Handle
	// Certificate returns the certificate the handle was imported from.
	Certificate() *x509.Certificate
}

// Input is everything a backend needs to open an evaluation context.
type Input struct {
	Leaf CertHandle
	// Available certificates may be used for path building but are not trusted.
	Available []CertHandle
	// Anchors are the self-issued certificates trusted in CustomRootTrust mode.
	Anchors        []CertHandle
	TrustMode      TrustMode
	RevocationMode RevocationMode
	// Time is the evaluation instant, already normalized to UTC.
	Time time.Time
	// URLTimeout bounds each network retrieval. Zero means the backend default.
	URLTimeout time.Duration
}

// EvalParams controls a single [Context.Evaluate] call.
type EvalParams struct {
	// AllowNetwork enables AIA issuer retrieval and online revocation fetches.
	AllowNetwork bool
}

// Context is one in-progress evaluation. It is owned by exactly one run.
type Context interface {
	handles.Handle
	// Evaluate builds and checks the path. It blocks until done.
	Evaluate(ctx context.Context, p EvalParams) (Outcome, NativeStatus)
	// ElementCount is the number of certificates in the discovered path.
	ElementCount() int
	// ElementStatus returns the raw defects of element i.
	ElementStatus(i int) RawStatus
	// ElementCertificate returns the certificate of element i.
	ElementCertificate(i int) *x509.Certificate
	// Order reports how element indexes relate to the path direction.
	Order() Order
}

// Backend is a trust evaluation engine.
type Backend interface {
	Name() string
	// ImportCertificate wraps cert in a native handle owned by the caller.
	ImportCertificate(cert *x509.Certificate) (CertHandle, error)
	// OpenContext prepares an evaluation. The returned context, when non-nil,
	// is owned by the caller even if the outcome is Failure.
	OpenContext(in Input) (Context, Outcome, NativeStatus)
}
