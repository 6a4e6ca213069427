// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revocation

import (
	"fmt"
	"strings"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend"
)

// Mode selects whether and how revocation is checked.
type Mode = backend.RevocationMode

const (
	NoCheck = backend.RevocationNoCheck
	Online  = backend.RevocationOnline
	Offline = backend.RevocationOffline
)

// ParseMode parses "nocheck", "online" or "offline".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nocheck", "no-check", "none":
		return NoCheck, nil
	case "online":
		return Online, nil
	case "offline":
		return Offline, nil
	default:
		return NoCheck, fmt.Errorf("revocation: unknown mode %q", s)
	}
}

// Scope selects which path elements keep their revocation results.
type Scope int

const (
	// EntireChain keeps revocation results for every element.
	EntireChain Scope = iota
	// ExcludeRoot drops revocation results of a genuine trust anchor.
	ExcludeRoot
	// EndCertificateOnly keeps revocation results of the leaf only.
	EndCertificateOnly
)

func (s Scope) String() string {
	switch s {
	case EntireChain:
		return "entire"
	case ExcludeRoot:
		return "exclude-root"
	case EndCertificateOnly:
		return "end-only"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ParseScope parses the textual forms produced by [Scope.String] and a few
// common aliases.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "entire", "entire-chain", "entirechain":
		return EntireChain, nil
	case "exclude-root", "excluderoot":
		return ExcludeRoot, nil
	case "end-only", "end-certificate-only", "endcertificateonly", "leaf":
		return EndCertificateOnly, nil
	default:
		return EntireChain, fmt.Errorf("revocation: unknown scope %q", s)
	}
}
