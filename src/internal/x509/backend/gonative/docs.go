// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package gonative implements the trust backend on top of crypto/x509.
//
// The backend discovers a path by issuer and subject matching over the
// certificates it was given, optionally fetching missing issuers through the
// Authority Information Access extension, and completes the path from the
// system trust store when system trust is requested. Every element of the
// resulting path is then checked on its own and reported as a
// [backend.RawStatus] bitmask, the way a platform verifier reports per
// certificate status.
//
// The backend registers itself as "go":
//
//	import _ "github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/backend/gonative"
//
//	b, err := backend.New("go", backend.Options{})
package gonative
