// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain evaluates [X.509] certificate chains through a pluggable
// trust backend.
//
// An [Evaluator] hands the leaf, the supplemental certificates and the trust
// anchors of a [TrustConfig] to the backend, lets it build and check a path,
// and turns the per certificate raw status it reports into portable
// [status.Flags]. On top of the backend result it applies:
//   - untrusted-root disambiguation and revocation suppression (status mapping),
//   - application and certificate policy matching, which marks every element
//     NotValidForUsage on mismatch,
//   - revocation scope restriction ([revocation.ExcludeRoot],
//     [revocation.EndCertificateOnly]).
//
// Every native handle acquired during a run is released before Build
// returns, on success, on error and on panic.
//
// Results can be rendered as a markdown table, an ASCII tree or JSON.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
