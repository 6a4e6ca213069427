// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package policy decides whether a certification path satisfies requested
// certificate policies and application policies.
//
// Certificate policies are evaluated with the [RFC 5280] valid policy tree,
// including policy mappings, requireExplicitPolicy, inhibitPolicyMapping and
// inhibitAnyPolicy. Requested certificate policies are expressed in the
// trust anchor's policy domain. Application policies are matched against the
// extended key usages that every certificate along the path allows.
//
// [RFC 5280]: https://www.rfc-editor.org/rfc/rfc5280#section-6.1
package policy
