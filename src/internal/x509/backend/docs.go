// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package backend defines the capability set a trust backend offers to the
// chain evaluator: importing certificates, opening an evaluation context,
// evaluating it, and reading back the discovered path one element at a time.
//
// Backends report per-element defects in their own [RawStatus] vocabulary and
// report call results as an [Outcome] plus a [NativeStatus] diagnostic code.
// Translating that vocabulary into portable status flags is the job of the
// status package, not of the backend.
//
// Concrete backends register a [Factory] under a name at init time and are
// selected once, at configuration time, through [New].
package backend
