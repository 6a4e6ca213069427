// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package handles tracks native resource handles acquired during a single
// verification run and releases them exactly once.
//
// A [Registry] is created per run and is never shared between runs. Handles
// are released most-recently-acquired first, so a handle that depends on an
// earlier one (for example a trust context built over imported certificates)
// is always released before its dependencies.
//
// Typical use wraps the whole run in a deferred release:
//
//	reg := handles.New(log)
//	defer reg.ReleaseAll()
//
//	ctx, err := handles.Acquire(reg, openContext())
//	if err != nil {
//		return err
//	}
package handles
