// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	verpkg "github.com/H0llyW00dzZ/x509-chain-verifier/src/version"
)

func TestVersionInit(t *testing.T) {
	assert.NotEmpty(t, version, "version should not be empty after init")

	// A different value means it was set by ldflags, which is also valid.
	if version != verpkg.Version {
		t.Logf("version set by ldflags: %s (package version: %s)", version, verpkg.Version)
	}
}
