// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/metrics"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/x509test"
)

func TestRecord(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "verification",
			testFunc: func(t *testing.T) {
				metrics.VerificationsTotal.Reset()
				metrics.VerificationDuration.Reset()

				metrics.RecordVerification("go", metrics.ResultTrusted, 0.01, 3)
				metrics.RecordVerification("go", metrics.ResultTrusted, 0.02, 3)
				metrics.RecordVerification("go", metrics.ResultUntrusted, 0.02, 1)

				assert.Equal(t, 2.0, testutil.ToFloat64(metrics.VerificationsTotal.WithLabelValues("go", metrics.ResultTrusted)))
				assert.Equal(t, 1, testutil.CollectAndCount(metrics.VerificationDuration))
			},
		},
		{
			name: "flags and errors",
			testFunc: func(t *testing.T) {
				metrics.StatusFlagsTotal.Reset()
				metrics.BackendErrorsTotal.Reset()

				metrics.RecordStatusFlag("PartialChain")
				metrics.RecordBackendError("go", "open")

				assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StatusFlagsTotal.WithLabelValues("PartialChain")))
				assert.Equal(t, 1.0, testutil.ToFloat64(metrics.BackendErrorsTotal.WithLabelValues("go", "open")))
			},
		},
		{
			name: "disabled",
			testFunc: func(t *testing.T) {
				metrics.Disable()
				defer metrics.Enable()
				assert.False(t, metrics.IsEnabled())

				before := testutil.ToFloat64(metrics.HandleReleaseFailuresTotal)
				metrics.RecordReleaseFailure()
				assert.Equal(t, before, testutil.ToFloat64(metrics.HandleReleaseFailuresTotal))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestCRLCacheCollector(t *testing.T) {
	cache := revocation.NewCRLCache(revocation.CRLCacheConfig{})
	root := x509test.NewRoot(t, "Collector Root")
	cache.Set("http://crl.example.com/root.crl", x509test.NewCRL(t, root, time.Now().Add(time.Hour)))
	_, _ = cache.Get("http://crl.example.com/root.crl")
	_, _ = cache.Get("http://crl.example.com/missing.crl")

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(metrics.NewCRLCacheCollector(cache)))

	samples, err := metrics.Snapshot(reg)
	require.NoError(t, err)

	got := make(map[string]float64, len(samples))
	for _, s := range samples {
		got[s.Name] = s.Value
	}
	assert.Equal(t, 1.0, got["x509verifier_crl_cache_entries"])
	assert.Equal(t, 1.0, got["x509verifier_crl_cache_hits_total"])
	assert.Equal(t, 1.0, got["x509verifier_crl_cache_misses_total"])
	assert.Greater(t, got["x509verifier_crl_cache_memory_bytes"], 0.0)
}

func TestSnapshot_Default(t *testing.T) {
	metrics.RecordVerification("snapshot", metrics.ResultError, 0.5, 0)

	samples, err := metrics.Snapshot(nil)
	require.NoError(t, err)

	var found bool
	for _, s := range samples {
		assert.Contains(t, s.Name, metrics.Namespace+"_")
		if s.Name == "x509verifier_chain_verifications_total" && s.Labels["backend"] == "snapshot" {
			found = true
			assert.GreaterOrEqual(t, s.Value, 1.0)
		}
	}
	assert.True(t, found)
}
