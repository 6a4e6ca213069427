// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics provides Prometheus instrumentation for chain verification.
// Collectors are registered with the default registry at init, so binaries
// only need to expose or snapshot [prometheus.DefaultGatherer].
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all verifier metrics.
	Namespace = "x509verifier"

	// Label names
	LabelBackend = "backend"
	LabelResult  = "result"
	LabelFlag    = "flag"
	LabelStage   = "stage"

	// Result values
	ResultTrusted   = "trusted"
	ResultUntrusted = "untrusted"
	ResultError     = "error"
)

var (
	// VerificationsTotal counts verification runs by backend and result.
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "chain",
			Name:      "verifications_total",
			Help:      "Total number of chain verifications by backend and result",
		},
		[]string{LabelBackend, LabelResult},
	)

	// VerificationDuration tracks verification latency in seconds. Network
	// fetches dominate the upper buckets.
	VerificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "chain",
			Name:      "verification_duration_seconds",
			Help:      "Duration of chain verifications in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 15, 30},
		},
		[]string{LabelBackend},
	)

	// ChainLength tracks the number of elements in built paths.
	ChainLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "chain",
			Name:      "length",
			Help:      "Number of certificates in verified chains",
			Buckets:   prometheus.LinearBuckets(1, 1, 8),
		},
	)

	// StatusFlagsTotal counts status flags reported in overall results.
	StatusFlagsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "chain",
			Name:      "status_flags_total",
			Help:      "Total number of status flags reported in chain results",
		},
		[]string{LabelFlag},
	)

	// BackendErrorsTotal counts runs that ended with an error, by stage.
	BackendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "backend",
			Name:      "errors_total",
			Help:      "Total number of backend failures by backend and stage",
		},
		[]string{LabelBackend, LabelStage},
	)

	// HandleReleaseFailuresTotal counts native handles whose release failed.
	HandleReleaseFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "backend",
			Name:      "handle_release_failures_total",
			Help:      "Total number of native handle releases that failed",
		},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// Enable turns recording on. Recording is on by default.
func Enable() { enabled.Store(true) }

// Disable turns recording off.
func Disable() { enabled.Store(false) }

// IsEnabled reports whether recording is on.
func IsEnabled() bool { return enabled.Load() }

// RecordVerification records a finished run.
func RecordVerification(backend, result string, seconds float64, length int) {
	if !enabled.Load() {
		return
	}
	VerificationsTotal.WithLabelValues(backend, result).Inc()
	VerificationDuration.WithLabelValues(backend).Observe(seconds)
	if length > 0 {
		ChainLength.Observe(float64(length))
	}
}

// RecordStatusFlag records one flag of an overall result.
func RecordStatusFlag(flag string) {
	if !enabled.Load() {
		return
	}
	StatusFlagsTotal.WithLabelValues(flag).Inc()
}

// RecordBackendError records a run that failed at stage.
func RecordBackendError(backend, stage string) {
	if !enabled.Load() {
		return
	}
	BackendErrorsTotal.WithLabelValues(backend, stage).Inc()
}

// RecordReleaseFailure records one failed handle release.
func RecordReleaseFailure() {
	if !enabled.Load() {
		return
	}
	HandleReleaseFailuresTotal.Inc()
}
