// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the tracker.
//
// # Description
//
// Counters cover the outcomes the policy layer produces: requests by
// resource and outcome, authorization denials, validation failures, and
// deletions blocked by referential integrity. Metrics are exposed at
// /metrics for Prometheus scraping.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "aleutian"
	trackerSubsystem = "tracker"
)

// TrackerMetrics holds the Prometheus metrics for entity operations.
// Initialize once at startup via NewTrackerMetrics.
type TrackerMetrics struct {
	// RequestsTotal counts entity operations.
	// Labels: resource (user, status, label, task), action (list, read,
	// create, update, delete), outcome (ok, denied, invalid, conflict,
	// not_found, error)
	RequestsTotal *prometheus.CounterVec

	// AuthDenialsTotal counts authorization denials.
	// Labels: resource, action
	AuthDenialsTotal *prometheus.CounterVec

	// ValidationFailuresTotal counts rejected form submissions.
	// Labels: resource
	ValidationFailuresTotal *prometheus.CounterVec

	// IntegrityBlocksTotal counts deletions blocked by dependent rows.
	// Labels: resource
	IntegrityBlocksTotal *prometheus.CounterVec
}

// NewTrackerMetrics creates and registers the tracker metrics with the
// given registerer. Pass prometheus.DefaultRegisterer in production and a
// fresh prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewTrackerMetrics(reg prometheus.Registerer) *TrackerMetrics {
	factory := promauto.With(reg)
	return &TrackerMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "requests_total",
			Help:      "Entity operations by resource, action, and outcome.",
		}, []string{"resource", "action", "outcome"}),
		AuthDenialsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "auth_denials_total",
			Help:      "Requests denied by the authorization policy.",
		}, []string{"resource", "action"}),
		ValidationFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "validation_failures_total",
			Help:      "Form submissions rejected by validation.",
		}, []string{"resource"}),
		IntegrityBlocksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: trackerSubsystem,
			Name:      "integrity_blocks_total",
			Help:      "Deletions blocked by dependent rows.",
		}, []string{"resource"}),
	}
}

// RecordRequest increments the request counter for one operation outcome.
func (m *TrackerMetrics) RecordRequest(resource, action, outcome string) {
	m.RequestsTotal.WithLabelValues(resource, action, outcome).Inc()
}

// RecordAuthDenial increments the denial counter.
func (m *TrackerMetrics) RecordAuthDenial(resource, action string) {
	m.AuthDenialsTotal.WithLabelValues(resource, action).Inc()
}

// RecordValidationFailure increments the validation failure counter.
func (m *TrackerMetrics) RecordValidationFailure(resource string) {
	m.ValidationFailuresTotal.WithLabelValues(resource).Inc()
}

// RecordIntegrityBlock increments the blocked-deletion counter.
func (m *TrackerMetrics) RecordIntegrityBlock(resource string) {
	m.IntegrityBlocksTotal.WithLabelValues(resource).Inc()
}
