// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewTrackerMetrics_RegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTrackerMetrics(reg)

	m.RecordRequest("task", "create", "ok")
	m.RecordRequest("task", "create", "ok")
	m.RecordAuthDenial("task", "delete")
	m.RecordValidationFailure("status")
	m.RecordIntegrityBlock("label")

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.RequestsTotal.WithLabelValues("task", "create", "ok")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.AuthDenialsTotal.WithLabelValues("task", "delete")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.ValidationFailuresTotal.WithLabelValues("status")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.IntegrityBlocksTotal.WithLabelValues("label")))
}

func TestNewTrackerMetrics_IndependentRegistries(t *testing.T) {
	// Two instances on separate registries must not collide.
	a := NewTrackerMetrics(prometheus.NewRegistry())
	b := NewTrackerMetrics(prometheus.NewRegistry())

	a.RecordRequest("task", "list", "ok")
	assert.Equal(t, float64(0),
		testutil.ToFloat64(b.RequestsTotal.WithLabelValues("task", "list", "ok")))
}
