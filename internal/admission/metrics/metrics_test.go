package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordOnInjectedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)

	m.IncrementRejections("locked_out")
	m.IncrementRejections("locked_out")
	m.IncrementLimiterDecision("auth", false)
	m.IncrementLimiterDecision("auth", true)
	m.IncrementSweepEvicted("attempts", 3)
	m.SetTrackedRecords("windows", 7)

	assert.InDelta(t, 2, testutil.ToFloat64(m.AdmissionRejectionsTotal.WithLabelValues("locked_out")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AdmissionLimiterDecisionsTotal.WithLabelValues("auth", "rejected")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.AdmissionSweepEvictedTotal.WithLabelValues("attempts")), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.AdmissionTrackedRecords.WithLabelValues("windows")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWithRegisterer(prometheus.NewRegistry())
		NewWithRegisterer(prometheus.NewRegistry())
	})
}
