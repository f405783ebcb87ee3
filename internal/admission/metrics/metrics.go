package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AdmissionRejectionsTotal       *prometheus.CounterVec
	AdmissionLockoutsTotal         prometheus.Counter
	AdmissionAuthFailuresRecorded  prometheus.Counter
	AdmissionLimiterDecisionsTotal *prometheus.CounterVec
	AdmissionValidationFailures    *prometheus.CounterVec
	AdmissionTrackedRecords        *prometheus.GaugeVec
	AdmissionSweepRunsTotal        *prometheus.CounterVec
	AdmissionSweepEvictedTotal     *prometheus.CounterVec
	AdmissionSweepDurationSeconds  prometheus.Histogram
}

// New registers on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AdmissionRejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketgate_admission_rejections_total",
			Help: "Total number of requests rejected by admission control",
		}, []string{"reason"}),
		AdmissionLockoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketgate_admission_lockouts_total",
			Help: "Total number of addresses locked out after repeated auth failures",
		}),
		AdmissionAuthFailuresRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketgate_admission_auth_failures_recorded_total",
			Help: "Total number of failed auth outcomes recorded",
		}),
		AdmissionLimiterDecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketgate_admission_limiter_decisions_total",
			Help: "Rate limiter decisions by limiter and outcome",
		}, []string{"limiter", "decision"}),
		AdmissionValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketgate_admission_validation_failures_total",
			Help: "Validation rule failures by field",
		}, []string{"field"}),
		AdmissionTrackedRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "marketgate_admission_tracked_records",
			Help: "Current number of per-address records held in memory",
		}, []string{"store"}),
		AdmissionSweepRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketgate_admission_sweep_runs_total",
			Help: "Total number of sweeper runs",
		}, []string{"status"}),
		AdmissionSweepEvictedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketgate_admission_sweep_evicted_total",
			Help: "Total number of records evicted by the sweeper",
		}, []string{"store"}),
		AdmissionSweepDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "marketgate_admission_sweep_duration_seconds",
			Help: "Duration of sweeper runs in seconds",
		}),
	}
}

func (m *Metrics) IncrementRejections(reason string) {
	m.AdmissionRejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementLockouts() {
	m.AdmissionLockoutsTotal.Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AdmissionAuthFailuresRecorded.Inc()
}

func (m *Metrics) IncrementLimiterDecision(limiter string, allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "rejected"
	}
	m.AdmissionLimiterDecisionsTotal.WithLabelValues(limiter, decision).Inc()
}

func (m *Metrics) IncrementValidationFailure(field string) {
	m.AdmissionValidationFailures.WithLabelValues(field).Inc()
}

func (m *Metrics) SetTrackedRecords(store string, count int) {
	m.AdmissionTrackedRecords.WithLabelValues(store).Set(float64(count))
}

func (m *Metrics) IncrementSweepRuns(status string) {
	m.AdmissionSweepRunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementSweepEvicted(store string, count int) {
	m.AdmissionSweepEvictedTotal.WithLabelValues(store).Add(float64(count))
}

func (m *Metrics) ObserveSweepDuration(durationSeconds float64) {
	m.AdmissionSweepDurationSeconds.Observe(durationSeconds)
}
