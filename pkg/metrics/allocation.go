package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AllocationMetrics records timings and outcomes for bucket allocation runs.
type AllocationMetrics struct {
	duration        *prometheus.HistogramVec
	buckets         *prometheus.CounterVec
	partialFailures *prometheus.CounterVec
}

// NewAllocationMetrics registers the allocation metrics on the provided registerer.
func NewAllocationMetrics(reg prometheus.Registerer) *AllocationMetrics {
	if reg == nil {
		return &AllocationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "allocation_duration_seconds",
		Help:    "Duration of bucket allocation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	buckets := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_buckets_returned",
		Help: "Buckets returned to callers.",
	}, []string{"mode"})
	partialFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_partial_failures",
		Help: "Collaborator failures tolerated during allocation.",
	}, []string{"kind"})
	reg.MustRegister(duration, buckets, partialFailures)
	return &AllocationMetrics{
		duration:        duration,
		buckets:         buckets,
		partialFailures: partialFailures,
	}
}

// ObserveDuration records the duration for the given allocation mode.
func (m *AllocationMetrics) ObserveDuration(mode string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// AddBuckets counts buckets returned for the given mode.
func (m *AllocationMetrics) AddBuckets(mode string, count int) {
	if m == nil || m.buckets == nil || count <= 0 {
		return
	}
	m.buckets.WithLabelValues(normalizeLabel(mode)).Add(float64(count))
}

// IncPartialFailure counts a tolerated collaborator failure by kind.
func (m *AllocationMetrics) IncPartialFailure(kind string) {
	if m == nil || m.partialFailures == nil {
		return
	}
	m.partialFailures.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
