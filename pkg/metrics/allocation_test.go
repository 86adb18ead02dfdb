package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAllocationMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewAllocationMetrics(reg)
	mode := "direct"
	metrics.ObserveDuration(mode, 250*time.Millisecond)
	metrics.AddBuckets(mode, 3)
	metrics.IncPartialFailure("substitute_lookup")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "allocation_buckets_returned", "mode", mode); err != nil {
		t.Fatalf("fetch buckets: %v", err)
	} else if got != 3 {
		t.Fatalf("expected buckets=3, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "allocation_partial_failures", "kind", "substitute_lookup"); err != nil {
		t.Fatalf("fetch partial failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected partial failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "allocation_duration_seconds", "mode", mode); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestAllocationMetricsNilSafe(t *testing.T) {
	var m *AllocationMetrics
	m.ObserveDuration("direct", time.Second)
	m.AddBuckets("direct", 1)
	m.IncPartialFailure("vendor_lookup")

	unregistered := NewAllocationMetrics(nil)
	unregistered.AddBuckets("cart", 1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
