package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestHTTPMetricsExportsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/stores/{slug}", 200, 250*time.Millisecond)
	m.Observe("GET", "/api/stores/{slug}", 200, 10*time.Millisecond)
	m.Observe("POST", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	got, err := counterValue(mfs, "http_requests_total", map[string]string{"method": "GET", "route": "/api/stores/{slug}", "status": "200"})
	if err != nil {
		t.Fatalf("fetch requests: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 requests, got %f", got)
	}

	if _, err := counterValue(mfs, "http_requests_total", map[string]string{"route": "unmatched", "status": "404"}); err != nil {
		t.Fatalf("expected unmatched route label: %v", err)
	}

	count, err := histogramCount(mfs, "http_request_duration_seconds", map[string]string{"route": "/api/stores/{slug}"})
	if err != nil {
		t.Fatalf("fetch duration: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 observations, got %d", count)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewHTTPMetrics(nil)
	m.Observe("GET", "/x", 200, time.Second)

	var nilMetrics *HTTPMetrics
	nilMetrics.Observe("GET", "/x", 200, time.Second)
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	metric, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func histogramCount(mfs []*dto.MetricFamily, name string, labels map[string]string) (uint64, error) {
	metric, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleCount(), nil
}

func findMetric(mfs []*dto.MetricFamily, name string, labels map[string]string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric, nil
			}
		}
		return nil, fmt.Errorf("metric %q missing labels %v", name, labels)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
