package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPipelineMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)

	m.ObserveCacheLookup("transcript", true)
	m.ObserveCacheLookup("transcript", false)
	m.ObserveCacheLookup("parsed_conversation", false)
	m.ObserveTranscription("ok")
	m.ObserveExtraction("ok", "model")
	m.ObserveDispatch("fallback")

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("transcript", "hit")); got != 1 {
		t.Errorf("transcript hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("transcript", "miss")); got != 1 {
		t.Errorf("transcript misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.dispatchTotal.WithLabelValues("fallback")); got != 1 {
		t.Errorf("fallback dispatches = %v, want 1", got)
	}
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	m.ObserveCacheLookup("transcript", true)
	m.ObserveTranscription("error")
	m.ObserveExtraction("error", "cache")
	m.ObserveDispatch("search")
}
