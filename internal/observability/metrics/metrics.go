package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters for the audio pipeline and dispatcher.
type PipelineMetrics struct {
	cacheLookups        *prometheus.CounterVec
	transcriptionsTotal *prometheus.CounterVec
	extractionsTotal    *prometheus.CounterVec
	dispatchTotal       *prometheus.CounterVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radioscribe",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Content cache lookups by kind and outcome",
		}, []string{"kind", "outcome"}),
		transcriptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radioscribe",
			Subsystem: "transcribe",
			Name:      "requests_total",
			Help:      "Transcription stage requests by status",
		}, []string{"status"}),
		extractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radioscribe",
			Subsystem: "extract",
			Name:      "requests_total",
			Help:      "Extraction stage requests by status and source",
		}, []string{"status", "source"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radioscribe",
			Subsystem: "dispatch",
			Name:      "turns_total",
			Help:      "Dispatched turns by resolved branch",
		}, []string{"branch"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cacheLookups, m.transcriptionsTotal, m.extractionsTotal, m.dispatchTotal)
	return m
}

func (m *PipelineMetrics) ObserveCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, outcome).Inc()
}

func (m *PipelineMetrics) ObserveTranscription(status string) {
	if m == nil {
		return
	}
	m.transcriptionsTotal.WithLabelValues(status).Inc()
}

func (m *PipelineMetrics) ObserveExtraction(status, source string) {
	if m == nil {
		return
	}
	m.extractionsTotal.WithLabelValues(status, source).Inc()
}

func (m *PipelineMetrics) ObserveDispatch(branch string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(branch).Inc()
}
