package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the message pipeline.
type PipelineMetrics struct {
	ingressTotal   *prometheus.CounterVec
	processedTotal *prometheus.CounterVec
	skippedTotal   prometheus.Counter
	confidence     prometheus.Histogram
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		ingressTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "pipeline",
			Name:      "ingress_total",
			Help:      "Total inbound messages by channel and outcome",
		}, []string{"channel", "status"}),
		processedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "pipeline",
			Name:      "processed_total",
			Help:      "Total queue items processed by detected intent",
		}, []string{"intent", "channel"}),
		skippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chatrelay",
			Subsystem: "pipeline",
			Name:      "skipped_total",
			Help:      "Total malformed queue items skipped",
		}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chatrelay",
			Subsystem: "pipeline",
			Name:      "intent_confidence",
			Help:      "Distribution of classifier confidence scores",
			Buckets:   []float64{0.3, 0.5, 0.7, 0.9, 1.0},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.ingressTotal, m.processedTotal, m.skippedTotal, m.confidence)
	return m
}

func (m *PipelineMetrics) ObserveIngress(channel, status string) {
	if m == nil {
		return
	}
	m.ingressTotal.WithLabelValues(channel, status).Inc()
}

func (m *PipelineMetrics) ObserveProcessed(intent, channel string, confidence float64) {
	if m == nil {
		return
	}
	m.processedTotal.WithLabelValues(intent, channel).Inc()
	m.confidence.Observe(confidence)
}

func (m *PipelineMetrics) ObserveSkipped() {
	if m == nil {
		return
	}
	m.skippedTotal.Inc()
}
