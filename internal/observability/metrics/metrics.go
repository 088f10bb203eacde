package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the submission flow.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	storesTotal      *prometheus.CounterVec
	storeLatency     *prometheus.HistogramVec
	resetsTotal      prometheus.Counter
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "submission",
			Name:      "total",
			Help:      "Form submissions by lifecycle result",
		}, []string{"result"}),
		storesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "persistence",
			Name:      "store_total",
			Help:      "Lead writes by persistence outcome",
		}, []string{"outcome"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadform",
			Subsystem: "persistence",
			Name:      "store_latency_seconds",
			Help:      "Latency of a full store attempt including fallback",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		resetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "session",
			Name:      "countdown_resets_total",
			Help:      "Success confirmations that ran to completion and reset the form",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.storesTotal, m.storeLatency, m.resetsTotal)
	return m
}

func (m *LeadMetrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(result).Inc()
}

func (m *LeadMetrics) ObserveStore(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.storesTotal.WithLabelValues(outcome).Inc()
	m.storeLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *LeadMetrics) ObserveReset() {
	if m == nil {
		return
	}
	m.resetsTotal.Inc()
}
