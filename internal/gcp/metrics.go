package gcp

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts fetch outcomes and normalization drops. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	targets *prometheus.CounterVec
	pages   *prometheus.CounterVec
	dropped *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		targets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netscope",
			Name:      "fetch_targets_total",
			Help:      "Fetch targets resolved, by resource kind and outcome.",
		}, []string{"kind", "outcome"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netscope",
			Name:      "fetch_pages_total",
			Help:      "Response pages read, by resource kind.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netscope",
			Name:      "normalize_dropped_total",
			Help:      "Items dropped during normalization because of malformed locators.",
		}, []string{"kind"}),
	}

	if reg != nil {
		reg.MustRegister(m.targets, m.pages, m.dropped)
	}

	return m
}

// ObserveResult counts the outcome of a resolved target.
func (m *Metrics) ObserveResult(result Result) {
	if m == nil {
		return
	}

	m.targets.WithLabelValues(string(result.Target.Kind), string(result.Outcome)).Inc()
}

// ObserveDropped counts n items of kind dropped before any join.
func (m *Metrics) ObserveDropped(kind Kind, n int) {
	if m == nil || n <= 0 {
		return
	}

	m.dropped.WithLabelValues(string(kind)).Add(float64(n))
}

func (m *Metrics) observePage(kind Kind) {
	if m == nil {
		return
	}

	m.pages.WithLabelValues(string(kind)).Inc()
}
