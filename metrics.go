package fieldselector

import "github.com/prometheus/client_golang/prometheus"

// Discard reasons, as reported by Metrics.
const (
	DiscardUnknownField = "unknown_field"
	DiscardUnknownGroup = "unknown_group"
)

// Metrics contains Prometheus metrics for selection outcomes. A nil
// *Metrics is valid and records nothing, so instrumentation stays optional.
type Metrics struct {
	selectionsTotal      *prometheus.CounterVec
	fallbacksTotal       prometheus.Counter
	discardedTokensTotal *prometheus.CounterVec
}

// NewMetrics creates selection metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default registry.
// Registering twice with the same registry panics, as usual for Prometheus
// collectors, so create one Metrics per registry and share it between
// selectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		selectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fieldselector",
				Name:      "selections_total",
				Help:      "Total number of selection resolutions by raw input source",
			},
			[]string{"source"},
		),
		fallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "fieldselector",
				Name:      "fallbacks_total",
				Help:      "Total number of selections that fell back to the default fields",
			},
		),
		discardedTokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fieldselector",
				Name:      "discarded_tokens_total",
				Help:      "Total number of selection tokens discarded during resolution",
			},
			[]string{"reason"},
		),
	}
	reg.MustRegister(m.selectionsTotal, m.fallbacksTotal, m.discardedTokensTotal)
	m.init()
	return m
}

// init pre-initializes label combinations with zero values so that all
// series appear in scrape output immediately. *Vec types only emit metric
// lines after WithLabelValues has been called at least once.
func (m *Metrics) init() {
	for _, source := range []string{SourceQuery, SourceHeader, SourceDefault} {
		m.selectionsTotal.WithLabelValues(source)
	}
	for _, reason := range []string{DiscardUnknownField, DiscardUnknownGroup} {
		m.discardedTokensTotal.WithLabelValues(reason)
	}
}

func (m *Metrics) recordSelection(source string) {
	if m == nil {
		return
	}
	m.selectionsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) recordFallback() {
	if m == nil {
		return
	}
	m.fallbacksTotal.Inc()
}

func (m *Metrics) recordDiscard(reason string) {
	if m == nil {
		return
	}
	m.discardedTokensTotal.WithLabelValues(reason).Inc()
}
