package monitoring

import (
	"strconv"

	"throttlelab/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector records setup and activation metrics.
type PrometheusCollector struct {
	// Counters
	activationsTotal *prometheus.CounterVec
	assignmentsTotal *prometheus.CounterVec

	// Histograms
	persistDuration  prometheus.Histogram
	upstreamDuration prometheus.Histogram
}

// NewPrometheusCollector registers the collector's metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		activationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "throttlelab_activations_total",
			Help: "Setup submissions by outcome",
		}, []string{"outcome"}),

		assignmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "throttlelab_scenario_assignments_total",
			Help: "Committed activations by permutation table row",
		}, []string{"permutation"}),

		persistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "throttlelab_activation_persist_duration_seconds",
			Help:    "Time to durably commit settings and variables",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		upstreamDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "throttlelab_upstream_request_duration_seconds",
			Help:    "Duration of experiment record creation requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}),
	}
}

func (p *PrometheusCollector) RecordOutcome(outcome domain.Outcome) {
	p.activationsTotal.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusCollector) RecordAssignment(permutationIndex int) {
	p.assignmentsTotal.WithLabelValues(strconv.Itoa(permutationIndex)).Inc()
}

func (p *PrometheusCollector) ObservePersist(seconds float64) {
	p.persistDuration.Observe(seconds)
}

func (p *PrometheusCollector) ObserveUpstream(seconds float64) {
	p.upstreamDuration.Observe(seconds)
}
