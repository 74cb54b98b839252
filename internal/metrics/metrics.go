package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bot's prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	updates     *prometheus.CounterVec
	suggestions *prometheus.CounterVec
	duration    prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkbot",
			Name:      "updates_total",
			Help:      "Inbound chat events by kind.",
		}, []string{"kind"}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkbot",
			Name:      "suggestions_total",
			Help:      "Title submissions by outcome code.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linkbot",
			Name:      "suggestion_duration_seconds",
			Help:      "Wall time of the fetch, extract, prompt and AI pipeline.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		}),
	}
	m.registry.MustRegister(m.updates, m.suggestions, m.duration)
	return m
}

func (m *Metrics) ObserveUpdate(kind string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveSuggestion(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.suggestions.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Registry exposes the private registry for gathering outside of Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
