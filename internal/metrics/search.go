package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bonlog",
			Name:      "search_queries_total",
			Help:      "Total number of search statements executed",
		},
		[]string{"target", "mode", "outcome"}, // outcome: ok / error
	)

	SearchFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bonlog",
			Name:      "search_fallbacks_total",
			Help:      "Searches re-run with pattern matching after the configured mode failed",
		},
		[]string{"target", "mode"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bonlog",
			Name:      "search_duration_seconds",
			Help:      "Search statement duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"target", "mode"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the search collectors with the default registry.
// Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchQueriesTotal)
		prometheus.MustRegister(SearchFallbacksTotal)
		prometheus.MustRegister(SearchDuration)
	})
}
