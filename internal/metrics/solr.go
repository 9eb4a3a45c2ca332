package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search backend Prometheus metrics.
var (
	SolrRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bumper",
			Name:      "solr_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"op", "status"},
	)

	SolrRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bumper",
			Name:      "solr_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	SolrErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bumper",
			Name:      "solr_errors_total",
			Help:      "Total search backend errors",
		},
		[]string{"op", "error_type"},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bumper",
			Name:      "response_cache_total",
			Help:      "Search response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var solrMetricsOnce sync.Once

// RegisterSolrMetrics registers the search backend and cache metrics on the default registry.
func RegisterSolrMetrics() {
	solrMetricsOnce.Do(func() {
		prometheus.MustRegister(SolrRequestsTotal)
		prometheus.MustRegister(SolrRequestDuration)
		prometheus.MustRegister(SolrErrorsTotal)
		prometheus.MustRegister(ResponseCacheTotal)
	})
}
