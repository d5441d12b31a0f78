package metrics

import "github.com/prometheus/client_golang/prometheus"

// Advisor (LLM) Prometheus metrics.
var (
	AdvisorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindermatch",
			Name:      "advisor_requests_total",
			Help:      "Total number of advisor (LLM) requests",
		},
		[]string{"model", "op", "status"},
	)

	AdvisorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kindermatch",
			Name:      "advisor_request_duration_seconds",
			Help:      "Advisor request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model", "op"},
	)

	AdvisorTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindermatch",
			Name:      "advisor_tokens_total",
			Help:      "Total advisor tokens consumed",
		},
		[]string{"model", "op", "type"},
	)

	AdvisorErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindermatch",
			Name:      "advisor_errors_total",
			Help:      "Total advisor errors",
		},
		[]string{"model", "op", "error_type"},
	)

	CatalogCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kindermatch",
			Name:      "catalog_cache_total",
			Help:      "Catalog snapshot cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var advisorMetricsRegistered bool

// RegisterAdvisorMetrics registers Prometheus advisor metrics. Must be called once from main.
func RegisterAdvisorMetrics() {
	if advisorMetricsRegistered {
		return
	}
	prometheus.MustRegister(AdvisorRequestsTotal)
	prometheus.MustRegister(AdvisorRequestDuration)
	prometheus.MustRegister(AdvisorTokensTotal)
	prometheus.MustRegister(AdvisorErrorsTotal)
	prometheus.MustRegister(CatalogCacheTotal)
	advisorMetricsRegistered = true
}
