package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// RouterRequests counts outbound routing-service calls by outcome
	RouterRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "router_requests_total", Help: "Outbound routing service requests by outcome."},
		[]string{"outcome"},
	)
	// RouterCache counts route-response cache lookups
	RouterCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "router_cache_total", Help: "Route response cache lookups."},
		[]string{"result"},
	)
	// PlanDuration tracks end-to-end scenic plan computation in seconds
	PlanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "plan_duration_seconds", Help: "Scenic plan computation time in seconds.", Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}},
	)
	// PlanCandidates counts route candidates by variant and scored state
	PlanCandidates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "plan_candidates_total", Help: "Route candidates evaluated, by variant and scored state."},
		[]string{"variant", "scored"},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(RouterRequests)
		Registry.MustRegister(RouterCache)
		Registry.MustRegister(PlanDuration)
		Registry.MustRegister(PlanCandidates)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
