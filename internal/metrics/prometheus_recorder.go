package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolveDuration *prom.HistogramVec
	resolveResults  *prom.CounterVec
	requests        *prom.CounterVec
	cacheErrors     *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolveDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pvetui_stats",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of a statistics resolution",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		resolveResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pvetui_stats",
			Name:      "resolve_results_total",
			Help:      "Statistics resolutions by how they were satisfied",
		}, []string{"result"}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pvetui_stats",
			Name:      "github_requests_total",
			Help:      "GitHub API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		cacheErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pvetui_stats",
			Name:      "cache_errors_total",
			Help:      "Cache read, decode and write failures",
		}, []string{"op"}),
	}
	reg.MustRegister(pr.resolveDuration, pr.resolveResults, pr.requests, pr.cacheErrors)
	return pr
}

func (p *PrometheusRecorder) ObserveResolve(result CacheResult, d time.Duration) {
	p.resolveDuration.WithLabelValues(string(result)).Observe(d.Seconds())
	p.resolveResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncRequest(endpoint string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	p.requests.WithLabelValues(endpoint, outcome).Inc()
}

func (p *PrometheusRecorder) IncCacheError(op string) {
	p.cacheErrors.WithLabelValues(op).Inc()
}
