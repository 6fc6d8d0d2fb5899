package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics records request counts and latency for the ledger API,
// alongside the Go runtime and process collectors.
type HTTPMetrics struct {
	reg      *prom.Registry
	requests *prom.CounterVec
	latency  *prom.HistogramVec
}

// NewHTTPMetrics registers the request metrics and runtime collectors on reg.
func NewHTTPMetrics(reg *prom.Registry) *HTTPMetrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &HTTPMetrics{reg: reg}
	m.requests = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served by route and status code",
	}, []string{"method", "route", "code"})
	m.latency = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prom.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(
		m.requests,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest counts one served request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *HTTPMetrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
