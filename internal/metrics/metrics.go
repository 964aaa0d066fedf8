package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "studytrack"

// Recorder holds the counters exported on /metrics
type Recorder struct {
	registry *prometheus.Registry

	transitions    *prometheus.CounterVec
	manualRecords  *prometheus.CounterVec
	businessErrors *prometheus.CounterVec
	apiRequests    *prometheus.CounterVec
	apiLatency     *prometheus.HistogramVec
}

// New creates a Recorder registered on its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Study session state transitions by target status.",
		}, []string{"transition"}),
		manualRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_record_operations_total",
			Help:      "Manual record operations by kind.",
		}, []string{"operation"}),
		businessErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "business_errors_total",
			Help:      "Rejected operations by error code.",
		}, []string{"code"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "HTTP API requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "HTTP API request latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		r.transitions,
		r.manualRecords,
		r.businessErrors,
		r.apiRequests,
		r.apiLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry exposes the underlying registry for the HTTP handler
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Transition counts a session state change (start, pause, resume, finish, timeout, edit)
func (r *Recorder) Transition(name string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(name).Inc()
}

// ManualRecord counts a manual record operation (create, update, delete)
func (r *Recorder) ManualRecord(op string) {
	if r == nil {
		return
	}
	r.manualRecords.WithLabelValues(op).Inc()
}

// BusinessError counts a rejected operation by its error code
func (r *Recorder) BusinessError(code string) {
	if r == nil {
		return
	}
	r.businessErrors.WithLabelValues(code).Inc()
}

// ObserveAPI records one HTTP request
func (r *Recorder) ObserveAPI(method, route string, status int, dur time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	r.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}
